package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// NoThemeKey is the ThemeKey of a card without a theme.
const NoThemeKey = 0

// CardRecord is an accepted, high-confidence card ready to be written to the
// collection's card table. Re-importing the same checklist updates rows in place
// through the identity index.
type CardRecord struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ImportRunID      string    `json:"import_run_id" gorm:"index"`
	PlayerID         int       `json:"player_id" gorm:"not null;uniqueIndex:idx_card_theme_identity"`
	Season           string    `json:"season" gorm:"not null;uniqueIndex:idx_card_theme_identity"`
	CardNumber       string    `json:"card_number" gorm:"uniqueIndex:idx_card_theme_identity"`
	PrintRun         int       `json:"print_run"`
	SerialNumber     int       `json:"serial_number"`
	ManufacturerID   int       `json:"manufacturer_id"`
	BrandID          int       `json:"brand_id" gorm:"not null;uniqueIndex:idx_card_theme_identity"`
	VariantID        int       `json:"variant_id" gorm:"not null;uniqueIndex:idx_card_theme_identity"`
	ThemeID          *int      `json:"theme_id"`
	ThemeKey         int       `json:"-" gorm:"not null;default:0;uniqueIndex:idx_card_theme_identity"` // ThemeID, NoThemeKey for none
	RookieCard       bool      `json:"rookie_card"`
	Autograph        bool      `json:"autograph"`
	GameUsedMaterial bool      `json:"game_used_material"`
	RawBrand         string    `json:"raw_brand"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ThemeKeyFor maps a nullable theme id to its ThemeKey.
func ThemeKeyFor(themeID *int) int {
	if themeID == nil {
		return NoThemeKey
	}
	return *themeID
}

// BeforeSave keeps ThemeKey in step with ThemeID.
func (c *CardRecord) BeforeSave(tx *gorm.DB) error {
	c.ThemeKey = ThemeKeyFor(c.ThemeID)
	return nil
}

// IdentityKey mirrors the idx_card_theme_identity unique index.
func (c CardRecord) IdentityKey() string {
	return fmt.Sprintf("%d|%s|%s|%d|%d|%d", c.PlayerID, c.Season, c.CardNumber, c.BrandID, c.VariantID, ThemeKeyFor(c.ThemeID))
}

// IsLimited reports whether the card is serial numbered or from a short print run.
func (c CardRecord) IsLimited() bool {
	return c.PrintRun > 0
}

// CardRecordUpsertColumns are refreshed when a re-import hits an existing identity.
var CardRecordUpsertColumns = []string{
	"import_run_id",
	"print_run",
	"serial_number",
	"manufacturer_id",
	"rookie_card",
	"autograph",
	"game_used_material",
	"raw_brand",
	"updated_at",
}

// CardRecordIdentityColumns are the columns of idx_card_theme_identity.
var CardRecordIdentityColumns = []string{"player_id", "season", "card_number", "brand_id", "variant_id", "theme_key"}
