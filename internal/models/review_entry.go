package models

import (
	"time"
)

// ReviewEntry is a low-confidence resolution kept for a human to look at instead
// of being written as card data. Ids are whatever was tentatively resolved; 0
// means unknown.
type ReviewEntry struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ImportRunID     string    `json:"import_run_id" gorm:"index"`
	RawBrand        string    `json:"raw_brand"`
	Season          string    `json:"season"`
	CardNumber      string    `json:"card_number"`
	PrintRun        int       `json:"print_run"`
	SerialNumber    int       `json:"serial_number"`
	ManufacturerID  int       `json:"manufacturer_id"`
	BrandID         int       `json:"brand_id"`
	VariantID       int       `json:"variant_id"`
	ThemeID         *int      `json:"theme_id"`
	RemainingString string    `json:"remaining_string"`
	Reason          string    `json:"reason"`
	CreatedAt       time.Time `json:"created_at"`
}

type ReviewListResponse struct {
	ImportRunID string        `json:"import_run_id"`
	Entries     []ReviewEntry `json:"entries"`
	TotalCount  int           `json:"total_count"`
}
