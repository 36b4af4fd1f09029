package services

import (
	"strings"

	"github.com/codyseavey/card-checklist/internal/catalog"
)

// Sentinel ids for attributes that could not be resolved.
const (
	UnknownManufacturerID = 0
	UnknownBrandID        = 0
	UnknownThemeID        = 0
)

var (
	rookieKeywords    = []string{"rookie", "rc", "draft pick", "draft day", "collegiate", "debut"}
	autographKeywords = []string{"autograph", "signature", "ink", "signings", "auto"}
	gameUsedKeywords  = []string{"jersey", "patch", "material", "game used", "fabric", "relic", "duds", "coverage", "shirts", "game worn", "floor"}
)

// rookieSeason is the player's rookie year; every card from it is a rookie card.
const rookieSeason = "1994-95"

// ResolvedAttributes is the outcome of resolving one brand label. ThemeID is nil
// when no theme was resolved or confidence is low.
type ResolvedAttributes struct {
	ManufacturerID   int        `json:"manufacturer_id"`
	BrandID          int        `json:"brand_id"`
	VariantID        int        `json:"variant_id"`
	ThemeID          *int       `json:"theme_id"`
	RookieCard       bool       `json:"rookie_card"`
	Autograph        bool       `json:"autograph"`
	GameUsedMaterial bool       `json:"game_used_material"`
	Confidence       Confidence `json:"confidence"`
	RemainingString  string     `json:"remaining_string"`
	OriginalRawBrand string     `json:"original_raw_brand"`
}

// AttributeResolver resolves checklist brand labels against a catalog.
type AttributeResolver struct {
	catalog *catalog.Catalog
}

func NewAttributeResolver(c *catalog.Catalog) *AttributeResolver {
	return &AttributeResolver{catalog: c}
}

// Resolve matches brand, then variant, then theme, stripping each matched token
// from the working label so later stages only see what is left. Without a brand
// it falls back to manufacturer names. Issues go to log, which may be nil.
func (r *AttributeResolver) Resolve(rawBrand, season string, log *IssueLog) ResolvedAttributes {
	cat := r.catalog
	label := catalog.Normalize(rawBrand)

	attrs := ResolvedAttributes{
		RookieCard:       isRookie(label, season),
		Autograph:        containsAny(label, autographKeywords),
		GameUsedMaterial: containsAny(label, gameUsedKeywords),
		OriginalRawBrand: rawBrand,
	}

	manufacturerID := UnknownManufacturerID
	brandID := UnknownBrandID
	variantID := cat.DefaultVariantID()
	themeID := UnknownThemeID
	working := label

	brandKey, brandFound := cat.LongestMatch(working, cat.BrandKeys())
	if brandFound {
		brand, _ := cat.Brand(brandKey)
		brandID = brand.ID
		if brand.ManufacturerID != nil {
			manufacturerID = *brand.ManufacturerID
		}
		working = cat.RemoveFirst(working, brandKey)
	}

	variantKey, variantFound := cat.LongestMatch(working, cat.VariantKeys())
	if variantFound {
		variantID, _ = cat.Variant(variantKey)
		working = cat.RemoveFirst(working, variantKey)
	}

	if brandFound {
		if themeKey, ok := cat.LongestMatch(working, cat.ThemeKeysForBrand(brandID)); ok {
			theme, _ := cat.Theme(themeKey)
			themeID = theme.ID
			working = cat.RemoveFirst(working, themeKey)
		}
	} else {
		withoutVariant := label
		if variantFound {
			withoutVariant = cat.RemoveFirst(label, variantKey)
		}
		fb := r.manufacturerFallback(withoutVariant, rawBrand, log)
		manufacturerID = fb.manufacturerID
		brandID = fb.brandID
		working = fb.remaining
	}

	attrs.RemainingString = catalog.CollapseSpaces(working)
	attrs.Confidence = DecideConfidence(brandID, attrs.RemainingString, themeID, variantID, cat.DefaultVariantID())
	if attrs.Confidence == ConfidenceLow {
		themeID = UnknownThemeID
	}

	if manufacturerID == UnknownManufacturerID && brandID != UnknownBrandID {
		if brand, ok := cat.BrandByID(brandID); ok && brand.ManufacturerID != nil {
			manufacturerID = *brand.ManufacturerID
		}
	}

	attrs.ManufacturerID = manufacturerID
	attrs.BrandID = brandID
	attrs.VariantID = variantID
	if themeID != UnknownThemeID {
		id := themeID
		attrs.ThemeID = &id
	}

	if brandID == UnknownBrandID && strings.TrimSpace(rawBrand) != "" {
		log.Warn("FinalReport: Brand UNRESOLVED for raw_brand: '%s'", rawBrand)
		if manufacturerID == UnknownManufacturerID {
			log.Warn("FinalReport: Manufacturer UNRESOLVED for raw_brand: '%s' (Brand also unknown).", rawBrand)
		}
	}

	return attrs
}

type fallbackResult struct {
	manufacturerID int
	brandID        int
	remaining      string
}

// manufacturerFallback looks for a manufacturer name in text, which is the
// normalized label minus any variant token. A manufacturer that is also listed
// as a brand is adopted as the brand only when nothing else is left.
func (r *AttributeResolver) manufacturerFallback(text, rawBrand string, log *IssueLog) fallbackResult {
	cat := r.catalog

	mfrKey, ok := cat.LongestMatch(text, cat.ManufacturerKeys())
	if !ok {
		if text != "" {
			log.Warn("Warning: Brand candidate '%s' (after Mfr if any) not in lookup. Raw: '%s'", text, rawBrand)
		}
		return fallbackResult{remaining: text}
	}

	mfrID, _ := cat.Manufacturer(mfrKey)
	rest := cat.RemoveFirst(text, mfrKey)

	if brand, isBrand := cat.Brand(mfrKey); isBrand {
		if rest == "" {
			res := fallbackResult{manufacturerID: mfrID, brandID: brand.ID}
			if brand.ManufacturerID != nil {
				res.manufacturerID = *brand.ManufacturerID
			}
			return res
		}
		log.Warn("Warning: Brand candidate '%s' (after Mfr '%s' removed) not in lookup. Raw: '%s'", rest, mfrKey, rawBrand)
		return fallbackResult{manufacturerID: mfrID, remaining: rest}
	}

	if rest != "" {
		log.Warn("Warning: Brand candidate '%s' (after Mfr if any) not in lookup. Raw: '%s'", rest, rawBrand)
	} else {
		log.Info("Info: Raw string seems to be only Manufacturer ('%s') not listed as brand. Raw: '%s'", mfrKey, rawBrand)
	}
	return fallbackResult{manufacturerID: mfrID, remaining: rest}
}

func isRookie(label, season string) bool {
	if containsAny(label, rookieKeywords) {
		return true
	}
	s := strings.ToLower(season)
	return season == rookieSeason || strings.Contains(s, "college") || strings.Contains(s, "draft")
}

// containsAny is a plain substring test, so "auto" also matches "autos".
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
