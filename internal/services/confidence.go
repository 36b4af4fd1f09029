package services

// Confidence is the two-valued trust level of a resolution.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Review reasons attached to low-confidence rows.
const (
	ReasonNoBrand   = "No brand identified"
	ReasonAmbiguous = "Unparsed text remaining or ambiguous parse"
)

// DecideConfidence is high only when a brand was found, nothing is left over, and
// the label named something more specific than the bare brand: a theme or a
// non-base variant.
func DecideConfidence(brandID int, remaining string, themeID, variantID, defaultVariantID int) Confidence {
	if brandID == UnknownBrandID || remaining != "" {
		return ConfidenceLow
	}
	if themeID != UnknownThemeID || variantID != defaultVariantID {
		return ConfidenceHigh
	}
	return ConfidenceLow
}

// ReviewReason explains why a resolution was routed to review.
func ReviewReason(attrs ResolvedAttributes) string {
	if attrs.BrandID == UnknownBrandID {
		return ReasonNoBrand
	}
	return ReasonAmbiguous
}
