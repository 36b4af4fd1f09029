package services

import (
	"errors"

	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/codyseavey/card-checklist/internal/models"
	"github.com/rs/zerolog"
)

// ErrCatalogNotBuilt is returned by Process when there is no reference data. The
// empty result means "did not run", not "no cards found".
var ErrCatalogNotBuilt = errors.New("reference catalog not built")

// DefaultPlayerID identifies the collection owner in the player table.
const DefaultPlayerID = 1

// RawCardRow is one checklist row as scraped, before any resolution.
type RawCardRow struct {
	Season        string `json:"season"`
	CardNumber    string `json:"card_number"`
	RawBrand      string `json:"raw_brand"`
	LimitedString string `json:"limited_string"`
}

// BatchResult partitions a batch into accepted cards and rows that need review.
type BatchResult struct {
	Accepted    []models.CardRecord  `json:"accepted"`
	NeedsReview []models.ReviewEntry `json:"needs_review"`
	Issues      []Issue              `json:"issues"`
}

func (r *BatchResult) Total() int {
	return len(r.Accepted) + len(r.NeedsReview)
}

type BatchProcessor struct {
	catalog  *catalog.Catalog
	resolver *AttributeResolver
	playerID int
}

// NewBatchProcessor creates a processor for one catalog. A playerID of 0 or less
// means DefaultPlayerID.
func NewBatchProcessor(c *catalog.Catalog, playerID int) *BatchProcessor {
	if playerID <= 0 {
		playerID = DefaultPlayerID
	}
	return &BatchProcessor{
		catalog:  c,
		resolver: NewAttributeResolver(c),
		playerID: playerID,
	}
}

func (p *BatchProcessor) PlayerID() int {
	return p.playerID
}

// Process resolves every row in order. Per-row problems are recorded in log and
// never stop the batch; the only error is ErrCatalogNotBuilt, returned with an
// empty result. log may be nil, in which case a private log backs Issues.
func (p *BatchProcessor) Process(rows []RawCardRow, log *IssueLog) (*BatchResult, error) {
	if log == nil {
		log = NewIssueLog(zerolog.Nop())
	}

	if p.catalog == nil || p.catalog.IsEmpty() {
		log.Critical("Critical: Lookups not populated; %d rows not processed.", len(rows))
		return &BatchResult{Issues: log.Issues()}, ErrCatalogNotBuilt
	}

	result := &BatchResult{}
	accepted := make(map[string]string) // identity key -> raw label
	for _, row := range rows {
		printRun, serial := ParseLimitedPrint(row.LimitedString, log)
		attrs := p.resolver.Resolve(row.RawBrand, row.Season, log)

		if attrs.Confidence == ConfidenceHigh {
			result.Accepted = append(result.Accepted, models.CardRecord{
				PlayerID:         p.playerID,
				Season:           row.Season,
				CardNumber:       row.CardNumber,
				PrintRun:         printRun,
				SerialNumber:     serial,
				ManufacturerID:   attrs.ManufacturerID,
				BrandID:          attrs.BrandID,
				VariantID:        attrs.VariantID,
				ThemeID:          attrs.ThemeID,
				ThemeKey:         models.ThemeKeyFor(attrs.ThemeID),
				RookieCard:       attrs.RookieCard,
				Autograph:        attrs.Autograph,
				GameUsedMaterial: attrs.GameUsedMaterial,
				RawBrand:         row.RawBrand,
			})
			card := result.Accepted[len(result.Accepted)-1]
			if earlier, dup := accepted[card.IdentityKey()]; dup {
				log.Warn("Warning: Duplicate card in season %s, number %s: '%s' resolves like '%s'. The later row replaces it when persisted.",
					row.Season, row.CardNumber, row.RawBrand, earlier)
			}
			accepted[card.IdentityKey()] = row.RawBrand
			continue
		}

		result.NeedsReview = append(result.NeedsReview, models.ReviewEntry{
			RawBrand:        row.RawBrand,
			Season:          row.Season,
			CardNumber:      row.CardNumber,
			PrintRun:        printRun,
			SerialNumber:    serial,
			ManufacturerID:  attrs.ManufacturerID,
			BrandID:         attrs.BrandID,
			VariantID:       attrs.VariantID,
			ThemeID:         attrs.ThemeID,
			RemainingString: attrs.RemainingString,
			Reason:          ReviewReason(attrs),
		})
	}

	result.Issues = log.Issues()
	return result, nil
}
