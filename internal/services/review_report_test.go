package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/codyseavey/card-checklist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReviewReport(t *testing.T) {
	entries := []models.ReviewEntry{
		{RawBrand: "unknown product xyz", Season: "1996-97", CardNumber: "3", VariantID: 1, RemainingString: "unknown product xyz", Reason: ReasonNoBrand},
		{RawBrand: "Collectors Choice Signature Extra", Season: "1996-97", CardNumber: "44", ManufacturerID: 1, BrandID: 1, VariantID: 1, RemainingString: "extra", Reason: ReasonAmbiguous},
	}
	issues := []Issue{{Level: IssueWarning, Message: "Warning: Unparseable limited_string format: '1 of 1'. Using defaults (0,0)."}}

	var buf bytes.Buffer
	require.NoError(t, WriteReviewReport(&buf, entries, issues, time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)))
	report := buf.String()

	assert.Contains(t, report, "Generated on 2024-03-09 14:05:00\n")
	assert.Contains(t, report, "Entries needing review: 2\n")
	assert.Contains(t, report, "[1] Raw Brand: unknown product xyz\n")
	assert.Contains(t, report, "    Brand ID: unknown\n")
	assert.Contains(t, report, "[2] Raw Brand: Collectors Choice Signature Extra\n")
	assert.Contains(t, report, "    Brand ID: 1\n")
	assert.Contains(t, report, "    Theme ID: NULL\n")
	assert.Contains(t, report, "    Remaining: 'extra'\n")
	assert.Contains(t, report, "    Reason: Unparsed text remaining or ambiguous parse\n")
	assert.Contains(t, report, "Processing issues: 1\n- [warning] Warning: Unparseable")
	assert.NotContains(t, report, "No entries need review.")
}

func TestWriteReviewReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReviewReport(&buf, nil, nil, time.Now()))

	assert.Contains(t, buf.String(), "Entries needing review: 0\n")
	assert.Contains(t, buf.String(), "No entries need review.\n")
	assert.Contains(t, buf.String(), "Processing issues: 0\n")
}
