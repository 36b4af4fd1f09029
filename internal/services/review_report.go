package services

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/codyseavey/card-checklist/internal/models"
)

// WriteReviewReport writes the human-readable review log: a header, one labeled
// block per entry and the run's issues. Zero entries still produce a complete
// report that says so.
func WriteReviewReport(w io.Writer, entries []models.ReviewEntry, issues []Issue, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Card Review Log")
	fmt.Fprintf(bw, "Generated on %s\n", generatedAt.Format(generatedAtLayout))
	fmt.Fprintf(bw, "Entries needing review: %d\n", len(entries))
	fmt.Fprintln(bw)

	if len(entries) == 0 {
		fmt.Fprintln(bw, "No entries need review.")
	}

	for i, e := range entries {
		fmt.Fprintf(bw, "[%d] Raw Brand: %s\n", i+1, e.RawBrand)
		fmt.Fprintf(bw, "    Season: %s\n", e.Season)
		fmt.Fprintf(bw, "    Card Number: %s\n", e.CardNumber)
		fmt.Fprintf(bw, "    Print Run: %d\n", e.PrintRun)
		fmt.Fprintf(bw, "    Serial Number: %d\n", e.SerialNumber)
		fmt.Fprintf(bw, "    Manufacturer ID: %s\n", reportID(e.ManufacturerID))
		fmt.Fprintf(bw, "    Brand ID: %s\n", reportID(e.BrandID))
		fmt.Fprintf(bw, "    Variant ID: %d\n", e.VariantID)
		fmt.Fprintf(bw, "    Theme ID: %s\n", FormatNullableInt(e.ThemeID))
		fmt.Fprintf(bw, "    Remaining: '%s'\n", e.RemainingString)
		fmt.Fprintf(bw, "    Reason: %s\n", e.Reason)
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "Processing issues: %d\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(bw, "- [%s] %s\n", issue.Level, issue.Message)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write review report: %w", err)
	}
	return nil
}

func reportID(id int) string {
	if id == 0 {
		return "unknown"
	}
	return strconv.Itoa(id)
}
