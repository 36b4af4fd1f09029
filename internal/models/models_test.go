package models

import (
	"testing"
	"time"
)

func TestCardRecordIdentityKey(t *testing.T) {
	a := CardRecord{PlayerID: 1, Season: "1996-97", CardNumber: "12", BrandID: 3, VariantID: 2, PrintRun: 99}
	b := a
	b.PrintRun = 50
	b.RawBrand = "something else"

	if a.IdentityKey() != b.IdentityKey() {
		t.Errorf("non-identity fields should not change the key: %s vs %s", a.IdentityKey(), b.IdentityKey())
	}

	b.VariantID = 5
	if a.IdentityKey() == b.IdentityKey() {
		t.Error("variant is part of the card identity")
	}

	theme := 6
	c := a
	c.ThemeID = &theme
	if a.IdentityKey() == c.IdentityKey() {
		t.Error("theme is part of the card identity")
	}
}

func TestThemeKeyFor(t *testing.T) {
	if got := ThemeKeyFor(nil); got != NoThemeKey {
		t.Errorf("ThemeKeyFor(nil) = %d, want %d", got, NoThemeKey)
	}
	theme := 6
	if got := ThemeKeyFor(&theme); got != 6 {
		t.Errorf("ThemeKeyFor(6) = %d", got)
	}
}

func TestCardRecordIsLimited(t *testing.T) {
	tests := []struct {
		name     string
		card     CardRecord
		expected bool
	}{
		{"not limited", CardRecord{}, false},
		{"run only", CardRecord{PrintRun: 250}, true},
		{"serial numbered", CardRecord{PrintRun: 99, SerialNumber: 25}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.IsLimited(); got != tt.expected {
				t.Errorf("IsLimited() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestImportRunDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	run := ImportRun{StartedAt: start}

	if run.Duration() != 0 {
		t.Error("unfinished run should report zero duration")
	}

	end := start.Add(3 * time.Second)
	run.FinishedAt = &end
	if run.Duration() != 3*time.Second {
		t.Errorf("Duration() = %v, want 3s", run.Duration())
	}
}

func TestImportRunAcceptanceRate(t *testing.T) {
	if rate := (ImportRun{}).AcceptanceRate(); rate != 0 {
		t.Errorf("empty run rate = %v, want 0", rate)
	}
	run := ImportRun{RowsTotal: 4, AcceptedCount: 3, ReviewCount: 1}
	if rate := run.AcceptanceRate(); rate != 0.75 {
		t.Errorf("AcceptanceRate() = %v, want 0.75", rate)
	}
}

func TestIdentityColumnsMatchUpsertColumns(t *testing.T) {
	identity := make(map[string]bool)
	for _, c := range CardRecordIdentityColumns {
		identity[c] = true
	}
	for _, c := range CardRecordUpsertColumns {
		if identity[c] {
			t.Errorf("identity column %s must not be overwritten on upsert", c)
		}
	}
}
