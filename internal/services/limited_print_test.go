package services

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLimitedPrint(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedRun    int
		expectedSerial int
	}{
		{"empty", "", 0, 0},
		{"dashes", "--", 0, 0},
		{"padded dashes", "  --  ", 0, 0},
		{"hash serial", "#25/99", 99, 25},
		{"hash serial with spaces", "# 7 / 50", 50, 7},
		{"plain serial", "25/99", 99, 25},
		{"plain serial with spaces", " 1 / 1 ", 1, 1},
		{"bare number", "250", 250, 0},
		{"unparseable", "1 of 1", 0, 0},
		{"run out of range", "#1/99999999999999999999", 0, 0},
		{"bare out of range", "99999999999999999999", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, serial := ParseLimitedPrint(tt.input, nil)
			if run != tt.expectedRun || serial != tt.expectedSerial {
				t.Errorf("ParseLimitedPrint(%q) = (%d, %d), want (%d, %d)", tt.input, run, serial, tt.expectedRun, tt.expectedSerial)
			}
		})
	}
}

func TestParseLimitedPrintLogsUnparseable(t *testing.T) {
	log := NewIssueLog(zerolog.Nop())

	ParseLimitedPrint("#25/99", log)
	if log.Len() != 0 {
		t.Errorf("valid input should not log, got %v", log.Messages())
	}

	ParseLimitedPrint(" 1 of 1 ", log)
	msgs := log.Messages()
	want := "Warning: Unparseable limited_string format: '1 of 1'. Using defaults (0,0)."
	if len(msgs) != 1 || msgs[0] != want {
		t.Errorf("messages = %v, want [%q]", msgs, want)
	}
}

func TestParseLimitedPrintLogsOverflow(t *testing.T) {
	log := NewIssueLog(zerolog.Nop())

	run, serial := ParseLimitedPrint("#1/99999999999999999999", log)
	if run != 0 || serial != 0 {
		t.Errorf("ParseLimitedPrint = (%d, %d), want (0, 0)", run, serial)
	}
	msgs := log.Messages()
	want := "Warning: limited_string value out of range: '#1/99999999999999999999'. Using defaults (0,0)."
	if len(msgs) != 1 || msgs[0] != want {
		t.Errorf("messages = %v, want [%q]", msgs, want)
	}
}
