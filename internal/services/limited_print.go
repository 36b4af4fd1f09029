package services

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hashSerialPattern  = regexp.MustCompile(`^#\s*(\d+)\s*/\s*(\d+)$`)
	bareSerialPattern  = regexp.MustCompile(`^(\d+)$`)
	plainSerialPattern = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
)

// ParseLimitedPrint turns the "limited" cell of a checklist row into
// (printRun, serialNumber). "#25/99" and "25/99" mean serial 25 of a run of 99;
// a bare "99" is stored as (99, 0); "" and "--" mean not limited. Anything else
// is logged and treated as not limited.
func ParseLimitedPrint(s string, log *IssueLog) (printRun, serialNumber int) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0, 0
	}

	var run, serial string
	if m := hashSerialPattern.FindStringSubmatch(s); m != nil {
		run, serial = m[2], m[1]
	} else if m := bareSerialPattern.FindStringSubmatch(s); m != nil {
		run = m[1]
	} else if m := plainSerialPattern.FindStringSubmatch(s); m != nil {
		run, serial = m[2], m[1]
	} else {
		log.Warn("Warning: Unparseable limited_string format: '%s'. Using defaults (0,0).", s)
		return 0, 0
	}

	printRun, okRun := atoi(run)
	serialNumber, okSerial := atoi(serial)
	if !okRun || !okSerial {
		log.Warn("Warning: limited_string value out of range: '%s'. Using defaults (0,0).", s)
		return 0, 0
	}
	return printRun, serialNumber
}

// atoi parses a \d+ capture; "" is 0. ok is false when the value overflows int.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
