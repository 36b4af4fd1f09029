package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Reference table names as they appear in the collection database dump.
const (
	TableManufacturer = "card_manufacturer"
	TableBrand        = "card_brand"
	TableTheme        = "card_theme"
	TableVariant      = "variant"
)

// Tuple is one parenthesized VALUES group. Elements are int, string or nil (SQL NULL).
type Tuple []any

// Int returns element i as an int.
func (t Tuple) Int(i int) (int, bool) {
	if i >= len(t) {
		return 0, false
	}
	v, ok := t[i].(int)
	return v, ok
}

// String returns element i as a string. Integers are formatted.
func (t Tuple) String(i int) (string, bool) {
	if i >= len(t) {
		return "", false
	}
	switch v := t[i].(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	}
	return "", false
}

// NullableInt returns element i as *int; NULL and non-integers give nil.
func (t Tuple) NullableInt(i int) *int {
	v, ok := t.Int(i)
	if !ok {
		return nil
	}
	return &v
}

func insertPattern(table string) *regexp.Regexp {
	return regexp.MustCompile("(?i)INSERT\\s+INTO\\s+`?" + regexp.QuoteMeta(table) + "`?\\s+VALUES\\s*")
}

// ParseInsertTuples extracts every value tuple of every INSERT statement for
// table found in text. Anything else in the dump (comments, USE, CREATE) is
// ignored. A table without statements yields nil.
func ParseInsertTuples(text, table string) []Tuple {
	var tuples []Tuple
	for _, loc := range insertPattern(table).FindAllStringIndex(text, -1) {
		tuples = append(tuples, scanValues(text[loc[1]:])...)
	}
	return tuples
}

// scanValues reads "(..),(..);" from the start of s, stopping at the first
// semicolon outside a quoted string.
func scanValues(s string) []Tuple {
	var (
		tuples  []Tuple
		current Tuple
		field   strings.Builder
		inTuple bool
		quoted  bool // inside '...'
		wasStr  bool // current field was a quoted string
	)

	flush := func() {
		raw := field.String()
		field.Reset()
		if wasStr {
			current = append(current, raw)
		} else {
			current = append(current, parseBareValue(strings.TrimSpace(raw)))
		}
		wasStr = false
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quoted {
			switch {
			case ch == '\\' && i+1 < len(s):
				i++
				field.WriteByte(unescape(s[i]))
			case ch == '\'' && i+1 < len(s) && s[i+1] == '\'':
				i++
				field.WriteByte('\'')
			case ch == '\'':
				quoted = false
			default:
				field.WriteByte(ch)
			}
			continue
		}

		switch {
		case !inTuple && ch == ';':
			return tuples
		case !inTuple && ch == '(':
			inTuple = true
			current = nil
		case !inTuple:
			// whitespace and commas between tuples
		case ch == '\'':
			quoted = true
			wasStr = true
			field.Reset()
		case ch == ',':
			flush()
		case ch == ')':
			flush()
			tuples = append(tuples, current)
			inTuple = false
		default:
			if !wasStr {
				field.WriteByte(ch)
			}
		}
	}
	return tuples
}

func unescape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return ch
}

func parseBareValue(raw string) any {
	if strings.EqualFold(raw, "null") {
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

// ExtractInsertStatements returns the INSERT statements of a dump file, one per
// element, dropping comments, USE and CREATE statements.
func ExtractInsertStatements(text string) []string {
	var stmts []string
	for _, loc := range anyInsert.FindAllStringIndex(text, -1) {
		rest := text[loc[0]:]
		end := statementEnd(rest)
		stmts = append(stmts, strings.TrimSpace(rest[:end]))
	}
	return stmts
}

var anyInsert = regexp.MustCompile(`(?i)INSERT\s+INTO\s`)

// statementEnd finds the terminating semicolon outside quotes, or len(s).
func statementEnd(s string) int {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case quoted && ch == '\\':
			i++
		case quoted && ch == '\'' && i+1 < len(s) && s[i+1] == '\'':
			i++
		case ch == '\'':
			quoted = !quoted
		case !quoted && ch == ';':
			return i + 1
		}
	}
	return len(s)
}

// ReferenceText holds the raw dump text of each reference table.
type ReferenceText struct {
	Manufacturers string
	Brands        string
	Themes        string
	Variants      string
}

// ParseReferences turns dump text into raw reference rows. Tuples without an
// integer id or a name are skipped with a warning.
func ParseReferences(text ReferenceText) (RawReferences, []string) {
	var (
		raw      RawReferences
		warnings []string
	)

	skip := func(table string, t Tuple) {
		warnings = append(warnings, fmt.Sprintf("Warning: skipping malformed %s row %v", table, []any(t)))
	}

	for _, t := range ParseInsertTuples(text.Manufacturers, TableManufacturer) {
		id, okID := t.Int(0)
		name, okName := t.String(1)
		if !okID || !okName {
			skip(TableManufacturer, t)
			continue
		}
		raw.Manufacturers = append(raw.Manufacturers, RawManufacturer{ID: id, Name: name})
	}

	for _, t := range ParseInsertTuples(text.Brands, TableBrand) {
		id, okID := t.Int(0)
		name, okName := t.String(1)
		if !okID || !okName {
			skip(TableBrand, t)
			continue
		}
		raw.Brands = append(raw.Brands, RawBrand{ID: id, Name: name, ManufacturerID: t.NullableInt(2)})
	}

	for _, t := range ParseInsertTuples(text.Themes, TableTheme) {
		id, okID := t.Int(0)
		name, okName := t.String(1)
		if !okID || !okName {
			skip(TableTheme, t)
			continue
		}
		raw.Themes = append(raw.Themes, RawTheme{ID: id, Name: name, BrandID: t.NullableInt(2)})
	}

	for _, t := range ParseInsertTuples(text.Variants, TableVariant) {
		id, okID := t.Int(0)
		name, okName := t.String(1)
		if !okID || !okName {
			skip(TableVariant, t)
			continue
		}
		raw.Variants = append(raw.Variants, RawVariant{ID: id, Name: name})
	}

	return raw, warnings
}

// LoadReferenceText parses the four dump texts and builds the catalog.
func LoadReferenceText(manufacturers, brands, themes, variants string) (*Catalog, []string) {
	raw, warnings := ParseReferences(ReferenceText{
		Manufacturers: manufacturers,
		Brands:        brands,
		Themes:        themes,
		Variants:      variants,
	})
	c, buildWarnings := Build(raw)
	return c, append(warnings, buildWarnings...)
}

// ReferenceFiles names the dump file of each reference table.
type ReferenceFiles struct {
	Manufacturers string `yaml:"manufacturers"`
	Brands        string `yaml:"brands"`
	Themes        string `yaml:"themes"`
	Variants      string `yaml:"variants"`
}

// ReadReferenceFiles reads the four dump files. Several tables may share one
// file; it is only read once.
func ReadReferenceFiles(files ReferenceFiles) (ReferenceText, error) {
	cache := make(map[string]string)
	read := func(path string) (string, error) {
		if path == "" {
			return "", nil
		}
		if text, ok := cache[path]; ok {
			return text, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read reference dump %s: %w", path, err)
		}
		cache[path] = string(data)
		return cache[path], nil
	}

	var (
		text ReferenceText
		err  error
	)
	if text.Manufacturers, err = read(files.Manufacturers); err != nil {
		return ReferenceText{}, err
	}
	if text.Brands, err = read(files.Brands); err != nil {
		return ReferenceText{}, err
	}
	if text.Themes, err = read(files.Themes); err != nil {
		return ReferenceText{}, err
	}
	if text.Variants, err = read(files.Variants); err != nil {
		return ReferenceText{}, err
	}
	return text, nil
}

// Load reads, parses and builds a catalog from dump files in one step.
func Load(files ReferenceFiles) (*Catalog, []string, error) {
	text, err := ReadReferenceFiles(files)
	if err != nil {
		return nil, nil, err
	}
	c, warnings := LoadReferenceText(text.Manufacturers, text.Brands, text.Themes, text.Variants)
	return c, warnings, nil
}
