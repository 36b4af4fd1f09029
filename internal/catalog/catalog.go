// Package catalog holds the normalized reference tables (manufacturer, brand,
// theme, variant) that checklist labels are resolved against.
//
// A Catalog is built once per run and is read-only afterwards, so a single value
// can be shared between goroutines without locking.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"unicode/utf8"
)

// BaseVariantKey is the variant every card gets unless a more specific variant
// token appears in its label.
const BaseVariantKey = "base"

// FallbackDefaultVariantID is used when the variant table has no "base" row.
const FallbackDefaultVariantID = 1

type RawManufacturer struct {
	ID   int
	Name string
}

type RawBrand struct {
	ID             int
	Name           string
	ManufacturerID *int
}

type RawTheme struct {
	ID      int
	Name    string
	BrandID *int
}

type RawVariant struct {
	ID   int
	Name string
}

// RawReferences is the parsed but not yet normalized content of the four
// reference tables.
type RawReferences struct {
	Manufacturers []RawManufacturer
	Brands        []RawBrand
	Themes        []RawTheme
	Variants      []RawVariant
}

// BrandEntry is a normalized brand row.
type BrandEntry struct {
	ID             int    `json:"id"`
	ManufacturerID *int   `json:"manufacturer_id"`
	DisplayName    string `json:"display_name"`
}

// ThemeEntry is a normalized theme (insert set) row. A theme only means
// something together with the brand that owns it.
type ThemeEntry struct {
	ID          int    `json:"id"`
	BrandID     *int   `json:"brand_id"`
	DisplayName string `json:"display_name"`
}

// Counts reports how many keys each table holds after normalization.
type Counts struct {
	Manufacturers int `json:"manufacturers"`
	Brands        int `json:"brands"`
	Themes        int `json:"themes"`
	Variants      int `json:"variants"`
}

type Catalog struct {
	manufacturers    map[string]int
	manufacturerKeys []string

	brands    map[string]BrandEntry
	brandKeys []string

	themes    map[string]ThemeEntry
	themeKeys []string

	variants    map[string]int
	variantKeys []string

	defaultVariantID int

	// whole-word matchers for every key in every table
	patterns map[string]*regexp.Regexp
}

// Build normalizes the raw reference rows into lookup tables. Keys that collide
// after normalization are last-write-wins: the later row's value replaces the
// earlier one while the key keeps its original position for tie-breaking.
// Returned warnings describe collisions and a missing base variant; they never
// stop the build.
func Build(raw RawReferences) (*Catalog, []string) {
	c := &Catalog{
		manufacturers: make(map[string]int),
		brands:        make(map[string]BrandEntry),
		themes:        make(map[string]ThemeEntry),
		variants:      make(map[string]int),
		patterns:      make(map[string]*regexp.Regexp),
	}
	var warnings []string

	for _, m := range raw.Manufacturers {
		key := Normalize(m.Name)
		if key == "" {
			continue
		}
		if _, exists := c.manufacturers[key]; exists {
			warnings = append(warnings, fmt.Sprintf("Warning: manufacturer key %q defined more than once, keeping id %d", key, m.ID))
		} else {
			c.manufacturerKeys = append(c.manufacturerKeys, key)
		}
		c.manufacturers[key] = m.ID
		c.addPattern(key)
	}

	for _, b := range raw.Brands {
		key := Normalize(b.Name)
		if key == "" {
			continue
		}
		if _, exists := c.brands[key]; exists {
			warnings = append(warnings, fmt.Sprintf("Warning: brand key %q defined more than once, keeping id %d", key, b.ID))
		} else {
			c.brandKeys = append(c.brandKeys, key)
		}
		c.brands[key] = BrandEntry{ID: b.ID, ManufacturerID: b.ManufacturerID, DisplayName: b.Name}
		c.addPattern(key)
	}

	for _, t := range raw.Themes {
		key := Normalize(t.Name)
		if key == "" {
			continue
		}
		if _, exists := c.themes[key]; exists {
			warnings = append(warnings, fmt.Sprintf("Warning: theme key %q defined more than once, keeping id %d", key, t.ID))
		} else {
			c.themeKeys = append(c.themeKeys, key)
		}
		c.themes[key] = ThemeEntry{ID: t.ID, BrandID: t.BrandID, DisplayName: t.Name}
		c.addPattern(key)
	}

	for _, v := range raw.Variants {
		key := Normalize(v.Name)
		if key == "" {
			continue
		}
		if _, exists := c.variants[key]; exists {
			warnings = append(warnings, fmt.Sprintf("Warning: variant key %q defined more than once, keeping id %d", key, v.ID))
		} else {
			c.variantKeys = append(c.variantKeys, key)
		}
		c.variants[key] = v.ID
		c.addPattern(key)
	}

	if id, ok := c.variants[BaseVariantKey]; ok {
		c.defaultVariantID = id
	} else {
		c.defaultVariantID = FallbackDefaultVariantID
		warnings = append(warnings, fmt.Sprintf("Critical Warning: 'base' variant not found in variant catalog. Using %d as default variant id.", FallbackDefaultVariantID))
	}

	return c, warnings
}

func (c *Catalog) addPattern(key string) {
	if _, ok := c.patterns[key]; !ok {
		c.patterns[key] = wordPattern(key)
	}
}

func (c *Catalog) pattern(key string) *regexp.Regexp {
	if c != nil {
		if re, ok := c.patterns[key]; ok {
			return re
		}
	}
	return wordPattern(key)
}

// LongestMatch returns the longest candidate (by character count) that occurs in
// text as a whole word. Equal lengths keep candidate order. Longest-first stops
// "sp" from winning over "sp authentic".
func (c *Catalog) LongestMatch(text string, candidates []string) (string, bool) {
	if text == "" || len(candidates) == 0 {
		return "", false
	}
	ordered := make([]string, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i]) > utf8.RuneCountInString(ordered[j])
	})
	for _, key := range ordered {
		if key == "" {
			continue
		}
		if c.pattern(key).MatchString(text) {
			return key, true
		}
	}
	return "", false
}

// RemoveFirst removes the first whole-word occurrence of key from text and
// re-collapses whitespace.
func (c *Catalog) RemoveFirst(text, key string) string {
	loc := c.pattern(key).FindStringSubmatchIndex(text)
	if loc == nil {
		return CollapseSpaces(text)
	}
	return CollapseSpaces(text[:loc[2]] + " " + text[loc[3]:])
}

// DefaultVariantID is the id of the base variant (or the fallback id).
func (c *Catalog) DefaultVariantID() int {
	return c.defaultVariantID
}

// HasBaseVariant reports whether the variant table defined "base".
func (c *Catalog) HasBaseVariant() bool {
	_, ok := c.variants[BaseVariantKey]
	return ok
}

// ManufacturerKeys returns manufacturer keys in insertion order.
func (c *Catalog) ManufacturerKeys() []string {
	return c.manufacturerKeys
}

func (c *Catalog) Manufacturer(key string) (int, bool) {
	id, ok := c.manufacturers[key]
	return id, ok
}

// BrandKeys returns brand keys in insertion order.
func (c *Catalog) BrandKeys() []string {
	return c.brandKeys
}

func (c *Catalog) Brand(key string) (BrandEntry, bool) {
	b, ok := c.brands[key]
	return b, ok
}

// BrandByID returns the first brand, in insertion order, carrying id.
func (c *Catalog) BrandByID(id int) (BrandEntry, bool) {
	for _, k := range c.brandKeys {
		if b := c.brands[k]; b.ID == id {
			return b, true
		}
	}
	return BrandEntry{}, false
}

// VariantKeys returns variant keys in insertion order, without the base variant.
func (c *Catalog) VariantKeys() []string {
	keys := make([]string, 0, len(c.variantKeys))
	for _, k := range c.variantKeys {
		if k != BaseVariantKey {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Catalog) Variant(key string) (int, bool) {
	id, ok := c.variants[key]
	return id, ok
}

// ThemeKeysForBrand returns, in insertion order, the keys of themes owned by brandID.
func (c *Catalog) ThemeKeysForBrand(brandID int) []string {
	var keys []string
	for _, k := range c.themeKeys {
		t := c.themes[k]
		if t.BrandID != nil && *t.BrandID == brandID {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Catalog) Theme(key string) (ThemeEntry, bool) {
	t, ok := c.themes[key]
	return t, ok
}

func (c *Catalog) Counts() Counts {
	return Counts{
		Manufacturers: len(c.manufacturers),
		Brands:        len(c.brands),
		Themes:        len(c.themes),
		Variants:      len(c.variants),
	}
}

// IsEmpty reports whether no table produced a single key.
func (c *Catalog) IsEmpty() bool {
	return len(c.manufacturers) == 0 && len(c.brands) == 0 && len(c.themes) == 0 && len(c.variants) == 0
}
