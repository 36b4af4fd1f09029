package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/codyseavey/card-checklist/internal/catalog/catalogtest"
)

func TestParseInsertTuples(t *testing.T) {
	text := "-- header\nUSE `cardcollection`;\n" +
		"INSERT INTO `card_brand` VALUES (1,'Collectors Choice',1),(4,'Upper, Deck',1);\n" +
		"INSERT INTO card_brand VALUES (56,'Bowman''s Best',2), (57,'Bowman\\'s Chrome',NULL);\n" +
		"INSERT INTO `card_theme` VALUES (9,'Other',1);\n"

	tuples := catalog.ParseInsertTuples(text, catalog.TableBrand)
	if len(tuples) != 4 {
		t.Fatalf("expected 4 tuples across both statements, got %d: %v", len(tuples), tuples)
	}

	if name, _ := tuples[1].String(1); name != "Upper, Deck" {
		t.Errorf("comma inside quotes should not split, got %q", name)
	}
	if name, _ := tuples[2].String(1); name != "Bowman's Best" {
		t.Errorf("doubled quote escape, got %q", name)
	}
	if name, _ := tuples[3].String(1); name != "Bowman's Chrome" {
		t.Errorf("backslash quote escape, got %q", name)
	}
	if parent := tuples[3].NullableInt(2); parent != nil {
		t.Errorf("NULL parent should be nil, got %d", *parent)
	}
	if id, ok := tuples[2].Int(0); !ok || id != 56 {
		t.Errorf("Int(0) = %d, %v", id, ok)
	}
}

func TestParseInsertTuplesMissingTable(t *testing.T) {
	if tuples := catalog.ParseInsertTuples("USE `cardcollection`;", catalog.TableVariant); len(tuples) != 0 {
		t.Errorf("expected no tuples, got %v", tuples)
	}
}

func TestParseInsertTuplesKeepsTabs(t *testing.T) {
	tuples := catalog.ParseInsertTuples("INSERT INTO `card_brand` VALUES (6,'SP Championship\t',1);", catalog.TableBrand)
	if len(tuples) != 1 {
		t.Fatalf("got %d tuples", len(tuples))
	}
	if name, _ := tuples[0].String(1); name != "SP Championship\t" {
		t.Errorf("raw names are kept verbatim, got %q", name)
	}
}

func TestExtractInsertStatements(t *testing.T) {
	text := "-- comment\nCREATE DATABASE x;\nUSE x;\nINSERT INTO `variant` VALUES (1,'Base;1');\nINSERT INTO `variant` VALUES (2,'Gold');"

	stmts := catalog.ExtractInsertStatements(text)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(stmts), stmts)
	}
	if stmts[0] != "INSERT INTO `variant` VALUES (1,'Base;1');" {
		t.Errorf("semicolon inside quotes should not end the statement: %q", stmts[0])
	}
}

func TestParseReferencesSkipsMalformedRows(t *testing.T) {
	raw, warnings := catalog.ParseReferences(catalog.ReferenceText{
		Variants: "INSERT INTO `variant` VALUES (1,'Base'),('x','Gold'),(3);",
	})

	if len(raw.Variants) != 1 || raw.Variants[0].Name != "Base" {
		t.Errorf("unexpected variants %+v", raw.Variants)
	}
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", warnings)
	}
}

func TestParseSampleReferences(t *testing.T) {
	raw, warnings := catalog.ParseReferences(catalogtest.Text())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if len(raw.Manufacturers) != 7 {
		t.Errorf("manufacturers = %d, want 7", len(raw.Manufacturers))
	}
	if len(raw.Themes) != 7 {
		t.Errorf("themes = %d, want 7", len(raw.Themes))
	}
	if raw.Themes[6].BrandID != nil {
		t.Error("Rack Pack has a NULL brand")
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "reference.sql")
	all := catalogtest.ManufacturersDump + catalogtest.BrandsDump + catalogtest.ThemesDump
	if err := os.WriteFile(shared, []byte(all), 0o644); err != nil {
		t.Fatal(err)
	}
	variants := filepath.Join(dir, "variant.sql")
	if err := os.WriteFile(variants, []byte(catalogtest.VariantsDump), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _, err := catalog.Load(catalog.ReferenceFiles{
		Manufacturers: shared,
		Brands:        shared,
		Themes:        shared,
		Variants:      variants,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := c.Brand("sp authentic"); !ok {
		t.Error("brand from shared file missing")
	}
	if c.DefaultVariantID() != 1 {
		t.Errorf("DefaultVariantID() = %d", c.DefaultVariantID())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := catalog.Load(catalog.ReferenceFiles{Brands: filepath.Join(t.TempDir(), "nope.sql")})
	if err == nil {
		t.Error("expected an error for a missing dump file")
	}
}
