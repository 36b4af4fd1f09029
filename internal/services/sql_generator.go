package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/codyseavey/card-checklist/internal/models"
)

const (
	DefaultDatabaseName   = "cardcollection"
	DefaultCollectionName = "trading card collection"
	generatedAtLayout     = "2006-01-02 15:04:05"
)

const cardInsertPrefix = "INSERT INTO card (print_run, serial_number, season, number, rookie_card, " +
	"game_used_material, player_id, theme_id, autograph, variant_id) VALUES "

// upsertClause refreshes everything except the identity columns when the card
// already exists. Requires a unique key on the identity columns in MySQL.
const upsertClause = " ON DUPLICATE KEY UPDATE print_run = VALUES(print_run), serial_number = VALUES(serial_number), " +
	"rookie_card = VALUES(rookie_card), game_used_material = VALUES(game_used_material), " +
	"theme_id = VALUES(theme_id), autograph = VALUES(autograph)"

// ScriptOptions controls the header and statement style of a generated script.
type ScriptOptions struct {
	Database    string
	Collection  string
	GeneratedAt time.Time
	Upsert      bool
}

func (o ScriptOptions) withDefaults() ScriptOptions {
	if o.Database == "" {
		o.Database = DefaultDatabaseName
	}
	if o.Collection == "" {
		o.Collection = DefaultCollectionName
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	return o
}

// FormatString quotes s as a SQL string literal, doubling embedded quotes.
func FormatString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func FormatNullableInt(v *int) string {
	if v == nil {
		return "NULL"
	}
	return strconv.Itoa(*v)
}

// InsertStatement renders one card as an INSERT into the card table.
func InsertStatement(card models.CardRecord, upsert bool) string {
	values := []string{
		strconv.Itoa(card.PrintRun),
		strconv.Itoa(card.SerialNumber),
		FormatString(card.Season),
		FormatString(card.CardNumber),
		FormatBool(card.RookieCard),
		FormatBool(card.GameUsedMaterial),
		strconv.Itoa(card.PlayerID),
		FormatNullableInt(card.ThemeID),
		FormatBool(card.Autograph),
		strconv.Itoa(card.VariantID),
	}

	stmt := cardInsertPrefix + "(" + strings.Join(values, ", ") + ")"
	if upsert {
		stmt += upsertClause
	}
	return stmt + ";"
}

func InsertStatements(cards []models.CardRecord, upsert bool) []string {
	stmts := make([]string, 0, len(cards))
	for _, card := range cards {
		stmts = append(stmts, InsertStatement(card, upsert))
	}
	return stmts
}

// Script assembles the full import script: database selection, header comments,
// one statement per card and a footer. With no cards the statement block is omitted.
func Script(cards []models.CardRecord, opts ScriptOptions) string {
	opts = opts.withDefaults()

	parts := []string{
		fmt.Sprintf("USE %s;\n", opts.Database),
		fmt.Sprintf("-- SQL Import script for %s", opts.Collection),
		fmt.Sprintf("-- Generated on %s\n", opts.GeneratedAt.Format(generatedAtLayout)),
		"-- This script assumes that card_manufacturer, card_brand, card_theme,",
		"-- and variant tables are already populated correctly.\n",
	}

	if len(cards) > 0 {
		parts = append(parts, "\n-- Inserting card data --")
		parts = append(parts, InsertStatements(cards, opts.Upsert)...)
	}

	parts = append(parts, fmt.Sprintf("\n-- End of %s import script --", opts.Collection))
	return strings.Join(parts, "\n")
}

// WriteScript writes Script followed by a trailing newline.
func WriteScript(w io.Writer, cards []models.CardRecord, opts ScriptOptions) error {
	if _, err := io.WriteString(w, Script(cards, opts)+"\n"); err != nil {
		return fmt.Errorf("write sql script: %w", err)
	}
	return nil
}
