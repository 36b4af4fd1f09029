package database

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// cleanupDuplicateCardRecords removes duplicate card_records entries before the
// identity index is added, keeping the most recently imported row.
func cleanupDuplicateCardRecords(db *gorm.DB) error {
	if !db.Migrator().HasTable("card_records") {
		return nil
	}

	groupBy := "player_id, season, card_number, brand_id"
	if db.Migrator().HasColumn("card_records", "variant_id") {
		groupBy += ", variant_id"
	}
	if db.Migrator().HasColumn("card_records", "theme_key") {
		groupBy += ", theme_key"
	} else if db.Migrator().HasColumn("card_records", "theme_id") {
		groupBy += ", COALESCE(theme_id, 0)"
	}

	result := db.Exec(`
		DELETE FROM card_records
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM card_records
			GROUP BY ` + groupBy + `
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Info().Int64("rows", result.RowsAffected).Msg("Cleaned up duplicate card_records entries")
	}
	return nil
}

// RunMigrations runs data migrations after schema changes. Safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := migrateImportRunStatus(db); err != nil {
		return err
	}
	if err := backfillCardThemeKey(db); err != nil {
		return err
	}
	return dropLegacyCardIndexes(db)
}

// backfillCardThemeKey copies theme_id into theme_key for rows written before
// the theme joined the card identity.
func backfillCardThemeKey(db *gorm.DB) error {
	result := db.Exec(`UPDATE card_records SET theme_key = theme_id WHERE theme_id IS NOT NULL AND theme_key <> theme_id`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Info().Int64("rows", result.RowsAffected).Msg("Backfilled card_records theme_key")
	}
	return nil
}

// migrateImportRunStatus backfills status on runs recorded before it existed.
func migrateImportRunStatus(db *gorm.DB) error {
	result := db.Exec(`UPDATE import_runs SET status = 'completed' WHERE status IS NULL OR status = ''`)
	if result.Error != nil {
		log.Warn().Err(result.Error).Msg("failed to backfill import_runs status")
		return nil
	}
	if result.RowsAffected > 0 {
		log.Info().Int64("rows", result.RowsAffected).Msg("Backfilled import_runs status")
	}
	return nil
}

// legacyCardIndexes are identity indexes replaced by idx_card_theme_identity.
// idx_card_season_number left out the variant, idx_card_identity the theme, so
// a Gold and a Base card, or two insert sets, of the same number collided.
// AutoMigrate does not drop old indexes on its own.
var legacyCardIndexes = []string{"idx_card_season_number", "idx_card_identity"}

func dropLegacyCardIndexes(db *gorm.DB) error {
	for _, name := range legacyCardIndexes {
		if !db.Migrator().HasIndex("card_records", name) {
			continue
		}
		if err := db.Migrator().DropIndex("card_records", name); err != nil {
			log.Warn().Err(err).Str("index", name).Msg("failed to drop legacy card_records index")
		}
	}
	return nil
}
