package database

import (
	"fmt"
	"strings"

	"github.com/codyseavey/card-checklist/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the database at dbPath into the package-level DB.
func Initialize(dbPath string) error {
	db, err := Open(dbPath, logger.Warn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to sqlite at dbPath (":memory:" works for tests), migrates the
// schema and runs the data migrations.
func Open(dbPath string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}

	// Every pooled connection to :memory: would get its own empty database.
	if strings.Contains(dbPath, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("access database pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info().Str("path", dbPath).Msg("Database connected successfully")

	// Must run before AutoMigrate creates idx_card_theme_identity
	if err := cleanupDuplicateCardRecords(db); err != nil {
		return nil, fmt.Errorf("cleanup duplicate card records: %w", err)
	}

	err = db.AutoMigrate(&models.ImportRun{}, &models.CardRecord{}, &models.ReviewEntry{}, &models.ImportIssue{})
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Info().Msg("Database migration completed")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
