package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/codyseavey/card-checklist/internal/metrics"
	"github.com/codyseavey/card-checklist/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRunNotFound         = errors.New("import run not found")
	ErrPersistenceDisabled = errors.New("no database configured")
)

const insertBatchSize = 200

// ImportConfig holds the per-deployment settings of an ImportService.
type ImportConfig struct {
	PlayerID int
	// CatalogWarnings are copied into every run's issue log so each review
	// report shows reference data problems.
	CatalogWarnings []string
}

// ImportService runs the batch over a checklist and records the outcome. With a
// nil db nothing is persisted and the lookup methods return ErrPersistenceDisabled.
type ImportService struct {
	db        *gorm.DB
	catalog   *catalog.Catalog
	processor *BatchProcessor
	scraper   *ChecklistScraper
	cfg       ImportConfig
	logger    zerolog.Logger
}

func NewImportService(db *gorm.DB, c *catalog.Catalog, cfg ImportConfig, logger zerolog.Logger) *ImportService {
	processor := NewBatchProcessor(c, cfg.PlayerID)
	cfg.PlayerID = processor.PlayerID()
	return &ImportService{
		db:        db,
		catalog:   c,
		processor: processor,
		scraper:   NewChecklistScraper(logger),
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *ImportService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *ImportService) PlayerID() int {
	return s.cfg.PlayerID
}

// ImportChecklist scrapes an exported checklist page and runs it. Scraper
// issues land in the same run log as resolution issues.
func (s *ImportService) ImportChecklist(ctx context.Context, source string, r io.Reader) (*models.ImportRun, *BatchResult, error) {
	id := uuid.New().String()
	log := s.newIssueLog(id)

	rows, err := s.scraper.Parse(r, log)
	if err != nil {
		return nil, nil, err
	}
	return s.execute(ctx, id, source, rows, log)
}

// Run processes already scraped rows as one import run. ErrCatalogNotBuilt is
// returned together with the aborted run.
func (s *ImportService) Run(ctx context.Context, source string, rows []RawCardRow) (*models.ImportRun, *BatchResult, error) {
	id := uuid.New().String()
	return s.execute(ctx, id, source, rows, s.newIssueLog(id))
}

func (s *ImportService) newIssueLog(runID string) *IssueLog {
	log := NewIssueLog(s.logger.With().Str("import_run", runID).Logger())
	log.AddCatalogWarnings(s.cfg.CatalogWarnings)
	return log
}

func (s *ImportService) execute(ctx context.Context, id, source string, rows []RawCardRow, log *IssueLog) (*models.ImportRun, *BatchResult, error) {
	start := time.Now()

	result, batchErr := s.processor.Process(rows, log)

	status := models.ImportStatusCompleted
	if errors.Is(batchErr, ErrCatalogNotBuilt) {
		status = models.ImportStatusAborted
	}

	for i := range result.Accepted {
		result.Accepted[i].ImportRunID = id
	}
	for i := range result.NeedsReview {
		result.NeedsReview[i].ImportRunID = id
	}

	finished := time.Now()
	run := &models.ImportRun{
		ID:            id,
		Source:        source,
		PlayerID:      s.cfg.PlayerID,
		Status:        status,
		RowsTotal:     len(rows),
		AcceptedCount: len(result.Accepted),
		ReviewCount:   len(result.NeedsReview),
		IssuesCount:   len(result.Issues),
		StartedAt:     start,
		FinishedAt:    &finished,
	}

	if s.db != nil {
		if err := s.persist(ctx, run, result); err != nil {
			return run, result, fmt.Errorf("persist import run %s: %w", id, err)
		}
	}

	recordImportMetrics(run, result)

	limited := 0
	for _, card := range result.Accepted {
		if card.IsLimited() {
			limited++
		}
	}

	event := s.logger.Info()
	if log.HasCritical() {
		event = s.logger.Warn()
	}
	event.
		Str("import_run", id).
		Str("source", source).
		Str("status", string(status)).
		Int("rows", run.RowsTotal).
		Int("resolved", result.Total()).
		Int("accepted", run.AcceptedCount).
		Int("limited", limited).
		Int("review", run.ReviewCount).
		Int("issues", run.IssuesCount).
		Float64("acceptance_rate", run.AcceptanceRate()).
		Dur("duration", run.Duration()).
		Msg("Import run finished")

	return run, result, batchErr
}

func (s *ImportService) persist(ctx context.Context, run *models.ImportRun, result *BatchResult) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}

		if len(result.Accepted) > 0 {
			columns := make([]clause.Column, len(models.CardRecordIdentityColumns))
			for i, name := range models.CardRecordIdentityColumns {
				columns[i] = clause.Column{Name: name}
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   columns,
				DoUpdates: clause.AssignmentColumns(models.CardRecordUpsertColumns),
			}).CreateInBatches(&result.Accepted, insertBatchSize).Error
			if err != nil {
				return err
			}
		}

		if len(result.NeedsReview) > 0 {
			if err := tx.CreateInBatches(&result.NeedsReview, insertBatchSize).Error; err != nil {
				return err
			}
		}

		if len(result.Issues) > 0 {
			issues := make([]models.ImportIssue, len(result.Issues))
			for i, issue := range result.Issues {
				issues[i] = models.ImportIssue{
					ImportRunID: run.ID,
					Position:    i,
					Level:       string(issue.Level),
					Message:     issue.Message,
				}
			}
			if err := tx.CreateInBatches(&issues, insertBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func recordImportMetrics(run *models.ImportRun, result *BatchResult) {
	metrics.ImportRunsTotal.WithLabelValues(string(run.Status)).Inc()
	metrics.ImportRowsTotal.WithLabelValues("accepted").Add(float64(len(result.Accepted)))
	metrics.ImportRowsTotal.WithLabelValues("review").Add(float64(len(result.NeedsReview)))
	for _, issue := range result.Issues {
		metrics.ImportIssuesTotal.WithLabelValues(string(issue.Level)).Inc()
	}
	metrics.ImportDuration.Observe(run.Duration().Seconds())
}

// GetRun returns a run with its issue log.
func (s *ImportService) GetRun(ctx context.Context, id string) (*models.ImportRunDetail, error) {
	if s.db == nil {
		return nil, ErrPersistenceDisabled
	}

	var run models.ImportRun
	err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var issues []models.ImportIssue
	if err := s.db.WithContext(ctx).Where("import_run_id = ?", id).Order("position").Find(&issues).Error; err != nil {
		return nil, err
	}
	return &models.ImportRunDetail{Run: run, Issues: issues}, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means 50.
func (s *ImportService) ListRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if s.db == nil {
		return nil, ErrPersistenceDisabled
	}
	if limit <= 0 {
		limit = 50
	}

	var runs []models.ImportRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func (s *ImportService) ReviewEntries(ctx context.Context, runID string) ([]models.ReviewEntry, error) {
	if err := s.ensureRun(ctx, runID); err != nil {
		return nil, err
	}
	var entries []models.ReviewEntry
	err := s.db.WithContext(ctx).Where("import_run_id = ?", runID).Order("id").Find(&entries).Error
	return entries, err
}

// CardsForRun returns the cards last written by runID. A card re-imported by a
// later run belongs to that later run.
func (s *ImportService) CardsForRun(ctx context.Context, runID string) ([]models.CardRecord, error) {
	if err := s.ensureRun(ctx, runID); err != nil {
		return nil, err
	}
	var cards []models.CardRecord
	err := s.db.WithContext(ctx).Where("import_run_id = ?", runID).Order("season, card_number").Find(&cards).Error
	return cards, err
}

// RunIssues rebuilds the issue log of a persisted run.
func (s *ImportService) RunIssues(ctx context.Context, runID string) ([]Issue, error) {
	detail, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	issues := make([]Issue, len(detail.Issues))
	for i, issue := range detail.Issues {
		issues[i] = Issue{Level: IssueLevel(issue.Level), Message: issue.Message}
	}
	return issues, nil
}

func (s *ImportService) ensureRun(ctx context.Context, runID string) error {
	if s.db == nil {
		return ErrPersistenceDisabled
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ImportRun{}).Where("id = ?", runID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRunNotFound
	}
	return nil
}
