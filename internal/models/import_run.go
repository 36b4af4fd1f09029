package models

import (
	"time"
)

type ImportStatus string

const (
	ImportStatusCompleted ImportStatus = "completed"
	// ImportStatusAborted marks a run that stopped before any row was processed,
	// e.g. because the reference catalog was empty.
	ImportStatusAborted ImportStatus = "aborted"
)

// ImportRun records one pass of the batch over one checklist.
type ImportRun struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	Source        string       `json:"source"`
	PlayerID      int          `json:"player_id"`
	Status        ImportStatus `json:"status" gorm:"not null;index"`
	RowsTotal     int          `json:"rows_total"`
	AcceptedCount int          `json:"accepted_count"`
	ReviewCount   int          `json:"review_count"`
	IssuesCount   int          `json:"issues_count"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    *time.Time   `json:"finished_at"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Duration is zero until the run has finished.
func (r ImportRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// AcceptanceRate is the share of rows accepted without review, in [0,1].
func (r ImportRun) AcceptanceRate() float64 {
	if r.RowsTotal == 0 {
		return 0
	}
	return float64(r.AcceptedCount) / float64(r.RowsTotal)
}

type ImportRunListResponse struct {
	Runs       []ImportRun `json:"runs"`
	TotalCount int         `json:"total_count"`
}

// ImportIssue is one persisted entry of a run's issue log.
type ImportIssue struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	ImportRunID string `json:"import_run_id" gorm:"not null;index"`
	Position    int    `json:"position"`
	Level       string `json:"level" gorm:"index"`
	Message     string `json:"message"`
}

// ImportRunDetail is the API response for a single run.
type ImportRunDetail struct {
	Run    ImportRun     `json:"run"`
	Issues []ImportIssue `json:"issues"`
}
