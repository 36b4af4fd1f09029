package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// IssueLevel classifies a run-scoped issue.
type IssueLevel string

const (
	IssueInfo     IssueLevel = "info"
	IssueWarning  IssueLevel = "warning"
	IssueCritical IssueLevel = "critical"
)

// Issue is one data-quality note collected during a run.
type Issue struct {
	Level   IssueLevel `json:"level"`
	Message string     `json:"message"`
}

// IssueLog collects per-run issues instead of failing the run. Every issue is
// also forwarded to the logger. A nil *IssueLog discards everything.
type IssueLog struct {
	mu     sync.Mutex
	issues []Issue
	logger zerolog.Logger
}

func NewIssueLog(logger zerolog.Logger) *IssueLog {
	return &IssueLog{logger: logger}
}

func (l *IssueLog) Info(format string, args ...any) {
	l.add(IssueInfo, fmt.Sprintf(format, args...))
}

func (l *IssueLog) Warn(format string, args ...any) {
	l.add(IssueWarning, fmt.Sprintf(format, args...))
}

func (l *IssueLog) Critical(format string, args ...any) {
	l.add(IssueCritical, fmt.Sprintf(format, args...))
}

// AddCatalogWarnings records the warnings produced while building a catalog.
// Messages starting with "Critical" are recorded as critical.
func (l *IssueLog) AddCatalogWarnings(warnings []string) {
	for _, w := range warnings {
		if strings.HasPrefix(w, "Critical") {
			l.add(IssueCritical, w)
		} else {
			l.add(IssueWarning, w)
		}
	}
}

func (l *IssueLog) add(level IssueLevel, msg string) {
	if l == nil {
		return
	}

	l.mu.Lock()
	l.issues = append(l.issues, Issue{Level: level, Message: msg})
	l.mu.Unlock()

	switch level {
	case IssueCritical:
		l.logger.Error().Msg(msg)
	case IssueWarning:
		l.logger.Warn().Msg(msg)
	default:
		l.logger.Info().Msg(msg)
	}
}

// Issues returns a copy of the collected issues in the order they were added.
func (l *IssueLog) Issues() []Issue {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Issue, len(l.issues))
	copy(out, l.issues)
	return out
}

func (l *IssueLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.issues)
}

// HasCritical reports whether any critical issue was recorded.
func (l *IssueLog) HasCritical() bool {
	for _, issue := range l.Issues() {
		if issue.Level == IssueCritical {
			return true
		}
	}
	return false
}

// Messages returns the issue messages only, in order.
func (l *IssueLog) Messages() []string {
	issues := l.Issues()
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.Message
	}
	return msgs
}
