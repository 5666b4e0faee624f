package core

import (
	"errors"
	"time"

	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
)

// Sources label which front end requested an analysis.
const (
	SourceCLI  = "cli"
	SourceHTTP = "http"
	SourceMCP  = "mcp"
	SourceTUI  = "board"
)

// AnalysisService runs the Analyzer against the wall clock and records the
// result in the event log. The Analyzer itself stays pure.
type AnalysisService struct {
	analyzer *Analyzer
	events   EventLogger
	clock    func() time.Time
	location *time.Location
}

// NewAnalysisService wraps analyzer. events may be nil. loc is the zone due
// dates are interpreted in; nil means UTC.
func NewAnalysisService(analyzer *Analyzer, events EventLogger, loc *time.Location) *AnalysisService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalysisService{analyzer: analyzer, events: events, clock: time.Now, location: loc}
}

// Now returns the reference instant for a new analysis.
func (s *AnalysisService) Now() time.Time {
	return s.clock().In(s.location)
}

// Location returns the zone due dates are interpreted in.
func (s *AnalysisService) Location() *time.Location {
	return s.location
}

// Analyze ranks tasks as of Now.
func (s *AnalysisService) Analyze(source string, tasks []models.Task, req models.AnalysisRequest) (*models.AnalysisOutcome, error) {
	outcome, err := s.analyzer.Analyze(tasks, req, s.Now())
	s.record(source, len(tasks), outcome, err)
	return outcome, err
}

// Suggest returns the top picks as of Now.
func (s *AnalysisService) Suggest(source string, tasks []models.Task, req models.AnalysisRequest) (*models.SuggestionSet, error) {
	set, err := s.analyzer.Suggest(tasks, req, s.Now())
	var outcome *models.AnalysisOutcome
	if set != nil {
		outcome = set.Outcome
	}
	s.record(source, len(tasks), outcome, err)
	if err == nil && !outcome.Rejected() {
		logEvent(s.events, "suggestions.served", map[string]any{
			"source":   source,
			"count":    len(set.Suggestions),
			"strategy": string(outcome.Strategy),
		})
	}
	return set, err
}

func (s *AnalysisService) record(source string, submitted int, outcome *models.AnalysisOutcome, err error) {
	if err != nil {
		data := map[string]any{"source": source, "error": err.Error()}
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			data["field"] = vErr.Field
		}
		logEvent(s.events, "analysis.invalid", data)
		return
	}
	if outcome.Rejected() {
		logEvent(s.events, "analysis.rejected", map[string]any{
			"source":    source,
			"submitted": submitted,
			"cycles":    len(outcome.Rejection.Cycles),
			"affected":  outcome.Rejection.AffectedTaskIDs,
		})
		return
	}
	logEvent(s.events, "analysis.completed", map[string]any{
		"source":   source,
		"strategy": string(outcome.Strategy),
		"role":     string(outcome.Role),
		"tasks":    len(outcome.Tasks),
		"warnings": len(outcome.Warnings),
	})
}
