package observability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the metrics window used when none is given.
const DefaultWindow = "7d"

// Metrics summarises analysis and task-store activity over a window of the
// event log.
type Metrics struct {
	Analyses           int            `json:"analyses"`
	Rejections         int            `json:"rejections"`
	InvalidRequests    int            `json:"invalid_requests"`
	SuggestionRequests int            `json:"suggestion_requests"`
	TasksScored        int            `json:"tasks_scored"`
	ByStrategy         map[string]int `json:"by_strategy"`
	BySource           map[string]int `json:"by_source"`
	TasksCreated       int            `json:"tasks_created"`
	TasksUpdated       int            `json:"tasks_updated"`
	TasksDeleted       int            `json:"tasks_deleted"`
	EventCount         int            `json:"event_count"`
	OldestEvent        *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent        *time.Time     `json:"newest_event,omitempty"`
}

// RejectionRate is the share of analyses that were rejected for cycles.
func (m *Metrics) RejectionRate() float64 {
	total := m.Analyses + m.Rejections
	if total == 0 {
		return 0
	}
	return float64(m.Rejections) / float64(total)
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate replays every event at or after since.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		ByStrategy: make(map[string]int),
		BySource:   make(map[string]int),
		EventCount: len(events),
	}

	for _, e := range events {
		t := e.Time
		if m.OldestEvent == nil || t.Before(*m.OldestEvent) {
			m.OldestEvent = &t
		}
		if m.NewestEvent == nil || t.After(*m.NewestEvent) {
			m.NewestEvent = &t
		}

		switch e.Type {
		case EventAnalysisCompleted:
			m.Analyses++
			m.TasksScored += intField(e.Data, "tasks")
			countLabel(m.ByStrategy, e.Data, "strategy")
			countLabel(m.BySource, e.Data, "source")
		case EventAnalysisRejected:
			m.Rejections++
			countLabel(m.BySource, e.Data, "source")
		case EventAnalysisInvalid:
			m.InvalidRequests++
		case EventSuggestionsServed:
			m.SuggestionRequests++
		case EventTaskCreated:
			m.TasksCreated++
		case EventTaskUpdated:
			m.TasksUpdated++
		case EventTaskDeleted:
			m.TasksDeleted++
		}
	}

	return m, nil
}

func countLabel(counts map[string]int, data map[string]any, key string) {
	if v, ok := data[key].(string); ok && v != "" {
		counts[v]++
	}
}

// intField reads a numeric field. Values round-tripped through JSON decode
// as float64.
func intField(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// ParseSince turns a window such as "7d", "24h" or "2w" into the instant that
// far before now. An empty window means DefaultWindow.
func ParseSince(window string, now time.Time) (time.Time, error) {
	window = strings.TrimSpace(window)
	if window == "" {
		window = DefaultWindow
	}
	if len(window) < 2 {
		return time.Time{}, fmt.Errorf("invalid window %q (use e.g. 7d, 24h, 2w)", window)
	}

	n, err := strconv.Atoi(window[:len(window)-1])
	if err != nil || n < 0 {
		return time.Time{}, fmt.Errorf("invalid window %q (use e.g. 7d, 24h, 2w)", window)
	}

	switch window[len(window)-1] {
	case 'h':
		return now.Add(-time.Duration(n) * time.Hour), nil
	case 'd':
		return now.AddDate(0, 0, -n), nil
	case 'w':
		return now.AddDate(0, 0, -7*n), nil
	}
	return time.Time{}, fmt.Errorf("unsupported window unit in %q (use h, d or w)", window)
}
