package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// logEvent records an event when a logger is configured. Logging failures
// never fail the operation being logged.
func logEvent(l EventLogger, eventType string, data map[string]any) {
	if l == nil {
		return
	}
	_ = l.LogEvent(eventType, data)
}
