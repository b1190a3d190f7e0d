package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventAccessGranted EventType = "ACCESS_GRANTED"
	EventAccessDenied  EventType = "ACCESS_DENIED"
	EventCheckIn       EventType = "CHECK_IN"
	EventCheckOut      EventType = "CHECK_OUT"
	EventFaceEnrolled  EventType = "FACE_ENROLLED"
	EventFaceDeleted   EventType = "FACE_DELETED"
)

// Event represents an auditable access or enrollment action. Kept for
// privacy-regulation compliance; never carries image bytes or embeddings.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType EventType         `json:"event_type"`
	Identity  string            `json:"identity,omitempty"`
	KioskID   string            `json:"kiosk_id,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Score     float64           `json:"score,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("identity", event.Identity),
		slog.String("kiosk_id", event.KioskID),
		slog.Bool("success", event.Success),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
