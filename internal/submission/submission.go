// Package submission delivers completed onboarding drafts to downstream
// processing.
package submission

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"onboarding/internal/form/models"
)

// EventType identifies submission messages on the wire.
const EventType = "onboarding.form.submitted"

// Event is the wire form of a submitted draft.
type Event struct {
	ID          uuid.UUID         `json:"id"`
	Type        string            `json:"type"`
	FormID      uuid.UUID         `json:"form_id"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Fields      map[string]string `json:"fields"`
}

// NewEvent wraps a record for publication.
func NewEvent(rec models.Record) Event {
	return Event{
		ID:          uuid.New(),
		Type:        EventType,
		FormID:      rec.FormID,
		SubmittedAt: rec.SubmittedAt,
		Fields:      rec.Fields.Clone(),
	}
}

// LogSubmitter records submissions in the service log. It is used when no
// broker is configured. Field values are not logged.
type LogSubmitter struct {
	logger *slog.Logger
}

func NewLogSubmitter(logger *slog.Logger) *LogSubmitter {
	return &LogSubmitter{logger: logger}
}

func (s *LogSubmitter) Submit(ctx context.Context, rec models.Record) error {
	fields := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		fields = append(fields, name)
	}
	slices.Sort(fields)
	s.logger.InfoContext(ctx, "form submission received",
		"form_id", rec.FormID,
		"submitted_at", rec.SubmittedAt,
		"fields", fields,
	)
	return nil
}
