package outbox

import (
	"context"

	"github.com/google/uuid"
)

// Sink is the EventSink the session managers write through: events land in
// the outbox table and the listener relays them to the transport. Managers
// treat Append failures as log-and-continue, so a broken outbox never unwinds
// a committed session mutation.
type Sink struct {
	repo *Repository
}

// NewSink creates a new outbox-backed event sink.
func NewSink(repo *Repository) *Sink {
	return &Sink{repo: repo}
}

func (s *Sink) Append(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error {
	return s.repo.Insert(ctx, uuid.New(), sessionID, eventType, payload)
}
