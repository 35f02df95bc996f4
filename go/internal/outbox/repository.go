package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Repository persists outbox rows. It runs over database/sql rather than the
// pgx pool because the listener shares its lib/pq connection settings.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new outbox repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert records an event for publication. An INSERT trigger on
// session_outbox issues NOTIFY with the row id, which wakes the listener.
func (r *Repository) Insert(ctx context.Context, id, sessionID uuid.UUID, eventType string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_outbox (id, session_id, event_type, payload)
		VALUES ($1, $2, $3, $4)`,
		id, sessionID, eventType,
		pqtype.NullRawMessage{RawMessage: payload, Valid: len(payload) > 0})
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, event_type, payload, created_at
		FROM session_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var (
			e       OutboxEvent
			payload pqtype.NullRawMessage
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		e.Payload = payload.RawMessage
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error) {
	var (
		e       OutboxEvent
		payload pqtype.NullRawMessage
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, event_type, payload, created_at
		FROM session_outbox
		WHERE id = $1 AND sent_at IS NULL`, id).
		Scan(&e.ID, &e.SessionID, &e.EventType, &payload, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("outbox event %s not found or already sent", id)
		}
		return nil, fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	e.Payload = payload.RawMessage
	return &e, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE session_outbox SET sent_at = now()
		WHERE id = $1 AND sent_at IS NULL`, id); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}
