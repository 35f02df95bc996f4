// Package achievements defines the boundary to the badge subsystem. The
// managers report what happened; the subsystem decides which badges that
// earns. Notification failures are logged by callers, never propagated.
package achievements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventKind is the closed set of achievement-relevant events.
type EventKind string

const (
	EventGroupCreated       EventKind = "GROUP_CREATED"
	EventMealCreated        EventKind = "MEAL_CREATED"
	EventVotingParticipated EventKind = "VOTING_PARTICIPATED"
	EventVotingWon          EventKind = "VOTING_WON"
	EventGameClickerWon     EventKind = "GAME_CLICKER_WON"
	EventGameRouletteWon    EventKind = "GAME_ROULETTE_WON"
)

// Badge describes a badge a profile just earned, to be surfaced to the user.
type Badge struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	EarnedAt    time.Time `json:"earned_at"`
}

// Notifier defines what the managers need from the achievement subsystem.
type Notifier interface {
	Notify(ctx context.Context, profileID uuid.UUID, kind EventKind) ([]Badge, error)
}

// NoopNotifier discards all events. Used when the badge subsystem is not
// deployed alongside the core.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, profileID uuid.UUID, kind EventKind) ([]Badge, error) {
	return nil, nil
}

// LogNotifier logs events without awarding anything. Useful in development.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, profileID uuid.UUID, kind EventKind) ([]Badge, error) {
	log.Info().
		Str("profile_id", profileID.String()).
		Str("event_kind", string(kind)).
		Msg("achievement event")
	return nil, nil
}
