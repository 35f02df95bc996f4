package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/forkcast/forkcast/go/internal/models"
)

// Config holds the game session knobs.
type Config struct {
	// IdleSessionTTL is how long a session may sit in a pre-game status with
	// no activity before the scheduler garbage-collects it.
	IdleSessionTTL time.Duration
}

// DefaultConfig returns the production game settings.
func DefaultConfig() Config {
	return Config{
		IdleSessionTTL: 30 * time.Minute,
	}
}

// CreateSessionRequest creates a new game session for a group.
type CreateSessionRequest struct {
	GroupID    uuid.UUID
	HostID     uuid.UUID
	GameType   models.GameType
	Duration   time.Duration
	MinPlayers int
}

// JoinRequest adds a player (with an optional proposed meal) to a session.
type JoinRequest struct {
	SessionID uuid.UUID
	ProfileID uuid.UUID
	MealID    *uuid.UUID
}

// CreateSessionRecord is the repository-level create request.
type CreateSessionRecord struct {
	ID         uuid.UUID
	GroupID    uuid.UUID
	HostID     uuid.UUID
	GameType   models.GameType
	Duration   time.Duration
	MinPlayers int
	Status     models.GameSessionStatus
}

// TransitionRecord is a conditional status update: it applies only while the
// session status is one of From. StartTime/EndTime are set when non-nil.
type TransitionRecord struct {
	SessionID uuid.UUID
	From      []models.GameSessionStatus
	To        models.GameSessionStatus
	StartTime *time.Time
	EndTime   *time.Time
}

// CompleteRecord is the conditional completion update. WinningMealID may be
// nil when a clicker winner never chose a meal.
type CompleteRecord struct {
	SessionID     uuid.UUID
	From          []models.GameSessionStatus
	WinnerID      uuid.UUID
	WinningMealID *uuid.UUID
	EndTime       *time.Time
}

// UpsertParticipantRecord joins or updates a participant. The unique key is
// (game_session_id, profile_id); rejoining updates the proposed meal.
type UpsertParticipantRecord struct {
	ID            uuid.UUID
	GameSessionID uuid.UUID
	ProfileID     uuid.UUID
	MealID        *uuid.UUID
	JoinedAt      time.Time
}
