package models

import (
	"time"

	"github.com/google/uuid"
)

// GameType defines which game decides the winning meal.
type GameType string

const (
	GameTypeEggClicker GameType = "EGG_CLICKER"
	GameTypeRoulette   GameType = "ROULETTE"
)

// GameSessionStatus defines the phase of a game session.
type GameSessionStatus string

const (
	GameStatusWaiting    GameSessionStatus = "WAITING"
	GameStatusReady      GameSessionStatus = "READY"
	GameStatusCountdown  GameSessionStatus = "COUNTDOWN"
	GameStatusPlaying    GameSessionStatus = "PLAYING"
	GameStatusSubmitting GameSessionStatus = "SUBMITTING"
	GameStatusCompleted  GameSessionStatus = "COMPLETED"
	GameStatusCancelled  GameSessionStatus = "CANCELLED"
)

// ActiveGameStatuses are the non-terminal game statuses. A group may hold at
// most one session in any of these.
var ActiveGameStatuses = []GameSessionStatus{
	GameStatusWaiting,
	GameStatusReady,
	GameStatusCountdown,
	GameStatusPlaying,
	GameStatusSubmitting,
}

// IsTerminal reports whether a game session status admits no further
// transitions.
func (s GameSessionStatus) IsTerminal() bool {
	return s == GameStatusCompleted || s == GameStatusCancelled
}

// GameSession represents one click-race or roulette round for a group.
type GameSession struct {
	ID            uuid.UUID         `json:"id"`
	GroupID       uuid.UUID         `json:"group_id"`
	HostID        uuid.UUID         `json:"host_id"`
	GameType      GameType          `json:"game_type"`
	Duration      time.Duration     `json:"duration"`
	MinPlayers    int               `json:"min_players"`
	Status        GameSessionStatus `json:"status"`
	StartTime     *time.Time        `json:"start_time,omitempty"`
	EndTime       *time.Time        `json:"end_time,omitempty"`
	WinnerID      *uuid.UUID        `json:"winner_id,omitempty"`
	WinningMealID *uuid.UUID        `json:"winning_meal_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// GameParticipant is a member who joined a game session. MealID is the meal
// they bring to the table; nil for clicker players who have not chosen yet.
type GameParticipant struct {
	ID            uuid.UUID  `json:"id"`
	GameSessionID uuid.UUID  `json:"game_session_id"`
	ProfileID     uuid.UUID  `json:"profile_id"`
	MealID        *uuid.UUID `json:"meal_id,omitempty"`
	ClickCount    int        `json:"click_count"`
	IsReady       bool       `json:"is_ready"`
	HasSubmitted  bool       `json:"has_submitted"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	JoinedAt      time.Time  `json:"joined_at"`
}
