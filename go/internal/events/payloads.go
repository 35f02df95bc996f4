package events

import (
	"time"
)

// Event payload types shared between the session managers and the outbox
// relay. Payloads are marshaled to JSON before insertion.

// Event type names as stored in the outbox and used as publish subjects.
const (
	TypeVotingSessionStarted   = "VotingSessionStarted"
	TypeMealProposed           = "MealProposed"
	TypeVotingPhaseStarted     = "VotingPhaseStarted"
	TypeVoteCast               = "VoteCast"
	TypeVotingSessionCompleted = "VotingSessionCompleted"
	TypeVotingSessionExpired   = "VotingSessionExpired"
	TypeGameSessionCreated     = "GameSessionCreated"
	TypePlayerJoined           = "PlayerJoined"
	TypePlayerReady            = "PlayerReady"
	TypeGameCountdownStarted   = "GameCountdownStarted"
	TypeGamePlayingStarted     = "GamePlayingStarted"
	TypeGameSubmittingStarted  = "GameSubmittingStarted"
	TypeClickCountSubmitted    = "ClickCountSubmitted"
	TypeGameSessionCompleted   = "GameSessionCompleted"
	TypeGameSessionCancelled   = "GameSessionCancelled"
	TypePortionSelected        = "PortionSelected"
	TypePortionDefaulted       = "PortionDefaulted"
)

// VotingSessionStartedPayload is the payload for a VotingSessionStarted event
type VotingSessionStartedPayload struct {
	SessionID      string    `json:"session_id"`
	GroupID        string    `json:"group_id"`
	InitiatorID    string    `json:"initiator_id"`
	Title          string    `json:"title"`
	ProposalEndsAt time.Time `json:"proposal_ends_at"`
}

// MealProposedPayload is the payload for a MealProposed event
type MealProposedPayload struct {
	SessionID    string    `json:"session_id"`
	ProposalID   string    `json:"proposal_id"`
	MealID       string    `json:"meal_id"`
	ProposedByID string    `json:"proposed_by_id"`
	ProposedAt   time.Time `json:"proposed_at"`
}

// VotingPhaseStartedPayload is the payload for a VotingPhaseStarted event
type VotingPhaseStartedPayload struct {
	SessionID     string    `json:"session_id"`
	GroupID       string    `json:"group_id"`
	ProposalCount int       `json:"proposal_count"`
	VotingEndsAt  time.Time `json:"voting_ends_at"`
}

// VoteCastPayload is the payload for a VoteCast event
type VoteCastPayload struct {
	SessionID  string    `json:"session_id"`
	ProposalID string    `json:"proposal_id"`
	VoterID    string    `json:"voter_id"`
	VoteCount  int       `json:"vote_count"`
	VotedAt    time.Time `json:"voted_at"`
}

// VotingSessionCompletedPayload is the payload for a VotingSessionCompleted event
type VotingSessionCompletedPayload struct {
	SessionID    string    `json:"session_id"`
	GroupID      string    `json:"group_id"`
	WinnerMealID string    `json:"winner_meal_id"`
	TotalVotes   int       `json:"total_votes"`
	CompletedAt  time.Time `json:"completed_at"`
}

// VotingSessionExpiredPayload is the payload for a VotingSessionExpired event,
// emitted when a session is reclaimed because it timed out with no activity.
type VotingSessionExpiredPayload struct {
	SessionID string    `json:"session_id"`
	GroupID   string    `json:"group_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

// GameSessionCreatedPayload is the payload for a GameSessionCreated event
type GameSessionCreatedPayload struct {
	SessionID  string    `json:"session_id"`
	GroupID    string    `json:"group_id"`
	HostID     string    `json:"host_id"`
	GameType   string    `json:"game_type"`
	MinPlayers int       `json:"min_players"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlayerJoinedPayload is the payload for a PlayerJoined event
type PlayerJoinedPayload struct {
	SessionID string     `json:"session_id"`
	ProfileID string     `json:"profile_id"`
	MealID    *string    `json:"meal_id,omitempty"`
	JoinedAt  time.Time  `json:"joined_at"`
}

// PlayerReadyPayload is the payload for a PlayerReady event
type PlayerReadyPayload struct {
	SessionID string `json:"session_id"`
	ProfileID string `json:"profile_id"`
	IsReady   bool   `json:"is_ready"`
	AllReady  bool   `json:"all_ready"`
}

// GameCountdownStartedPayload is the payload for a GameCountdownStarted event
type GameCountdownStartedPayload struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// GamePlayingStartedPayload is the payload for a GamePlayingStarted event
type GamePlayingStartedPayload struct {
	SessionID string    `json:"session_id"`
	StartTime time.Time `json:"start_time"`
	EndsAt    time.Time `json:"ends_at"`
}

// GameSubmittingStartedPayload is the payload for a GameSubmittingStarted event
type GameSubmittingStartedPayload struct {
	SessionID string    `json:"session_id"`
	EndTime   time.Time `json:"end_time"`
}

// ClickCountSubmittedPayload is the payload for a ClickCountSubmitted event
type ClickCountSubmittedPayload struct {
	SessionID  string    `json:"session_id"`
	ProfileID  string    `json:"profile_id"`
	ClickCount int       `json:"click_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// GameSessionCompletedPayload is the payload for a GameSessionCompleted event
type GameSessionCompletedPayload struct {
	SessionID     string    `json:"session_id"`
	GroupID       string    `json:"group_id"`
	WinnerID      string    `json:"winner_id"`
	WinningMealID string    `json:"winning_meal_id"`
	CompletedAt   time.Time `json:"completed_at"`
}

// GameSessionCancelledPayload is the payload for a GameSessionCancelled event
type GameSessionCancelledPayload struct {
	SessionID   string    `json:"session_id"`
	GroupID     string    `json:"group_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// PortionSelectedPayload is the payload for a PortionSelected event
type PortionSelectedPayload struct {
	SessionID       string    `json:"session_id"`
	ProfileID       string    `json:"profile_id"`
	PortionFraction float64   `json:"portion_fraction"`
	TotalKcal       float64   `json:"total_kcal"`
	SelectedAt      time.Time `json:"selected_at"`
}

// PortionDefaultedPayload is the payload for a PortionDefaulted event
type PortionDefaultedPayload struct {
	SessionID   string    `json:"session_id"`
	ProfileID   string    `json:"profile_id"`
	DefaultedAt time.Time `json:"defaulted_at"`
}
