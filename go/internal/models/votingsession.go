package models

import (
	"github.com/google/uuid"
	"time"
)

// VotingSessionStatus defines the phase of a voting session.
type VotingSessionStatus string

const (
	VotingStatusProposalPhase VotingSessionStatus = "PROPOSAL_PHASE"
	VotingStatusVotingPhase   VotingSessionStatus = "VOTING_PHASE"
	VotingStatusCompleted     VotingSessionStatus = "COMPLETED"
)

// ActiveVotingStatuses are the non-terminal voting session statuses. A group
// may hold at most one session in any of these.
var ActiveVotingStatuses = []VotingSessionStatus{
	VotingStatusProposalPhase,
	VotingStatusVotingPhase,
}

// VotingSession represents one proposal/vote round for a group.
type VotingSession struct {
	ID             uuid.UUID           `json:"id"`
	GroupID        uuid.UUID           `json:"group_id"`
	InitiatorID    uuid.UUID           `json:"initiator_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Status         VotingSessionStatus `json:"status"`
	ProposalEndsAt *time.Time          `json:"proposal_ends_at,omitempty"`
	VotingEndsAt   *time.Time          `json:"voting_ends_at,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	WinnerMealID   *uuid.UUID          `json:"winner_meal_id,omitempty"`
	TotalVotes     int                 `json:"total_votes"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// MealProposal is a member-submitted candidate meal for a voting session.
// VoteCount is denormalized and recomputed from active votes on every write.
type MealProposal struct {
	ID              uuid.UUID `json:"id"`
	VotingSessionID uuid.UUID `json:"voting_session_id"`
	MealID          uuid.UUID `json:"meal_id"`
	ProposedByID    uuid.UUID `json:"proposed_by_id"`
	VoteCount       int       `json:"vote_count"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// VoteType defines the kind of vote cast. Only up-votes count today.
type VoteType string

const (
	VoteTypeUp VoteType = "UP"
)

// Vote is a member's vote on a proposal. At most one active vote exists per
// (proposal, voter); re-voting updates in place.
type Vote struct {
	ID              uuid.UUID `json:"id"`
	VotingSessionID uuid.UUID `json:"voting_session_id"`
	MealProposalID  uuid.UUID `json:"meal_proposal_id"`
	VoterID         uuid.UUID `json:"voter_id"`
	VoteType        VoteType  `json:"vote_type"`
	VotedAt         time.Time `json:"voted_at"`
	IsActive        bool      `json:"is_active"`
}

// VotingSessionParticipant tracks a member who voted or confirmed, so that
// their portion selection can be deadline-swept after completion.
type VotingSessionParticipant struct {
	ID                 uuid.UUID  `json:"id"`
	VotingSessionID    uuid.UUID  `json:"voting_session_id"`
	ProfileID          uuid.UUID  `json:"profile_id"`
	PortionDeadline    *time.Time `json:"portion_deadline,omitempty"`
	HasSelectedPortion bool       `json:"has_selected_portion"`
	DefaultedToWhole   bool       `json:"defaulted_to_whole"`
	SelectedAt         *time.Time `json:"selected_at,omitempty"`
}

// ConfirmationPhase names which phase a ready-to-advance confirmation
// belongs to.
type ConfirmationPhase string

const (
	ConfirmationPhaseProposal ConfirmationPhase = "PROPOSAL"
	ConfirmationPhaseVoting   ConfirmationPhase = "VOTING"
)

// PhaseConfirmation is a one-time per-user "ready to advance" marker for the
// current phase. Unanimous confirmations trigger an early transition.
type PhaseConfirmation struct {
	ID              uuid.UUID         `json:"id"`
	VotingSessionID uuid.UUID         `json:"voting_session_id"`
	ProfileID       uuid.UUID         `json:"profile_id"`
	Phase           ConfirmationPhase `json:"phase"`
	ConfirmedAt     time.Time         `json:"confirmed_at"`
	IsArchived      bool              `json:"is_archived"`
}
