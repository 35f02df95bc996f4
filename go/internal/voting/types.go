package voting

import (
	"time"

	"github.com/google/uuid"

	"github.com/forkcast/forkcast/go/internal/models"
)

// Config holds the phase timing knobs for voting sessions.
type Config struct {
	ProposalPhaseDuration time.Duration
	VotingPhaseDuration   time.Duration
	PortionWindow         time.Duration
}

// DefaultConfig returns the production phase durations.
func DefaultConfig() Config {
	return Config{
		ProposalPhaseDuration: 5 * time.Minute,
		VotingPhaseDuration:   10 * time.Minute,
		PortionWindow:         15 * time.Minute,
	}
}

// StartSessionRequest creates a new voting session for a group.
type StartSessionRequest struct {
	InitiatorID uuid.UUID
	GroupID     uuid.UUID
	Title       string
	Description string
}

// ProposeMealRequest adds a candidate meal to a session's proposal phase.
type ProposeMealRequest struct {
	SessionID    uuid.UUID
	MealID       uuid.UUID
	ProposedByID uuid.UUID
}

// CastVoteRequest records or updates a member's vote on a proposal.
type CastVoteRequest struct {
	SessionID  uuid.UUID
	ProposalID uuid.UUID
	VoterID    uuid.UUID
	VoteType   models.VoteType
}

// CreateSessionRecord is the repository-level create request.
type CreateSessionRecord struct {
	ID             uuid.UUID
	GroupID        uuid.UUID
	InitiatorID    uuid.UUID
	Title          string
	Description    string
	Status         models.VotingSessionStatus
	ProposalEndsAt time.Time
}

// CreateProposalRecord is the repository-level proposal create request.
type CreateProposalRecord struct {
	ID              uuid.UUID
	VotingSessionID uuid.UUID
	MealID          uuid.UUID
	ProposedByID    uuid.UUID
}

// UpsertVoteRecord is the repository-level vote upsert request. The unique
// key is (meal_proposal_id, voter_id); a second upsert updates in place.
type UpsertVoteRecord struct {
	ID              uuid.UUID
	VotingSessionID uuid.UUID
	MealProposalID  uuid.UUID
	VoterID         uuid.UUID
	VoteType        models.VoteType
	VotedAt         time.Time
}

// CompleteSessionRecord is the repository-level conditional completion. The
// update applies only while the session is still in the voting phase.
type CompleteSessionRecord struct {
	SessionID    uuid.UUID
	CompletedAt  time.Time
	WinnerMealID uuid.UUID
	TotalVotes   int
}
