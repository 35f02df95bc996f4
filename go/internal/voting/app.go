package voting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/forkcast/forkcast/go/internal/achievements"
	"github.com/forkcast/forkcast/go/internal/apperrors"
	"github.com/forkcast/forkcast/go/internal/events"
	"github.com/forkcast/forkcast/go/internal/models"
)

// Repository defines what the voting manager needs from storage.
//
// TransitionToVotingPhase and CompleteSession are conditional updates: they
// apply only while the session is still in the expected phase and return a
// phase error otherwise, so a user action and the scheduler can race safely.
type Repository interface {
	CreateSession(ctx context.Context, rec CreateSessionRecord) (*models.VotingSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.VotingSession, error)
	GetActiveSessionForGroup(ctx context.Context, groupID uuid.UUID) (*models.VotingSession, error)
	ListSessionsInStatusEndedBefore(ctx context.Context, status models.VotingSessionStatus, before time.Time) ([]models.VotingSession, error)
	TransitionToVotingPhase(ctx context.Context, id uuid.UUID, votingEndsAt time.Time) (*models.VotingSession, error)
	CompleteSession(ctx context.Context, rec CompleteSessionRecord) (*models.VotingSession, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	CreateProposal(ctx context.Context, rec CreateProposalRecord) (*models.MealProposal, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*models.MealProposal, error)
	ListActiveProposals(ctx context.Context, sessionID uuid.UUID) ([]models.MealProposal, error)
	HasActiveProposalForMeal(ctx context.Context, sessionID, mealID uuid.UUID) (bool, error)
	DeactivateProposals(ctx context.Context, sessionID uuid.UUID) error

	UpsertVote(ctx context.Context, rec UpsertVoteRecord) (*models.Vote, error)
	RecomputeProposalVoteCount(ctx context.Context, proposalID uuid.UUID) (int, error)
	CountActiveVotes(ctx context.Context, sessionID uuid.UUID) (int, error)
	DeactivateVotes(ctx context.Context, sessionID uuid.UUID) error

	UpsertParticipant(ctx context.Context, sessionID, profileID uuid.UUID) (*models.VotingSessionParticipant, error)
	SetParticipantPortionDeadlines(ctx context.Context, sessionID uuid.UUID, deadline time.Time) error

	GetConfirmation(ctx context.Context, sessionID, profileID uuid.UUID, phase models.ConfirmationPhase) (*models.PhaseConfirmation, error)
	CreateConfirmation(ctx context.Context, sessionID, profileID uuid.UUID, phase models.ConfirmationPhase, confirmedAt time.Time) (*models.PhaseConfirmation, error)
	CountConfirmations(ctx context.Context, sessionID uuid.UUID, phase models.ConfirmationPhase) (int, error)
	ArchiveConfirmations(ctx context.Context, sessionID uuid.UUID) error
}

// GroupDirectory defines what the voting manager needs from group storage.
type GroupDirectory interface {
	IsActiveMember(ctx context.Context, groupID, profileID uuid.UUID) (bool, error)
	CountActiveMembers(ctx context.Context, groupID uuid.UUID) (int, error)
}

// MealCatalog defines what the voting manager needs from meal storage.
type MealCatalog interface {
	MealExists(ctx context.Context, mealID uuid.UUID) (bool, error)
}

// EventSink receives phase-change and vote events for broadcast. It is
// fire-and-forget from the manager's point of view: failures are logged and
// never unwind a committed mutation.
type EventSink interface {
	Append(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error
}

// Linker defines what the voting manager needs from the consumption linker
// once a session completes.
type Linker interface {
	LinkSessionConsumption(ctx context.Context, sessionID, groupID, profileID, mealID uuid.UUID, source models.ConsumptionSource) error
}

// App owns the proposal -> voting -> completed lifecycle for group meal votes.
type App struct {
	repo     Repository
	groups   GroupDirectory
	meals    MealCatalog
	sink     EventSink
	notifier achievements.Notifier
	linker   Linker
	clock    clockwork.Clock
	cfg      Config
}

// NewApp creates a new voting App.
func NewApp(repo Repository, groups GroupDirectory, meals MealCatalog, sink EventSink, notifier achievements.Notifier, linker Linker, clock clockwork.Clock, cfg Config) *App {
	return &App{
		repo:     repo,
		groups:   groups,
		meals:    meals,
		sink:     sink,
		notifier: notifier,
		linker:   linker,
		clock:    clock,
		cfg:      cfg,
	}
}

// StartSession starts a new voting session for a group in the proposal phase.
// Stale sessions that expired with no activity are reclaimed first, so a
// group is never permanently blocked by an abandoned session.
func (a *App) StartSession(ctx context.Context, req StartSessionRequest) (*models.VotingSession, error) {
	if req.InitiatorID == uuid.Nil {
		return nil, apperrors.Validation("initiator_id is required")
	}
	if req.GroupID == uuid.Nil {
		return nil, apperrors.Validation("group_id is required")
	}

	member, err := a.groups.IsActiveMember(ctx, req.GroupID, req.InitiatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if !member {
		return nil, apperrors.Permission("profile %s is not a member of group %s", req.InitiatorID, req.GroupID)
	}

	if err := a.reclaimIdleExpiredSessions(ctx, req.GroupID); err != nil {
		return nil, fmt.Errorf("failed to reclaim expired sessions: %w", err)
	}

	if active, err := a.repo.GetActiveSessionForGroup(ctx, req.GroupID); err != nil {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	} else if active != nil {
		return nil, apperrors.Conflict("group %s already has an active voting session %s", req.GroupID, active.ID)
	}

	title := req.Title
	if title == "" {
		title = "What should we eat?"
	}

	now := a.clock.Now()
	session, err := a.repo.CreateSession(ctx, CreateSessionRecord{
		ID:             uuid.New(),
		GroupID:        req.GroupID,
		InitiatorID:    req.InitiatorID,
		Title:          title,
		Description:    req.Description,
		Status:         models.VotingStatusProposalPhase,
		ProposalEndsAt: now.Add(a.cfg.ProposalPhaseDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create voting session: %w", err)
	}

	a.emit(ctx, session.ID, events.TypeVotingSessionStarted, events.VotingSessionStartedPayload{
		SessionID:      session.ID.String(),
		GroupID:        session.GroupID.String(),
		InitiatorID:    session.InitiatorID.String(),
		Title:          session.Title,
		ProposalEndsAt: *session.ProposalEndsAt,
	})

	log.Info().
		Str("session_id", session.ID.String()).
		Str("group_id", session.GroupID.String()).
		Time("proposal_ends_at", *session.ProposalEndsAt).
		Msg("voting session started")
	return session, nil
}

// ProposeMeal adds a candidate meal during the proposal phase.
func (a *App) ProposeMeal(ctx context.Context, req ProposeMealRequest) (*models.MealProposal, error) {
	if req.MealID == uuid.Nil {
		return nil, apperrors.Validation("meal_id is required")
	}
	if req.ProposedByID == uuid.Nil {
		return nil, apperrors.Validation("proposed_by_id is required")
	}

	session, err := a.repo.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.VotingStatusProposalPhase {
		return nil, apperrors.Phase("cannot propose a meal while session is %s", session.Status)
	}
	if session.ProposalEndsAt != nil && !a.clock.Now().Before(*session.ProposalEndsAt) {
		return nil, apperrors.Deadline("proposal phase ended at %s", session.ProposalEndsAt.Format(time.RFC3339))
	}

	member, err := a.groups.IsActiveMember(ctx, session.GroupID, req.ProposedByID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if !member {
		return nil, apperrors.Permission("profile %s is not a member of group %s", req.ProposedByID, session.GroupID)
	}

	exists, err := a.meals.MealExists(ctx, req.MealID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up meal: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("meal %s not found", req.MealID)
	}

	dup, err := a.repo.HasActiveProposalForMeal(ctx, req.SessionID, req.MealID)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate proposal: %w", err)
	}
	if dup {
		return nil, apperrors.Conflict("meal %s is already proposed in session %s", req.MealID, req.SessionID)
	}

	proposal, err := a.repo.CreateProposal(ctx, CreateProposalRecord{
		ID:              uuid.New(),
		VotingSessionID: req.SessionID,
		MealID:          req.MealID,
		ProposedByID:    req.ProposedByID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	a.notify(ctx, req.ProposedByID, achievements.EventMealCreated)
	a.emit(ctx, session.ID, events.TypeMealProposed, events.MealProposedPayload{
		SessionID:    session.ID.String(),
		ProposalID:   proposal.ID.String(),
		MealID:       proposal.MealID.String(),
		ProposedByID: proposal.ProposedByID.String(),
		ProposedAt:   proposal.CreatedAt,
	})

	return proposal, nil
}

// StartVotingPhase moves a session from the proposal phase into the voting
// phase. Requires at least one active proposal. The underlying update is
// conditional, so a concurrent transition attempt fails with a phase error
// instead of double-applying.
func (a *App) StartVotingPhase(ctx context.Context, sessionID uuid.UUID) (*models.VotingSession, error) {
	proposals, err := a.repo.ListActiveProposals(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	if len(proposals) == 0 {
		return nil, apperrors.Phase("cannot start voting with no proposals in session %s", sessionID)
	}

	votingEndsAt := a.clock.Now().Add(a.cfg.VotingPhaseDuration)
	session, err := a.repo.TransitionToVotingPhase(ctx, sessionID, votingEndsAt)
	if err != nil {
		return nil, err
	}

	a.emit(ctx, session.ID, events.TypeVotingPhaseStarted, events.VotingPhaseStartedPayload{
		SessionID:     session.ID.String(),
		GroupID:       session.GroupID.String(),
		ProposalCount: len(proposals),
		VotingEndsAt:  votingEndsAt,
	})

	log.Info().
		Str("session_id", session.ID.String()).
		Int("proposals", len(proposals)).
		Time("voting_ends_at", votingEndsAt).
		Msg("voting phase started")
	return session, nil
}

// CastVote records or updates a member's vote on a proposal. Re-voting is
// idempotent: the existing row is updated in place and the proposal's vote
// count is recomputed from the authoritative set of active votes.
func (a *App) CastVote(ctx context.Context, req CastVoteRequest) (*models.Vote, error) {
	if req.VoterID == uuid.Nil {
		return nil, apperrors.Validation("voter_id is required")
	}
	if req.VoteType == "" {
		req.VoteType = models.VoteTypeUp
	}
	if req.VoteType != models.VoteTypeUp {
		return nil, apperrors.Validation("unsupported vote type %q", req.VoteType)
	}

	session, err := a.repo.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.VotingStatusVotingPhase {
		return nil, apperrors.Phase("cannot vote while session is %s", session.Status)
	}
	if session.VotingEndsAt != nil && !a.clock.Now().Before(*session.VotingEndsAt) {
		return nil, apperrors.Deadline("voting phase ended at %s", session.VotingEndsAt.Format(time.RFC3339))
	}

	member, err := a.groups.IsActiveMember(ctx, session.GroupID, req.VoterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if !member {
		return nil, apperrors.Permission("profile %s is not a member of group %s", req.VoterID, session.GroupID)
	}

	proposal, err := a.repo.GetProposal(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}
	if proposal.VotingSessionID != req.SessionID || !proposal.IsActive {
		return nil, apperrors.NotFound("proposal %s is not active in session %s", req.ProposalID, req.SessionID)
	}

	vote, err := a.repo.UpsertVote(ctx, UpsertVoteRecord{
		ID:              uuid.New(),
		VotingSessionID: req.SessionID,
		MealProposalID:  req.ProposalID,
		VoterID:         req.VoterID,
		VoteType:        req.VoteType,
		VotedAt:         a.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert vote: %w", err)
	}

	count, err := a.repo.RecomputeProposalVoteCount(ctx, req.ProposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute vote count: %w", err)
	}

	if _, err := a.repo.UpsertParticipant(ctx, req.SessionID, req.VoterID); err != nil {
		return nil, fmt.Errorf("failed to track participant: %w", err)
	}

	a.notify(ctx, req.VoterID, achievements.EventVotingParticipated)
	a.emit(ctx, session.ID, events.TypeVoteCast, events.VoteCastPayload{
		SessionID:  session.ID.String(),
		ProposalID: req.ProposalID.String(),
		VoterID:    req.VoterID.String(),
		VoteCount:  count,
		VotedAt:    vote.VotedAt,
	})

	return vote, nil
}

// ConfirmReadyForVoting records a member's "ready to advance" signal for the
// proposal phase. When every active group member has confirmed, the voting
// phase starts early.
func (a *App) ConfirmReadyForVoting(ctx context.Context, sessionID, profileID uuid.UUID) (*models.PhaseConfirmation, error) {
	return a.confirmPhase(ctx, sessionID, profileID, models.ConfirmationPhaseProposal, models.VotingStatusProposalPhase, func(ctx context.Context) error {
		_, err := a.StartVotingPhase(ctx, sessionID)
		return err
	})
}

// ConfirmVotes records a member's "done voting" signal for the voting phase.
// When every active group member has confirmed, the session completes early.
func (a *App) ConfirmVotes(ctx context.Context, sessionID, profileID uuid.UUID) (*models.PhaseConfirmation, error) {
	return a.confirmPhase(ctx, sessionID, profileID, models.ConfirmationPhaseVoting, models.VotingStatusVotingPhase, func(ctx context.Context) error {
		_, err := a.CompleteSession(ctx, sessionID)
		return err
	})
}

func (a *App) confirmPhase(ctx context.Context, sessionID, profileID uuid.UUID, phase models.ConfirmationPhase, expected models.VotingSessionStatus, advance func(context.Context) error) (*models.PhaseConfirmation, error) {
	if profileID == uuid.Nil {
		return nil, apperrors.Validation("profile_id is required")
	}

	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != expected {
		return nil, apperrors.Phase("cannot confirm %s phase while session is %s", phase, session.Status)
	}

	member, err := a.groups.IsActiveMember(ctx, session.GroupID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if !member {
		return nil, apperrors.Permission("profile %s is not a member of group %s", profileID, session.GroupID)
	}

	// Idempotent: a repeat confirmation returns the existing record and has
	// no side effects.
	if existing, err := a.repo.GetConfirmation(ctx, sessionID, profileID, phase); err != nil {
		return nil, fmt.Errorf("failed to check confirmation: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	conf, err := a.repo.CreateConfirmation(ctx, sessionID, profileID, phase, a.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create confirmation: %w", err)
	}

	// Confirming makes the member a tracked participant, so completion gives
	// them a portion deadline even if they never cast a vote.
	if _, err := a.repo.UpsertParticipant(ctx, sessionID, profileID); err != nil {
		return nil, fmt.Errorf("failed to track participant: %w", err)
	}

	confirmed, err := a.repo.CountConfirmations(ctx, sessionID, phase)
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmations: %w", err)
	}
	total, err := a.groups.CountActiveMembers(ctx, session.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to count group members: %w", err)
	}

	if confirmed >= total {
		// Quorum reached. The deadline sweep still covers this session if the
		// early transition loses a race or has nothing to advance.
		if err := advance(ctx); err != nil {
			log.Warn().
				Err(err).
				Str("session_id", sessionID.String()).
				Str("phase", string(phase)).
				Msg("quorum transition failed")
		}
	}

	return conf, nil
}

// CompleteSession finishes a voting session: decides the winning proposal,
// persists the result, schedules portion deadlines and links the group-level
// consumption record. Safe to race against the scheduler: the losing caller
// gets a phase error and no side effects run twice.
func (a *App) CompleteSession(ctx context.Context, sessionID uuid.UUID) (*models.VotingSession, error) {
	proposals, err := a.repo.ListActiveProposals(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	if len(proposals) == 0 {
		return nil, apperrors.Phase("cannot complete session %s with no active proposals", sessionID)
	}

	winner := pickWinner(proposals)

	totalVotes, err := a.repo.CountActiveVotes(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	completedAt := a.clock.Now()
	session, err := a.repo.CompleteSession(ctx, CompleteSessionRecord{
		SessionID:    sessionID,
		CompletedAt:  completedAt,
		WinnerMealID: winner.MealID,
		TotalVotes:   totalVotes,
	})
	if err != nil {
		return nil, err
	}

	// Post-completion side effects. The status flip above is the commit
	// point; failures past it are logged, not propagated, and never roll the
	// completion back.
	deadline := completedAt.Add(a.cfg.PortionWindow)
	if err := a.repo.SetParticipantPortionDeadlines(ctx, sessionID, deadline); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to set portion deadlines")
	}

	if err := a.linker.LinkSessionConsumption(ctx, sessionID, session.GroupID, session.InitiatorID, winner.MealID, models.ConsumptionSourceVoting); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to link group consumption")
	}

	a.notify(ctx, winner.ProposedByID, achievements.EventVotingWon)
	a.emit(ctx, session.ID, events.TypeVotingSessionCompleted, events.VotingSessionCompletedPayload{
		SessionID:    session.ID.String(),
		GroupID:      session.GroupID.String(),
		WinnerMealID: winner.MealID.String(),
		TotalVotes:   totalVotes,
		CompletedAt:  completedAt,
	})

	log.Info().
		Str("session_id", session.ID.String()).
		Str("winner_meal_id", winner.MealID.String()).
		Int("total_votes", totalVotes).
		Msg("voting session completed")
	return session, nil
}

// CheckAndTransitionSessions advances every session whose phase deadline has
// elapsed. Used by the scheduler; also safe to call on demand. Each session
// is handled in isolation so one failure never stalls the sweep.
func (a *App) CheckAndTransitionSessions(ctx context.Context) error {
	now := a.clock.Now()

	expiredProposal, err := a.repo.ListSessionsInStatusEndedBefore(ctx, models.VotingStatusProposalPhase, now)
	if err != nil {
		return fmt.Errorf("failed to list expired proposal-phase sessions: %w", err)
	}
	for _, session := range expiredProposal {
		if _, err := a.StartVotingPhase(ctx, session.ID); err != nil {
			if apperrors.IsKind(err, apperrors.KindPhase) {
				// Zero proposals (or a lost race). A session that expired with
				// no activity at all is reclaimed rather than left to stall.
				a.reclaimIfIdle(ctx, session)
				continue
			}
			log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to auto-start voting phase")
		}
	}

	expiredVoting, err := a.repo.ListSessionsInStatusEndedBefore(ctx, models.VotingStatusVotingPhase, now)
	if err != nil {
		return fmt.Errorf("failed to list expired voting-phase sessions: %w", err)
	}
	for _, session := range expiredVoting {
		if _, err := a.CompleteSession(ctx, session.ID); err != nil {
			if apperrors.IsKind(err, apperrors.KindPhase) {
				continue
			}
			log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to auto-complete voting session")
		}
	}

	return nil
}

// CleanupSession archives confirmations and deactivates votes and proposals
// for a completed session. Housekeeping only; the session row itself stays.
func (a *App) CleanupSession(ctx context.Context, sessionID uuid.UUID) error {
	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.VotingStatusCompleted {
		return apperrors.Phase("cannot clean up session in status %s", session.Status)
	}

	if err := a.repo.ArchiveConfirmations(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to archive confirmations: %w", err)
	}
	if err := a.repo.DeactivateVotes(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to deactivate votes: %w", err)
	}
	if err := a.repo.DeactivateProposals(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to deactivate proposals: %w", err)
	}
	return nil
}

// reclaimIdleExpiredSessions deletes the group's expired proposal-phase
// sessions that accumulated no proposals and no votes.
func (a *App) reclaimIdleExpiredSessions(ctx context.Context, groupID uuid.UUID) error {
	active, err := a.repo.GetActiveSessionForGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if active == nil || active.Status != models.VotingStatusProposalPhase {
		return nil
	}
	if active.ProposalEndsAt == nil || a.clock.Now().Before(*active.ProposalEndsAt) {
		return nil
	}
	a.reclaimIfIdle(ctx, *active)
	return nil
}

// reclaimIfIdle deletes an expired proposal-phase session that has no active
// proposals and no active votes, and emits an expiry event. Best effort.
func (a *App) reclaimIfIdle(ctx context.Context, session models.VotingSession) {
	proposals, err := a.repo.ListActiveProposals(ctx, session.ID)
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to list proposals for reclamation")
		return
	}
	votes, err := a.repo.CountActiveVotes(ctx, session.ID)
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to count votes for reclamation")
		return
	}
	if len(proposals) > 0 || votes > 0 {
		return
	}

	if err := a.repo.DeleteSession(ctx, session.ID); err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to delete idle expired session")
		return
	}

	a.emit(ctx, session.ID, events.TypeVotingSessionExpired, events.VotingSessionExpiredPayload{
		SessionID: session.ID.String(),
		GroupID:   session.GroupID.String(),
		ExpiredAt: a.clock.Now(),
	})
	log.Info().Str("session_id", session.ID.String()).Msg("reclaimed idle expired voting session")
}

// pickWinner returns the proposal with the highest vote count. Ties break
// deterministically: earliest created proposal first, then lowest ID.
func pickWinner(proposals []models.MealProposal) models.MealProposal {
	winner := proposals[0]
	for _, p := range proposals[1:] {
		if p.VoteCount > winner.VoteCount {
			winner = p
			continue
		}
		if p.VoteCount == winner.VoteCount {
			if p.CreatedAt.Before(winner.CreatedAt) ||
				(p.CreatedAt.Equal(winner.CreatedAt) && p.ID.String() < winner.ID.String()) {
				winner = p
			}
		}
	}
	return winner
}

func (a *App) emit(ctx context.Context, sessionID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	if err := a.sink.Append(ctx, sessionID, eventType, data); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Str("session_id", sessionID.String()).Msg("failed to append event")
	}
}

func (a *App) notify(ctx context.Context, profileID uuid.UUID, kind achievements.EventKind) {
	notifyCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := a.notifier.Notify(notifyCtx, profileID, kind); err != nil {
		log.Warn().Err(err).Str("profile_id", profileID.String()).Str("event_kind", string(kind)).Msg("achievement notification failed")
	}
}
