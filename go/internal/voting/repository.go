package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forkcast/forkcast/go/internal/apperrors"
	"github.com/forkcast/forkcast/go/internal/models"
)

// PostgresRepository implements Repository against a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new voting repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const sessionColumns = `id, group_id, initiator_id, title, description, status,
	proposal_ends_at, voting_ends_at, completed_at, winner_meal_id, total_votes,
	created_at, updated_at`

func (r *PostgresRepository) CreateSession(ctx context.Context, rec CreateSessionRecord) (*models.VotingSession, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO voting_sessions (id, group_id, initiator_id, title, description, status, proposal_ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+sessionColumns,
		rec.ID, rec.GroupID, rec.InitiatorID, rec.Title, rec.Description, rec.Status, rec.ProposalEndsAt)

	session, err := scanSession(row)
	if err != nil {
		if isUniqueViolation(err) {
			// Partial unique index on (group_id) over active statuses.
			return nil, apperrors.Conflict("group %s already has an active voting session", rec.GroupID)
		}
		return nil, fmt.Errorf("failed to create voting session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) GetSession(ctx context.Context, id uuid.UUID) (*models.VotingSession, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM voting_sessions WHERE id = $1`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("voting session %s not found", id)
		}
		return nil, fmt.Errorf("failed to get voting session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) GetActiveSessionForGroup(ctx context.Context, groupID uuid.UUID) (*models.VotingSession, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM voting_sessions
		WHERE group_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
		LIMIT 1`,
		groupID, []models.VotingSessionStatus{models.VotingStatusProposalPhase, models.VotingStatusVotingPhase})

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active session for group: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) ListSessionsInStatusEndedBefore(ctx context.Context, status models.VotingSessionStatus, before time.Time) ([]models.VotingSession, error) {
	deadlineCol := "proposal_ends_at"
	if status == models.VotingStatusVotingPhase {
		deadlineCol = "voting_ends_at"
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+` FROM voting_sessions
		WHERE status = $1 AND `+deadlineCol+` <= $2
		ORDER BY created_at`,
		status, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.VotingSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// TransitionToVotingPhase is a conditional update: it only applies while the
// session is still in the proposal phase. A losing racer gets a phase error.
func (r *PostgresRepository) TransitionToVotingPhase(ctx context.Context, id uuid.UUID, votingEndsAt time.Time) (*models.VotingSession, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE voting_sessions
		SET status = $2, voting_ends_at = $3, updated_at = now()
		WHERE id = $1 AND status = $4
		RETURNING `+sessionColumns,
		id, models.VotingStatusVotingPhase, votingEndsAt, models.VotingStatusProposalPhase)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Phase("voting session %s is not in the proposal phase", id)
		}
		return nil, fmt.Errorf("failed to transition session to voting phase: %w", err)
	}
	return session, nil
}

// CompleteSession is a conditional update: it only applies while the session
// is still in the voting phase.
func (r *PostgresRepository) CompleteSession(ctx context.Context, rec CompleteSessionRecord) (*models.VotingSession, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE voting_sessions
		SET status = $2, completed_at = $3, winner_meal_id = $4, total_votes = $5, updated_at = now()
		WHERE id = $1 AND status = $6
		RETURNING `+sessionColumns,
		rec.SessionID, models.VotingStatusCompleted, rec.CompletedAt, rec.WinnerMealID, rec.TotalVotes,
		models.VotingStatusVotingPhase)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Phase("voting session %s is not in the voting phase", rec.SessionID)
		}
		return nil, fmt.Errorf("failed to complete voting session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM voting_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete voting session: %w", err)
	}
	return nil
}

const proposalColumns = `id, voting_session_id, meal_id, proposed_by_id, vote_count, is_active, created_at`

func (r *PostgresRepository) CreateProposal(ctx context.Context, rec CreateProposalRecord) (*models.MealProposal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO meal_proposals (id, voting_session_id, meal_id, proposed_by_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+proposalColumns,
		rec.ID, rec.VotingSessionID, rec.MealID, rec.ProposedByID)

	proposal, err := scanProposal(row)
	if err != nil {
		if isUniqueViolation(err) {
			// Partial unique index on (voting_session_id, meal_id) over active rows.
			return nil, apperrors.Conflict("meal %s is already proposed in session %s", rec.MealID, rec.VotingSessionID)
		}
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}
	return proposal, nil
}

func (r *PostgresRepository) GetProposal(ctx context.Context, id uuid.UUID) (*models.MealProposal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+proposalColumns+` FROM meal_proposals WHERE id = $1`, id)
	proposal, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("proposal %s not found", id)
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return proposal, nil
}

func (r *PostgresRepository) ListActiveProposals(ctx context.Context, sessionID uuid.UUID) ([]models.MealProposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+proposalColumns+` FROM meal_proposals
		WHERE voting_session_id = $1 AND is_active
		ORDER BY created_at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []models.MealProposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

func (r *PostgresRepository) HasActiveProposalForMeal(ctx context.Context, sessionID, mealID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM meal_proposals
			WHERE voting_session_id = $1 AND meal_id = $2 AND is_active
		)`, sessionID, mealID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate proposal: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) DeactivateProposals(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE meal_proposals SET is_active = false
		WHERE voting_session_id = $1 AND is_active`, sessionID); err != nil {
		return fmt.Errorf("failed to deactivate proposals: %w", err)
	}
	return nil
}

const voteColumns = `id, voting_session_id, meal_proposal_id, voter_id, vote_type, voted_at, is_active`

// UpsertVote relies on the unique index on (meal_proposal_id, voter_id):
// re-voting updates the existing row instead of creating a duplicate.
func (r *PostgresRepository) UpsertVote(ctx context.Context, rec UpsertVoteRecord) (*models.Vote, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO votes (id, voting_session_id, meal_proposal_id, voter_id, vote_type, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (meal_proposal_id, voter_id)
		DO UPDATE SET vote_type = EXCLUDED.vote_type, voted_at = EXCLUDED.voted_at, is_active = true
		RETURNING `+voteColumns,
		rec.ID, rec.VotingSessionID, rec.MealProposalID, rec.VoterID, rec.VoteType, rec.VotedAt)

	var v models.Vote
	if err := row.Scan(&v.ID, &v.VotingSessionID, &v.MealProposalID, &v.VoterID, &v.VoteType, &v.VotedAt, &v.IsActive); err != nil {
		return nil, fmt.Errorf("failed to upsert vote: %w", err)
	}
	return &v, nil
}

// RecomputeProposalVoteCount rewrites the denormalized counter from the
// authoritative set of active up-votes and returns the new value.
func (r *PostgresRepository) RecomputeProposalVoteCount(ctx context.Context, proposalID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		UPDATE meal_proposals
		SET vote_count = (
			SELECT COUNT(DISTINCT voter_id) FROM votes
			WHERE meal_proposal_id = $1 AND is_active AND vote_type = $2
		)
		WHERE id = $1
		RETURNING vote_count`,
		proposalID, models.VoteTypeUp).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute vote count: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) CountActiveVotes(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM votes
		WHERE voting_session_id = $1 AND is_active AND vote_type = $2`,
		sessionID, models.VoteTypeUp).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) DeactivateVotes(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE votes SET is_active = false
		WHERE voting_session_id = $1 AND is_active`, sessionID); err != nil {
		return fmt.Errorf("failed to deactivate votes: %w", err)
	}
	return nil
}

const participantColumns = `id, voting_session_id, profile_id, portion_deadline,
	has_selected_portion, defaulted_to_whole, selected_at`

func (r *PostgresRepository) UpsertParticipant(ctx context.Context, sessionID, profileID uuid.UUID) (*models.VotingSessionParticipant, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO voting_session_participants (id, voting_session_id, profile_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (voting_session_id, profile_id) DO UPDATE SET profile_id = EXCLUDED.profile_id
		RETURNING `+participantColumns,
		uuid.New(), sessionID, profileID)

	participant, err := scanParticipant(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert participant: %w", err)
	}
	return participant, nil
}

func (r *PostgresRepository) SetParticipantPortionDeadlines(ctx context.Context, sessionID uuid.UUID, deadline time.Time) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE voting_session_participants SET portion_deadline = $2
		WHERE voting_session_id = $1`, sessionID, deadline); err != nil {
		return fmt.Errorf("failed to set portion deadlines: %w", err)
	}
	return nil
}

const confirmationColumns = `id, voting_session_id, profile_id, phase, confirmed_at, is_archived`

func (r *PostgresRepository) GetConfirmation(ctx context.Context, sessionID, profileID uuid.UUID, phase models.ConfirmationPhase) (*models.PhaseConfirmation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+confirmationColumns+` FROM phase_confirmations
		WHERE voting_session_id = $1 AND profile_id = $2 AND phase = $3 AND NOT is_archived`,
		sessionID, profileID, phase)

	conf, err := scanConfirmation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return conf, nil
}

func (r *PostgresRepository) CreateConfirmation(ctx context.Context, sessionID, profileID uuid.UUID, phase models.ConfirmationPhase, confirmedAt time.Time) (*models.PhaseConfirmation, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO phase_confirmations (id, voting_session_id, profile_id, phase, confirmed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+confirmationColumns,
		uuid.New(), sessionID, profileID, phase, confirmedAt)

	conf, err := scanConfirmation(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("profile %s already confirmed %s phase for session %s", profileID, phase, sessionID)
		}
		return nil, fmt.Errorf("failed to create confirmation: %w", err)
	}
	return conf, nil
}

func (r *PostgresRepository) CountConfirmations(ctx context.Context, sessionID uuid.UUID, phase models.ConfirmationPhase) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM phase_confirmations
		WHERE voting_session_id = $1 AND phase = $2 AND NOT is_archived`,
		sessionID, phase).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmations: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ArchiveConfirmations(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE phase_confirmations SET is_archived = true
		WHERE voting_session_id = $1 AND NOT is_archived`, sessionID); err != nil {
		return fmt.Errorf("failed to archive confirmations: %w", err)
	}
	return nil
}

// Scan helpers

func scanSession(row pgx.Row) (*models.VotingSession, error) {
	var s models.VotingSession
	err := row.Scan(&s.ID, &s.GroupID, &s.InitiatorID, &s.Title, &s.Description, &s.Status,
		&s.ProposalEndsAt, &s.VotingEndsAt, &s.CompletedAt, &s.WinnerMealID, &s.TotalVotes,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanProposal(row pgx.Row) (*models.MealProposal, error) {
	var p models.MealProposal
	err := row.Scan(&p.ID, &p.VotingSessionID, &p.MealID, &p.ProposedByID, &p.VoteCount, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanParticipant(row pgx.Row) (*models.VotingSessionParticipant, error) {
	var p models.VotingSessionParticipant
	err := row.Scan(&p.ID, &p.VotingSessionID, &p.ProfileID, &p.PortionDeadline,
		&p.HasSelectedPortion, &p.DefaultedToWhole, &p.SelectedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanConfirmation(row pgx.Row) (*models.PhaseConfirmation, error) {
	var c models.PhaseConfirmation
	err := row.Scan(&c.ID, &c.VotingSessionID, &c.ProfileID, &c.Phase, &c.ConfirmedAt, &c.IsArchived)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
