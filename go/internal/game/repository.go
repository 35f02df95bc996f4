package game

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

// NewPostgresRepository creates a new game repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// duration_seconds keeps the play clock as an integer column; Duration on the
// model is converted at the scan boundary.
const sessionColumns = `id, group_id, host_id, game_type, duration_seconds, min_players, status,
	start_time, end_time, winner_id, winning_meal_id, created_at, updated_at`

func (r *PostgresRepository) CreateSession(ctx context.Context, rec CreateSessionRecord) (*models.GameSession, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO game_sessions (id, group_id, host_id, game_type, duration_seconds, min_players, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+sessionColumns,
		rec.ID, rec.GroupID, rec.HostID, rec.GameType, int64(rec.Duration/time.Second), rec.MinPlayers, rec.Status)

	session, err := scanSession(row)
	if err != nil {
		if isUniqueViolation(err) {
			// Partial unique index on (group_id) over active statuses.
			return nil, apperrors.Conflict("group %s already has an active game session", rec.GroupID)
		}
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("game session %s not found", id)
		}
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) GetActiveSessionForGroup(ctx context.Context, groupID uuid.UUID) (*models.GameSession, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM game_sessions
		WHERE group_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
		LIMIT 1`,
		groupID, models.ActiveGameStatuses)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active game session for group: %w", err)
	}
	return session, nil
}

// Transition is a conditional update: it applies only while the session is
// still in one of the expected statuses. A losing racer gets a phase error.
func (r *PostgresRepository) Transition(ctx context.Context, rec TransitionRecord) (*models.GameSession, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE game_sessions
		SET status = $2,
			start_time = COALESCE($3, start_time),
			end_time = COALESCE($4, end_time),
			updated_at = now()
		WHERE id = $1 AND status = ANY($5)
		RETURNING `+sessionColumns,
		rec.SessionID, rec.To, rec.StartTime, rec.EndTime, rec.From)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Phase("game session %s is not in an expected status for transition to %s", rec.SessionID, rec.To)
		}
		return nil, fmt.Errorf("failed to transition game session: %w", err)
	}
	return session, nil
}

// Complete is a conditional update to the completed status that records the
// winner in the same statement.
func (r *PostgresRepository) Complete(ctx context.Context, rec CompleteRecord) (*models.GameSession, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE game_sessions
		SET status = $2,
			winner_id = $3,
			winning_meal_id = $4,
			end_time = COALESCE($5, end_time),
			updated_at = now()
		WHERE id = $1 AND status = ANY($6)
		RETURNING `+sessionColumns,
		rec.SessionID, models.GameStatusCompleted, rec.WinnerID, rec.WinningMealID, rec.EndTime, rec.From)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Phase("game session %s is not in an expected status for completion", rec.SessionID)
		}
		return nil, fmt.Errorf("failed to complete game session: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) ListPlayingSessionsDue(ctx context.Context, now time.Time) ([]models.GameSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+` FROM game_sessions
		WHERE status = $1
		  AND start_time IS NOT NULL
		  AND start_time + make_interval(secs => duration_seconds) <= $2
		ORDER BY created_at`,
		models.GameStatusPlaying, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due playing sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *PostgresRepository) ListIdleSessions(ctx context.Context, statuses []models.GameSessionStatus, updatedBefore time.Time) ([]models.GameSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+` FROM game_sessions
		WHERE status = ANY($1) AND updated_at <= $2
		ORDER BY created_at`,
		statuses, updatedBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list idle sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

const participantColumns = `id, game_session_id, profile_id, meal_id, click_count,
	is_ready, has_submitted, submitted_at, joined_at`

// UpsertParticipant relies on the unique index on (game_session_id, profile_id):
// rejoining updates the proposed meal instead of creating a duplicate.
func (r *PostgresRepository) UpsertParticipant(ctx context.Context, rec UpsertParticipantRecord) (*models.GameParticipant, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO game_participants (id, game_session_id, profile_id, meal_id, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_session_id, profile_id)
		DO UPDATE SET meal_id = COALESCE(EXCLUDED.meal_id, game_participants.meal_id)
		RETURNING `+participantColumns,
		rec.ID, rec.GameSessionID, rec.ProfileID, rec.MealID, rec.JoinedAt)

	participant, err := scanParticipant(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert participant: %w", err)
	}
	return participant, nil
}

func (r *PostgresRepository) GetParticipant(ctx context.Context, sessionID, profileID uuid.UUID) (*models.GameParticipant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+participantColumns+` FROM game_participants
		WHERE game_session_id = $1 AND profile_id = $2`,
		sessionID, profileID)

	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile %s has not joined session %s", profileID, sessionID)
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return participant, nil
}

func (r *PostgresRepository) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.GameParticipant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+participantColumns+` FROM game_participants
		WHERE game_session_id = $1
		ORDER BY joined_at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.GameParticipant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (r *PostgresRepository) SetParticipantReady(ctx context.Context, sessionID, profileID uuid.UUID, isReady bool) (*models.GameParticipant, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE game_participants SET is_ready = $3
		WHERE game_session_id = $1 AND profile_id = $2
		RETURNING `+participantColumns,
		sessionID, profileID, isReady)

	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile %s has not joined session %s", profileID, sessionID)
		}
		return nil, fmt.Errorf("failed to set participant readiness: %w", err)
	}
	return participant, nil
}

// RecordClickSubmission is idempotent per participant: resubmitting overwrites
// the previous count and timestamp.
func (r *PostgresRepository) RecordClickSubmission(ctx context.Context, sessionID, profileID uuid.UUID, clickCount int, submittedAt time.Time) (*models.GameParticipant, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE game_participants
		SET click_count = $3, has_submitted = true, submitted_at = $4
		WHERE game_session_id = $1 AND profile_id = $2
		RETURNING `+participantColumns,
		sessionID, profileID, clickCount, submittedAt)

	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile %s has not joined session %s", profileID, sessionID)
		}
		return nil, fmt.Errorf("failed to record click submission: %w", err)
	}
	return participant, nil
}

// Scan helpers

func scanSession(row pgx.Row) (*models.GameSession, error) {
	var (
		s           models.GameSession
		durationSec int64
	)
	err := row.Scan(&s.ID, &s.GroupID, &s.HostID, &s.GameType, &durationSec, &s.MinPlayers, &s.Status,
		&s.StartTime, &s.EndTime, &s.WinnerID, &s.WinningMealID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Duration = time.Duration(durationSec) * time.Second
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]models.GameSession, error) {
	var sessions []models.GameSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func scanParticipant(row pgx.Row) (*models.GameParticipant, error) {
	var p models.GameParticipant
	err := row.Scan(&p.ID, &p.GameSessionID, &p.ProfileID, &p.MealID, &p.ClickCount,
		&p.IsReady, &p.HasSubmitted, &p.SubmittedAt, &p.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
