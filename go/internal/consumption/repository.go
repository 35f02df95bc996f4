package consumption

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

// PostgresRepository implements Repository, ParticipantStore and
// SessionLookup against a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new consumption repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const consumptionColumns = `id, profile_id, meal_id, group_id, type, source, session_id,
	portion_fraction, total_kcal, consumed_at`

func (r *PostgresRepository) CreateConsumption(ctx context.Context, rec CreateConsumptionRecord) (*models.MealConsumption, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	consumption, err := insertConsumption(ctx, tx, rec)
	if err != nil {
		if isUniqueViolation(err) {
			// Partial unique index on (session_id) over GROUP records.
			return nil, apperrors.Conflict("session %v already has a group consumption record", rec.SessionID)
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit consumption: %w", err)
	}
	return consumption, nil
}

// ReplaceSessionConsumption deletes the member's prior individual record for
// the session (portions included) and writes the new one in one transaction.
func (r *PostgresRepository) ReplaceSessionConsumption(ctx context.Context, rec CreateConsumptionRecord) (*models.MealConsumption, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM food_portions WHERE consumption_id IN (
			SELECT id FROM meal_consumptions
			WHERE session_id = $1 AND profile_id = $2 AND type = $3
		)`,
		rec.SessionID, rec.ProfileID, models.ConsumptionTypeIndividual); err != nil {
		return nil, fmt.Errorf("failed to delete prior food portions: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM meal_consumptions
		WHERE session_id = $1 AND profile_id = $2 AND type = $3`,
		rec.SessionID, rec.ProfileID, models.ConsumptionTypeIndividual); err != nil {
		return nil, fmt.Errorf("failed to delete prior consumption: %w", err)
	}

	consumption, err := insertConsumption(ctx, tx, rec)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit consumption: %w", err)
	}
	return consumption, nil
}

func insertConsumption(ctx context.Context, tx pgx.Tx, rec CreateConsumptionRecord) (*models.MealConsumption, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO meal_consumptions (id, profile_id, meal_id, group_id, type, source, session_id,
			portion_fraction, total_kcal, consumed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+consumptionColumns,
		rec.ID, rec.ProfileID, rec.MealID, rec.GroupID, rec.Type, rec.Source, rec.SessionID,
		rec.PortionFraction, rec.TotalKcal, rec.ConsumedAt)

	consumption, err := scanConsumption(row)
	if err != nil {
		return nil, err
	}

	for _, p := range rec.Portions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO food_portions (id, consumption_id, food_id, portion_fraction, quantity_consumed)
			VALUES ($1, $2, $3, $4, $5)`,
			p.ID, consumption.ID, p.FoodID, p.PortionFraction, p.QuantityConsumed); err != nil {
			return nil, fmt.Errorf("failed to insert food portion: %w", err)
		}
		consumption.Portions = append(consumption.Portions, models.FoodPortion{
			ID:               p.ID,
			ConsumptionID:    consumption.ID,
			FoodID:           p.FoodID,
			PortionFraction:  p.PortionFraction,
			QuantityConsumed: p.QuantityConsumed,
		})
	}
	return consumption, nil
}

func (r *PostgresRepository) ListProfileConsumptions(ctx context.Context, profileID uuid.UUID, limit int) ([]models.MealConsumption, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+consumptionColumns+` FROM meal_consumptions
		WHERE profile_id = $1 AND type = $2
		ORDER BY consumed_at DESC
		LIMIT $3`,
		profileID, models.ConsumptionTypeIndividual, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list consumptions: %w", err)
	}
	defer rows.Close()

	var consumptions []models.MealConsumption
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		c, err := scanConsumption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consumption: %w", err)
		}
		consumptions = append(consumptions, *c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(consumptions) == 0 {
		return consumptions, nil
	}

	portionRows, err := r.pool.Query(ctx, `
		SELECT id, consumption_id, food_id, portion_fraction, quantity_consumed
		FROM food_portions
		WHERE consumption_id = ANY($1)`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list food portions: %w", err)
	}
	defer portionRows.Close()

	byConsumption := make(map[uuid.UUID][]models.FoodPortion, len(ids))
	for portionRows.Next() {
		var p models.FoodPortion
		if err := portionRows.Scan(&p.ID, &p.ConsumptionID, &p.FoodID, &p.PortionFraction, &p.QuantityConsumed); err != nil {
			return nil, fmt.Errorf("failed to scan food portion: %w", err)
		}
		byConsumption[p.ConsumptionID] = append(byConsumption[p.ConsumptionID], p)
	}
	if err := portionRows.Err(); err != nil {
		return nil, err
	}
	for i := range consumptions {
		consumptions[i].Portions = byConsumption[consumptions[i].ID]
	}
	return consumptions, nil
}

func (r *PostgresRepository) GetParticipant(ctx context.Context, sessionID, profileID uuid.UUID) (*models.VotingSessionParticipant, error) {
	var p models.VotingSessionParticipant
	err := r.pool.QueryRow(ctx, `
		SELECT id, voting_session_id, profile_id, portion_deadline,
			has_selected_portion, defaulted_to_whole, selected_at
		FROM voting_session_participants
		WHERE voting_session_id = $1 AND profile_id = $2`,
		sessionID, profileID).Scan(&p.ID, &p.VotingSessionID, &p.ProfileID, &p.PortionDeadline,
		&p.HasSelectedPortion, &p.DefaultedToWhole, &p.SelectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile %s did not participate in session %s", profileID, sessionID)
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) MarkPortionSelected(ctx context.Context, sessionID, profileID uuid.UUID, selectedAt time.Time) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE voting_session_participants
		SET has_selected_portion = true, defaulted_to_whole = false, selected_at = $3
		WHERE voting_session_id = $1 AND profile_id = $2`,
		sessionID, profileID, selectedAt); err != nil {
		return fmt.Errorf("failed to mark portion selected: %w", err)
	}
	return nil
}

// ClaimForDefaulting is a conditional update: concurrent sweeps race on the
// defaulted_to_whole flag and only one claims the participant.
func (r *PostgresRepository) ClaimForDefaulting(ctx context.Context, participantID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE voting_session_participants
		SET defaulted_to_whole = true
		WHERE id = $1 AND NOT has_selected_portion AND NOT defaulted_to_whole`,
		participantID)
	if err != nil {
		return false, fmt.Errorf("failed to claim participant for defaulting: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) ListExpiredUnselected(ctx context.Context, sessionID *uuid.UUID, before time.Time) ([]models.VotingSessionParticipant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, voting_session_id, profile_id, portion_deadline,
			has_selected_portion, defaulted_to_whole, selected_at
		FROM voting_session_participants
		WHERE portion_deadline IS NOT NULL
		  AND portion_deadline <= $1
		  AND NOT has_selected_portion
		  AND NOT defaulted_to_whole
		  AND ($2::uuid IS NULL OR voting_session_id = $2)
		ORDER BY portion_deadline`,
		before, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired participants: %w", err)
	}
	defer rows.Close()

	var participants []models.VotingSessionParticipant
	for rows.Next() {
		var p models.VotingSessionParticipant
		if err := rows.Scan(&p.ID, &p.VotingSessionID, &p.ProfileID, &p.PortionDeadline,
			&p.HasSelectedPortion, &p.DefaultedToWhole, &p.SelectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *PostgresRepository) WinningMeal(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	var (
		winnerMealID *uuid.UUID
		groupID      uuid.UUID
	)
	err := r.pool.QueryRow(ctx, `
		SELECT winner_meal_id, group_id FROM voting_sessions
		WHERE id = $1 AND status = $2`,
		sessionID, models.VotingStatusCompleted).Scan(&winnerMealID, &groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, uuid.Nil, apperrors.NotFound("completed voting session %s not found", sessionID)
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to look up session outcome: %w", err)
	}
	if winnerMealID == nil {
		return uuid.Nil, uuid.Nil, apperrors.Phase("session %s completed without a winning meal", sessionID)
	}
	return *winnerMealID, groupID, nil
}

// Scan helper

func scanConsumption(row pgx.Row) (*models.MealConsumption, error) {
	var c models.MealConsumption
	err := row.Scan(&c.ID, &c.ProfileID, &c.MealID, &c.GroupID, &c.Type, &c.Source, &c.SessionID,
		&c.PortionFraction, &c.TotalKcal, &c.ConsumedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
