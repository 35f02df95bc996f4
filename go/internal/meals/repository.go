// Package meals is the meal catalog the session managers and the consumption
// linker read: existence checks for proposals, and the food breakdown that
// drives the kcal math.
package meals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forkcast/forkcast/go/internal/apperrors"
	"github.com/forkcast/forkcast/go/internal/models"
)

// PostgresRepository implements the managers' MealCatalog interfaces against
// a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new meal catalog.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) MealExists(ctx context.Context, mealID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM meals WHERE id = $1)`, mealID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check meal existence: %w", err)
	}
	return exists, nil
}

// GetMealWithFoods loads a meal, its food quantities and the per-unit
// nutrition data for each food, keyed by food ID.
func (r *PostgresRepository) GetMealWithFoods(ctx context.Context, mealID uuid.UUID) (*models.Meal, map[uuid.UUID]models.Food, error) {
	var m models.Meal
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_by_id, group_id, created_at, updated_at
		FROM meals WHERE id = $1`, mealID).
		Scan(&m.ID, &m.Name, &m.CreatedByID, &m.GroupID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NotFound("meal %s not found", mealID)
		}
		return nil, nil, fmt.Errorf("failed to get meal: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT mf.id, mf.meal_id, mf.food_id, mf.quantity,
			f.id, f.name, f.unit, f.kcal_per_unit, f.created_at
		FROM meal_foods mf
		JOIN foods f ON f.id = mf.food_id
		WHERE mf.meal_id = $1
		ORDER BY mf.id`, mealID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list meal foods: %w", err)
	}
	defer rows.Close()

	foods := make(map[uuid.UUID]models.Food)
	for rows.Next() {
		var (
			mf models.MealFood
			f  models.Food
		)
		if err := rows.Scan(&mf.ID, &mf.MealID, &mf.FoodID, &mf.Quantity,
			&f.ID, &f.Name, &f.Unit, &f.KcalPerUnit, &f.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan meal food: %w", err)
		}
		m.Foods = append(m.Foods, mf)
		foods[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return &m, foods, nil
}
