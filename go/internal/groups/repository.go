// Package groups is the membership directory the session managers consult:
// who belongs to a group, and how many active members a quorum needs.
package groups

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

// PostgresRepository implements the managers' GroupDirectory interfaces
// against a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new group directory.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var g models.Group
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at, updated_at
		FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("group %s not found", id)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &g, nil
}

func (r *PostgresRepository) IsActiveMember(ctx context.Context, groupID, profileID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM group_members
			WHERE group_id = $1 AND profile_id = $2 AND is_active
		)`, groupID, profileID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountActiveMembers(ctx context.Context, groupID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM group_members
		WHERE group_id = $1 AND is_active`, groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count group members: %w", err)
	}
	return count, nil
}
