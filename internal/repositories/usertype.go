package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
)

// PlanRecord is one row of a user's plan tier history.
type PlanRecord struct {
	ID        string          `json:"id"`
	Plan      models.PlanTier `json:"plan"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// PlanRepository writes plan tier history.
//
// At most one row per user is active; older rows are kept with is_active = 0.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new [PlanRepository] with the given database connection
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Assign makes tier the user's active plan, deactivating the previous one.
func (r *PlanRepository) Assign(ctx context.Context, userID string, tier models.PlanTier) error {
	if _, err := models.ParsePlanTier(string(tier)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE user_plans SET is_active = 0 WHERE user_id = ? AND is_active = 1", userID); err != nil {
		return fmt.Errorf("failed to deactivate plan: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO user_plans (id, user_id, plan, is_active, created_at) VALUES (?, ?, ?, 1, ?)",
		shared.GenerateID(), userID, string(tier), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	return tx.Commit()
}

// History lists every plan row for the user, newest first.
func (r *PlanRepository) History(ctx context.Context, userID string) ([]PlanRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, plan, is_active, created_at FROM user_plans WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var history []PlanRecord
	for rows.Next() {
		var (
			rec  PlanRecord
			plan string
		)
		if err := rows.Scan(&rec.ID, &plan, &rec.Active, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		rec.Plan = models.PlanTier(plan)
		history = append(history, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return history, nil
}

// RoleRepository writes role grants.
type RoleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new [RoleRepository] with the given database connection
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Grant activates role for the user. Granting a role the user already holds is a no-op.
func (r *RoleRepository) Grant(ctx context.Context, userID string, role models.Role) error {
	if _, err := models.ParseRole(string(role)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_roles (id, user_id, role, is_active, created_at) VALUES (?, ?, ?, 1, ?)",
		shared.GenerateID(), userID, string(role), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

// Revoke deactivates role for the user.
func (r *RoleRepository) Revoke(ctx context.Context, userID string, role models.Role) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE user_roles SET is_active = 0 WHERE user_id = ? AND role = ? AND is_active = 1",
		userID, string(role),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}

	return requireAffected(result, fmt.Errorf("%w: user %s does not hold role %s", shared.ErrInvalidArgument, userID, role))
}

// Active returns the roles the user currently holds.
func (r *RoleRepository) Active(ctx context.Context, userID string) (models.RoleSet, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT role FROM user_roles WHERE user_id = ? AND is_active = 1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, models.Role(role))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return models.NewRoleSet(roles...), nil
}
