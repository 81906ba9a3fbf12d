package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// UserCreate registers a new user.
func (r *Runner) UserCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	user := models.NewUser(0, cmd.String("email"), cmd.String("name"))
	if err := r.users.Create(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	r.logger.Info("user created", "id", user.ID(), "email", user.Email())

	if cmd.Bool("json") {
		return r.writeJSON(userJSON(user), true)
	}
	return r.writePlain("✓ Created user %s (%s)\n", user.ID(), user.Email())
}

// UserList prints every user.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	users, err := r.users.List(map[string]any{"email": cmd.String("email")})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]map[string]any, len(users))
		for i, u := range users {
			out[i] = userJSON(u)
		}
		return r.writeJSON(out, true)
	}

	if len(users) == 0 {
		return r.writePlain("No users found\n")
	}
	for _, u := range users {
		r.writePlain("%-36s  %-28s  %s\n", u.ID(), u.Email(), u.Name())
	}
	return nil
}

// UserPlan assigns the user's active plan tier.
func (r *Runner) UserPlan(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	tier, err := models.ParsePlanTier(cmd.String("tier"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	if err := r.plans.Assign(ctx, user.ID(), tier); err != nil {
		return err
	}
	r.resolver.Invalidate(user.ID())
	return r.writePlain("✓ %s is now on the %s plan\n", user.Email(), tier)
}

// UserGrant gives the user a role.
func (r *Runner) UserGrant(ctx context.Context, cmd *cli.Command) error {
	user, role, err := r.userAndRole(cmd)
	if err != nil {
		return err
	}

	if err := r.roles.Grant(ctx, user.ID(), role); err != nil {
		return err
	}
	r.resolver.Invalidate(user.ID())
	return r.writePlain("✓ Granted %s to %s\n", role, user.Email())
}

// UserRevoke removes a role from the user.
func (r *Runner) UserRevoke(ctx context.Context, cmd *cli.Command) error {
	user, role, err := r.userAndRole(cmd)
	if err != nil {
		return err
	}

	if err := r.roles.Revoke(ctx, user.ID(), role); err != nil {
		return err
	}
	r.resolver.Invalidate(user.ID())
	return r.writePlain("✓ Revoked %s from %s\n", role, user.Email())
}

// requireUser opens the database and loads the user identified by an ID or email address.
func (r *Runner) requireUser(ref string) (*models.User, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: --user", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return nil, err
	}

	user, err := r.users.Get(ref)
	if err == nil {
		return user, nil
	}
	if byEmail, emailErr := r.users.GetByEmail(ref); emailErr == nil {
		return byEmail, nil
	}
	return nil, err
}

func (r *Runner) userAndRole(cmd *cli.Command) (*models.User, models.Role, error) {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return nil, "", err
	}

	role, err := models.ParseRole(cmd.String("role"))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return user, role, nil
}

func userJSON(u *models.User) map[string]any {
	return map[string]any{
		"id":         u.ID(),
		"email":      u.Email(),
		"name":       u.Name(),
		"created_at": u.CreatedAt(),
	}
}
