package usertypes

import (
	"context"
	"testing"
	"time"

	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/repositories"
	"github.com/desertthunder/soundshelf/internal/shared"
)

func TestResolverWithSQLite(t *testing.T) {
	ctx := context.Background()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	user := models.NewUser(0, "listener@example.com", "Listener")
	if err := repositories.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	plans := repositories.NewPlanRepository(db)
	roles := repositories.NewRoleRepository(db)
	clock := newFakeClock()
	resolver := NewResolver(ResolverOpts{
		Store: repositories.NewRowStore(db),
		Cache: NewCache(DefaultTTL, clock.Now),
		Retry: RetryOpts{MaxAttempts: 3, BaseDelay: time.Millisecond},
	})

	got, err := resolver.All(ctx, user.ID(), true)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if got.PlanTier != models.PlanFree || len(got.Roles) != 0 {
		t.Errorf("expected free with no roles, got %+v", got)
	}

	if err := plans.Assign(ctx, user.ID(), models.PlanPlus); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := plans.Assign(ctx, user.ID(), models.PlanPro); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := roles.Grant(ctx, user.ID(), models.RoleCreator); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if err := roles.Grant(ctx, user.ID(), models.RoleModerator); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if err := roles.Revoke(ctx, user.ID(), models.RoleModerator); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	cached, err := resolver.All(ctx, user.ID(), true)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if cached.PlanTier != models.PlanFree {
		t.Errorf("expected cached free tier before expiry, got %s", cached.PlanTier)
	}

	clock.Advance(DefaultTTL)

	fresh, err := resolver.All(ctx, user.ID(), true)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if fresh.PlanTier != models.PlanPro {
		t.Errorf("expected pro after expiry, got %s", fresh.PlanTier)
	}
	if fresh.Roles.String() != "creator" {
		t.Errorf("expected only active creator role, got %s", fresh.Roles)
	}
}
