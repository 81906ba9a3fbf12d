package usertypes

import (
	"testing"
	"time"

	"github.com/desertthunder/soundshelf/internal/models"
)

func TestCache(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := NewCache(0, nil)
		if c.TTL() != DefaultTTL {
			t.Errorf("expected default TTL %v, got %v", DefaultTTL, c.TTL())
		}
		if c.Len() != 0 {
			t.Errorf("expected empty cache, got %d records", c.Len())
		}
	})

	t.Run("Put And Get", func(t *testing.T) {
		clock := newFakeClock()
		c := NewCache(DefaultTTL, clock.Now)

		if _, ok := c.PlanTier("u1"); ok {
			t.Fatal("expected no entry before put")
		}

		c.PutPlanTier("u1", models.PlanPro)
		entry, ok := c.PlanTier("u1")
		if !ok {
			t.Fatal("expected entry after put")
		}
		if entry.Value != models.PlanPro {
			t.Errorf("expected pro, got %s", entry.Value)
		}
		if !entry.CachedAt.Equal(clock.Now()) {
			t.Errorf("expected CachedAt %v, got %v", clock.Now(), entry.CachedAt)
		}

		if _, ok := c.Roles("u1"); ok {
			t.Error("expected roles to stay absent after caching plan tier")
		}
	})

	t.Run("Validity", func(t *testing.T) {
		clock := newFakeClock()
		c := NewCache(DefaultTTL, clock.Now)
		written := clock.Now()

		tests := []struct {
			name    string
			advance time.Duration
			valid   bool
		}{
			{name: "fresh", advance: 0, valid: true},
			{name: "just under TTL", advance: DefaultTTL - time.Second, valid: true},
			{name: "at TTL", advance: time.Second, valid: false},
			{name: "past TTL", advance: time.Minute, valid: false},
		}

		for _, tt := range tests {
			clock.Advance(tt.advance)
			if got := c.Valid(written); got != tt.valid {
				t.Errorf("%s: expected valid=%v, got %v", tt.name, tt.valid, got)
			}
		}
	})

	t.Run("Kinds Are Independent", func(t *testing.T) {
		clock := newFakeClock()
		c := NewCache(DefaultTTL, clock.Now)

		c.PutPlanTier("u1", models.PlanPlus)
		clock.Advance(3 * time.Minute)
		c.PutRoles("u1", models.NewRoleSet(models.RoleAdmin))

		plan, _ := c.PlanTier("u1")
		roles, _ := c.Roles("u1")
		if plan.CachedAt.Equal(roles.CachedAt) {
			t.Error("expected plan tier and roles to keep separate timestamps")
		}

		clock.Advance(2 * time.Minute)
		if c.Valid(plan.CachedAt) {
			t.Error("expected plan tier entry to be stale")
		}
		if !c.Valid(roles.CachedAt) {
			t.Error("expected roles entry to be valid")
		}
		if c.Len() != 1 {
			t.Errorf("expected one user record, got %d", c.Len())
		}
	})

	t.Run("Roles Are Copied", func(t *testing.T) {
		c := NewCache(DefaultTTL, nil)
		roles := models.NewRoleSet(models.RoleAdmin, models.RoleCreator)
		c.PutRoles("u1", roles)

		roles[0] = models.RoleCurator
		entry, _ := c.Roles("u1")
		if entry.Value[0] != models.RoleAdmin {
			t.Errorf("cached roles changed through caller's slice: %v", entry.Value)
		}

		entry.Value[0] = models.RoleModerator
		again, _ := c.Roles("u1")
		if again.Value[0] != models.RoleAdmin {
			t.Errorf("cached roles changed through returned slice: %v", again.Value)
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		c := NewCache(DefaultTTL, nil)
		c.PutPlanTier("u1", models.PlanPro)
		c.PutRoles("u1", models.NewRoleSet(models.RoleAdmin))
		c.PutPlanTier("u2", models.PlanFree)

		c.Invalidate("u1")
		if _, ok := c.PlanTier("u1"); ok {
			t.Error("expected u1 plan tier to be gone")
		}
		if _, ok := c.Roles("u1"); ok {
			t.Error("expected u1 roles to be gone")
		}
		if _, ok := c.PlanTier("u2"); !ok {
			t.Error("expected u2 to survive invalidating u1")
		}

		c.Invalidate("missing")

		c.InvalidateAll()
		if c.Len() != 0 {
			t.Errorf("expected empty cache, got %d records", c.Len())
		}
	})
}
