package usertypes

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"golang.org/x/sync/singleflight"
)

const (
	kindPlanTier = "plan_tier"
	kindRoles    = "roles"
)

// Store is the remote data store the resolver reads from.
//
// LookupOne reports found = false when no row matches and fails when more than one does.
type Store interface {
	LookupOne(ctx context.Context, table string, filters ...models.Filter) (models.Row, bool, error)
	LookupMany(ctx context.Context, table string, filters ...models.Filter) ([]models.Row, error)
}

// UserTypes is the combined result of [Resolver.All].
type UserTypes struct {
	PlanTier models.PlanTier `json:"plan_tier"`
	Roles    models.RoleSet  `json:"roles"`
}

// ResolverOpts configures a [Resolver]. Only Store is required.
type ResolverOpts struct {
	Store   Store
	Cache   *Cache
	Retry   RetryOpts
	Logger  *log.Logger
	Metrics *Metrics

	// Coalesce shares one in-flight store fetch between concurrent callers for the same user and kind.
	Coalesce bool
}

// Resolver answers plan tier and role lookups through the cache.
type Resolver struct {
	store    Store
	cache    *Cache
	retry    RetryOpts
	logger   *log.Logger
	metrics  *Metrics
	coalesce bool
	group    singleflight.Group
}

// NewResolver creates a [Resolver]. Missing options fall back to a fresh [Cache] with
// [DefaultTTL] and a discarding logger. A zero Retry selects [DefaultRetryOpts]; otherwise a
// zero BaseDelay retries without waiting.
func NewResolver(opts ResolverOpts) *Resolver {
	if opts.Cache == nil {
		opts.Cache = NewCache(DefaultTTL, nil)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Retry.MaxAttempts <= 0 && opts.Retry.BaseDelay == 0 {
		opts.Retry.MaxAttempts, opts.Retry.BaseDelay = DefaultMaxAttempts, DefaultBaseDelay
	}
	opts.Retry = opts.Retry.withDefaults()

	return &Resolver{
		store:    opts.Store,
		cache:    opts.Cache,
		retry:    opts.Retry,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		coalesce: opts.Coalesce,
	}
}

// Cache returns the cache backing the resolver.
func (r *Resolver) Cache() *Cache { return r.cache }

// RetryOpts returns the effective retry settings.
func (r *Resolver) RetryOpts() RetryOpts { return r.retry }

// PlanTier resolves the user's active plan tier, defaulting to [models.PlanFree] when none is recorded.
//
// With useCache set, a valid cached entry is returned without touching the store. Any
// successful fetch is written back to the cache.
func (r *Resolver) PlanTier(ctx context.Context, userID string, useCache bool) (models.PlanTier, error) {
	if useCache {
		if entry, ok := r.cache.PlanTier(userID); ok && r.cache.Valid(entry.CachedAt) {
			r.metrics.hit(kindPlanTier)
			r.logger.Debug("cache hit", "kind", kindPlanTier, "user", userID, "age", r.cache.now().Sub(entry.CachedAt))
			return entry.Value, nil
		}
	}
	r.metrics.miss(kindPlanTier)

	tier, err := coalesce(r, kindPlanTier, userID, func() (models.PlanTier, error) {
		return Retry(ctx, func(ctx context.Context) (models.PlanTier, error) {
			return r.fetchPlanTier(ctx, userID)
		}, r.retryOpts(kindPlanTier, userID))
	})
	if err != nil {
		r.failed(kindPlanTier, userID, err)
		return "", err
	}

	r.cache.PutPlanTier(userID, tier)
	return tier, nil
}

// Roles resolves the user's active roles, which may be an empty set.
//
// Caching follows the same rules as [Resolver.PlanTier] but expires independently of it.
func (r *Resolver) Roles(ctx context.Context, userID string, useCache bool) (models.RoleSet, error) {
	if useCache {
		if entry, ok := r.cache.Roles(userID); ok && r.cache.Valid(entry.CachedAt) {
			r.metrics.hit(kindRoles)
			r.logger.Debug("cache hit", "kind", kindRoles, "user", userID, "age", r.cache.now().Sub(entry.CachedAt))
			return entry.Value, nil
		}
	}
	r.metrics.miss(kindRoles)

	roles, err := coalesce(r, kindRoles, userID, func() (models.RoleSet, error) {
		return Retry(ctx, func(ctx context.Context) (models.RoleSet, error) {
			return r.fetchRoles(ctx, userID)
		}, r.retryOpts(kindRoles, userID))
	})
	if err != nil {
		r.failed(kindRoles, userID, err)
		return nil, err
	}

	r.cache.PutRoles(userID, roles)
	return roles.Clone(), nil
}

// All resolves plan tier and roles concurrently.
//
// It succeeds only when both lookups do. The first failure is returned at once; the other
// lookup keeps running with ctx and still writes through to the cache, only its result is
// discarded. Errors without a classification are reported as [shared.CodeUnknown].
func (r *Resolver) All(ctx context.Context, userID string, useCache bool) (*UserTypes, error) {
	var (
		tier  models.PlanTier
		roles models.RoleSet
	)

	done := make(chan error, 2)
	go func() {
		t, err := r.PlanTier(ctx, userID, useCache)
		if err == nil {
			tier = t
		}
		done <- err
	}()
	go func() {
		rs, err := r.Roles(ctx, userID, useCache)
		if err == nil {
			roles = rs
		}
		done <- err
	}()

	for range 2 {
		if err := <-done; err != nil {
			if !shared.Classified(err) {
				err = shared.NewError(shared.CodeUnknown, "unexpected failure resolving user types", err)
			}
			return nil, err
		}
	}

	return &UserTypes{PlanTier: tier, Roles: roles}, nil
}

// Invalidate drops the cached plan tier and roles for userID.
func (r *Resolver) Invalidate(userID string) {
	r.cache.Invalidate(userID)
	r.logger.Debug("cache invalidated", "user", userID)
}

// InvalidateAll empties the cache.
func (r *Resolver) InvalidateAll() {
	r.cache.InvalidateAll()
	r.logger.Debug("cache cleared")
}

func (r *Resolver) fetchPlanTier(ctx context.Context, userID string) (models.PlanTier, error) {
	r.metrics.fetch(kindPlanTier)

	row, found, err := r.store.LookupOne(ctx, models.PlansTable, models.Eq("user_id", userID), models.Eq("is_active", true))
	if err != nil {
		return "", storeError(kindPlanTier, err)
	}
	if !found {
		return models.PlanFree, nil
	}

	value, _ := row.String("plan")
	tier, err := models.ParsePlanTier(value)
	if err != nil {
		return "", shared.NewError(shared.CodeDatabase, "invalid plan tier in store", err)
	}
	return tier, nil
}

func (r *Resolver) fetchRoles(ctx context.Context, userID string) (models.RoleSet, error) {
	r.metrics.fetch(kindRoles)

	rows, err := r.store.LookupMany(ctx, models.RolesTable, models.Eq("user_id", userID), models.Eq("is_active", true))
	if err != nil {
		return nil, storeError(kindRoles, err)
	}

	roles := make([]models.Role, 0, len(rows))
	for _, row := range rows {
		value, _ := row.String("role")
		role, err := models.ParseRole(value)
		if err != nil {
			return nil, shared.NewError(shared.CodeDatabase, "invalid role in store", err)
		}
		roles = append(roles, role)
	}
	return models.NewRoleSet(roles...), nil
}

func (r *Resolver) retryOpts(kind, userID string) RetryOpts {
	opts := r.retry
	next := opts.OnRetry
	opts.OnRetry = func(attempt int, delay time.Duration, err error) {
		r.metrics.retry(kind)
		r.logger.Warn("retrying store fetch", "kind", kind, "user", userID, "attempt", attempt+1, "delay", delay, "err", err)
		if next != nil {
			next(attempt, delay, err)
		}
	}
	return opts
}

func (r *Resolver) failed(kind, userID string, err error) {
	code := shared.CodeOf(err)
	r.metrics.failure(kind, string(code))
	r.logger.Error("failed to resolve user type", "kind", kind, "user", userID, "code", code, "err", err)
}

// storeError classifies a store failure as retryable unless the store already classified it.
func storeError(kind string, err error) error {
	if shared.Classified(err) {
		return err
	}
	return shared.NewError(shared.CodeDatabase, fmt.Sprintf("failed to fetch %s", kind), err)
}

// coalesce runs fn, sharing the call between concurrent callers for the same kind and user when enabled.
//
// A shared call runs with the context of whichever caller started it.
func coalesce[T any](r *Resolver, kind, userID string, fn func() (T, error)) (T, error) {
	if !r.coalesce {
		return fn()
	}

	v, err, _ := r.group.Do(kind+":"+userID, func() (any, error) {
		value, err := fn()
		return value, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
