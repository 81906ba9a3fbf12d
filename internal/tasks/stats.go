package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"golang.org/x/sync/errgroup"
)

// LibraryStats is a read-only summary of a user's library.
type LibraryStats struct {
	UserID    string          `json:"user_id"`
	PlanTier  models.PlanTier `json:"plan_tier"`
	Playlists int             `json:"playlists"`
	Tracks    int             `json:"tracks"`
	Duration  int             `json:"duration"`
}

// LibraryStats gathers playlist, track and duration totals for userID along with its plan tier.
//
// The queries run concurrently; the first to fail cancels the rest and its error is returned.
func (e *Engine) LibraryStats(ctx context.Context, prog chan<- ProgressUpdate, userID string) (*LibraryStats, error) {
	if err := e.requireResolver(); err != nil {
		return nil, err
	}
	if e.library == nil {
		return nil, fmt.Errorf("%w: library store not initialized", shared.ErrServiceUnavailable)
	}

	stats := &LibraryStats{UserID: userID}

	counters := []struct {
		name   string
		target *int
		count  func(context.Context, string) (int, error)
	}{
		{name: "playlists", target: &stats.Playlists, count: e.library.CountPlaylists},
		{name: "tracks", target: &stats.Tracks, count: e.library.CountTracks},
		{name: "duration", target: &stats.Duration, count: e.library.TotalDuration},
	}
	total := len(counters) + 1

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range counters {
		g.Go(func() error {
			n, err := c.count(gctx, userID)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", c.name, err)
			}
			*c.target = n
			e.sendProgress(prog, aggregateUpdate(i+1, total, c.name))
			return nil
		})
	}
	g.Go(func() error {
		tier, err := e.resolver.PlanTier(gctx, userID, true)
		if err != nil {
			return err
		}
		stats.PlanTier = tier
		e.sendProgress(prog, aggregateUpdate(total, total, "plan tier"))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
