package tasks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/soundshelf/internal/formatter"
	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"golang.org/x/time/rate"
)

// Worker pool bounds
const (
	DefaultWorkers   = 5
	MaxWorkers       = 10
	DefaultRateLimit = 10.0
)

// BulkResolveOpts contains configuration for bulk user-type resolution.
type BulkResolveOpts struct {
	NumWorkers int     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64 // Resolutions started per second (default: 10)
	UseCache   bool    // Serve valid cached entries instead of hitting the store
	OutputDir  string  // When set, write a report and manifest here
	Format     string  // Report format: json, csv, markdown, txt
}

// BulkResolveResult summarises a bulk resolution.
type BulkResolveResult struct {
	Total        int                 `json:"total"`
	Resolved     int                 `json:"resolved"`
	Failed       int                 `json:"failed"`
	Results      []models.Resolution `json:"results"`
	ManifestPath string              `json:"manifest_path,omitempty"`
}

type resolveJob struct {
	index int
	user  *models.User
}

type resolveOutcome struct {
	index      int
	resolution models.Resolution
}

// BulkResolve resolves user types for every user concurrently with rate limiting and progress tracking.
//
// A failure for one user is recorded in its [models.Resolution] and does not stop the others.
// Results are returned in input order. If ctx ends early the partial result is returned with ctx's error.
func (e *Engine) BulkResolve(ctx context.Context, prog chan<- ProgressUpdate, users []*models.User, opts BulkResolveOpts) (*BulkResolveResult, error) {
	if err := e.requireResolver(); err != nil {
		return nil, err
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.OutputDir != "" && opts.Format != "" && !formatter.ValidFormat(opts.Format) {
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, opts.Format)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan resolveJob, len(users))
	results := make(chan resolveOutcome, len(users))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.resolveWorker(ctx, &wg, jobs, results, opts.UseCache)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, resolveStartedUpdate(len(users)))
		for i, user := range users {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- resolveJob{index: i, user: user}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]resolveOutcome, 0, len(users))
	result := &BulkResolveResult{Total: len(users)}

	for out := range results {
		outcomes = append(outcomes, out)
		if out.resolution.OK() {
			result.Resolved++
			e.sendProgress(prog, resolveCompletedUpdate(len(outcomes), len(users), out.resolution))
		} else {
			result.Failed++
			e.sendProgress(prog, resolveFailedUpdate(len(outcomes), len(users), out.resolution))
		}
	}

	slices.SortFunc(outcomes, func(a, b resolveOutcome) int { return a.index - b.index })
	result.Results = make([]models.Resolution, len(outcomes))
	for i, out := range outcomes {
		result.Results[i] = out.resolution
	}

	e.logger.Info("bulk resolution finished", "total", result.Total, "resolved", result.Resolved, "failed", result.Failed)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if opts.OutputDir != "" {
		e.sendProgress(prog, writeReportUpdate(opts.OutputDir))
		manifest, err := formatter.WriteResolutionReport(result.Results, opts.Format, opts.OutputDir)
		if err != nil {
			return result, fmt.Errorf("resolution completed but failed to write report: %w", err)
		}
		result.ManifestPath = manifest
	}

	return result, nil
}

// resolveWorker is a worker goroutine that resolves users from the jobs channel.
func (e *Engine) resolveWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan resolveJob,
	results chan<- resolveOutcome,
	useCache bool,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- resolveOutcome{index: job.index, resolution: e.resolveUser(ctx, job.user, useCache)}
	}
}

func (e *Engine) resolveUser(ctx context.Context, user *models.User, useCache bool) models.Resolution {
	res := models.Resolution{UserID: user.ID(), Email: user.Email()}

	types, err := e.resolver.All(ctx, user.ID(), useCache)
	if err != nil {
		res.Code = string(shared.CodeOf(err))
		res.Error = err.Error()
		e.logger.Warn("failed to resolve user", "user", user.ID(), "code", res.Code)
		return res
	}

	res.PlanTier = types.PlanTier
	res.Roles = types.Roles
	return res
}
