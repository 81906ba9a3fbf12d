package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/soundshelf/internal/formatter"
	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"github.com/desertthunder/soundshelf/internal/tasks"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v3"
)

// ResolvePlan prints the user's plan tier.
func (r *Runner) ResolvePlan(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	tier, err := r.resolver.PlanTier(ctx, user.ID(), !cmd.Bool("no-cache"))
	if err != nil {
		return fmt.Errorf("failed to resolve plan tier: %w", err)
	}

	if cmd.Bool("json") {
		err = r.writeJSON(map[string]any{"user_id": user.ID(), "plan_tier": tier}, true)
	} else {
		err = r.writePlain("%s\n", tier)
	}
	if err != nil {
		return err
	}
	return r.maybeWriteMetrics(cmd)
}

// ResolveRoles prints the user's active roles.
func (r *Runner) ResolveRoles(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	roles, err := r.resolver.Roles(ctx, user.ID(), !cmd.Bool("no-cache"))
	if err != nil {
		return fmt.Errorf("failed to resolve roles: %w", err)
	}

	if cmd.Bool("json") {
		err = r.writeJSON(map[string]any{"user_id": user.ID(), "roles": roles}, true)
	} else {
		err = r.writePlain("%s\n", roles)
	}
	if err != nil {
		return err
	}
	return r.maybeWriteMetrics(cmd)
}

// ResolveAll prints the plan tier and roles fetched together.
func (r *Runner) ResolveAll(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	types, err := r.resolver.All(ctx, user.ID(), !cmd.Bool("no-cache"))
	if err != nil {
		return fmt.Errorf("failed to resolve user types: %w", err)
	}

	if cmd.Bool("json") {
		err = r.writeJSON(types, true)
	} else {
		r.writePlainHeader(user.Email())
		err = r.writePlain("Plan:  %s\nRoles: %s\n", types.PlanTier, types.Roles)
	}
	if err != nil {
		return err
	}
	return r.maybeWriteMetrics(cmd)
}

// ResolveBulk resolves user types for every user and optionally writes a report.
func (r *Runner) ResolveBulk(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	if !formatter.ValidFormat(format) {
		return fmt.Errorf("%w: format must be one of %s", shared.ErrInvalidFlag, strings.Join(formatter.Formats, ", "))
	}

	if err := r.open(); err != nil {
		return err
	}

	users, err := r.users.List(map[string]any{})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	workers := r.config.Tasks.Workers
	if cmd.IsSet("workers") {
		workers = cmd.Int("workers")
	}
	rateLimit := r.config.Tasks.RateLimit
	if cmd.IsSet("rate") {
		rateLimit = cmd.Float("rate")
	}

	opts := tasks.BulkResolveOpts{
		NumWorkers: workers,
		RateLimit:  rateLimit,
		UseCache:   !cmd.Bool("no-cache"),
		OutputDir:  cmd.String("output"),
		Format:     format,
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveUsers:
				r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
			case tasks.WriteReport:
				r.logger.Info(update.Message)
			}
		}
	}()

	result, err := r.engine.BulkResolve(ctx, progressCh, users, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if opts.OutputDir == "" {
		data, err := formatter.FormatResolutions(result.Results, format)
		if err != nil {
			return err
		}
		return r.writeDocument(data)
	}

	r.writePlainHeader("Resolution Complete")
	r.writePlain("Resolved: %d/%d\n", result.Resolved, result.Total)
	if result.Failed > 0 {
		r.writePlain("\nFailed to resolve %d users:\n", result.Failed)
		for _, res := range result.Results {
			if !res.OK() {
				r.writePlain("  - %s (%s): %s\n", res.UserID, res.Code, res.Error)
			}
		}
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}

// Stats prints a summary of the user's library along with their plan tier.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	stats, err := r.engine.LibraryStats(ctx, nil, user.ID())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainHeader(fmt.Sprintf("Library for %s", user.Email()))
	r.writePlain("Plan:      %s\n", stats.PlanTier)
	r.writePlain("Playlists: %d\n", stats.Playlists)
	r.writePlain("Tracks:    %d\n", stats.Tracks)
	return r.writePlain("Duration:  %s\n", shared.FormatDuration(stats.Duration))
}

func (r *Runner) maybeWriteMetrics(cmd *cli.Command) error {
	if !cmd.Bool("metrics") {
		return nil
	}
	return r.writeMetrics()
}

// writeMetrics dumps the resolver counters in the Prometheus text exposition format.
func (r *Runner) writeMetrics() error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	r.writePlain("\n")
	enc := expfmt.NewEncoder(r.output, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

func planTierUsage() string {
	tiers := make([]string, len(models.PlanTiers))
	for i, t := range models.PlanTiers {
		tiers[i] = string(t)
	}
	return "Plan tier (" + strings.Join(tiers, ", ") + ")"
}

func roleUsage() string {
	roles := make([]string, len(models.Roles))
	for i, role := range models.Roles {
		roles[i] = string(role)
	}
	return "Role (" + strings.Join(roles, ", ") + ")"
}
