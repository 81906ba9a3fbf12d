package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"github.com/desertthunder/soundshelf/internal/usertypes"
)

// Resolver resolves user types, typically a [usertypes.Resolver].
type Resolver interface {
	PlanTier(ctx context.Context, userID string, useCache bool) (models.PlanTier, error)
	All(ctx context.Context, userID string, useCache bool) (*usertypes.UserTypes, error)
}

// LibraryCounter answers aggregate queries over a user's playlists, typically a [repositories.PlaylistRepository].
type LibraryCounter interface {
	CountPlaylists(ctx context.Context, userID string) (int, error)
	CountTracks(ctx context.Context, userID string) (int, error)
	TotalDuration(ctx context.Context, userID string) (int, error)
}

// Engine runs bulk and aggregate operations over the user-type resolver and library store.
type Engine struct {
	resolver Resolver
	library  LibraryCounter
	logger   *log.Logger
}

// NewEngine creates a new Engine. library may be nil when [Engine.LibraryStats] is not needed.
func NewEngine(resolver Resolver, library LibraryCounter, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Engine{resolver: resolver, library: library, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

func (e *Engine) requireResolver() error {
	if e.resolver == nil {
		return fmt.Errorf("%w: resolver not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}
