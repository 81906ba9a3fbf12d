package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/soundshelf/internal/formatter"
	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// TrackCreate uploads track metadata for a user.
func (r *Runner) TrackCreate(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	track := models.NewTrack(0, user.ID(), models.TrackInfo{
		Title:    cmd.String("title"),
		Artist:   cmd.String("artist"),
		Album:    cmd.String("album"),
		Duration: cmd.Int("duration"),
		ISRC:     cmd.String("isrc"),
		AudioURL: cmd.String("audio-url"),
	})
	if err := r.tracks.Create(track); err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}

	r.logger.Info("track created", "id", track.ID(), "user", user.ID())
	return r.writePlain("✓ Created track %s (%s - %s)\n", track.ID(), track.Artist(), track.Title())
}

// TrackList prints the tracks uploaded by a user.
func (r *Runner) TrackList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	tracks, err := r.tracks.List(map[string]any{"user_id": user.ID()})
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]map[string]any, len(tracks))
		for i, t := range tracks {
			out[i] = map[string]any{"id": t.ID(), "track": t.Info()}
		}
		return r.writeJSON(out, true)
	}

	if len(tracks) == 0 {
		return r.writePlain("No tracks found\n")
	}
	for _, t := range tracks {
		r.writePlain("%-36s  %s - %s [%s]\n", t.ID(), t.Artist(), t.Title(), shared.FormatDuration(t.Duration()))
	}
	return nil
}

// PlaylistCreate creates an empty playlist for a user.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	playlist := models.NewPlaylist(0, user.ID(), cmd.String("name"), cmd.String("description"), cmd.Bool("public"))
	if err := r.playlists.Create(playlist); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.logger.Info("playlist created", "id", playlist.ID(), "user", user.ID())
	return r.writePlain("✓ Created %s playlist %s (%s)\n",
		strings.ToLower(shared.VisibilityString(playlist.Public())), playlist.ID(), playlist.Name())
}

// PlaylistList prints a user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	user, err := r.requireUser(cmd.String("user"))
	if err != nil {
		return err
	}

	playlists, err := r.playlists.List(map[string]any{"user_id": user.ID()})
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}
	for _, p := range playlists {
		r.writePlain("%-36s  %-30s  %3d tracks  %s\n", p.ID(), p.Name(), p.TrackCount(), shared.VisibilityString(p.Public()))
	}
	return nil
}

// PlaylistAdd appends a track to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	position, err := r.playlists.AddTrack(ctx, cmd.String("playlist"), cmd.String("track"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added track at position %d\n", position)
}

// PlaylistRemove removes a track from a playlist, closing the gap it leaves.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	if err := r.playlists.RemoveTrack(ctx, cmd.String("playlist"), cmd.String("track")); err != nil {
		return err
	}
	return r.writePlain("✓ Removed track\n")
}

// PlaylistReorder moves a track to a new 1-based position.
func (r *Runner) PlaylistReorder(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	position := cmd.Int("position")
	if err := r.playlists.Reorder(ctx, cmd.String("playlist"), cmd.String("track"), position); err != nil {
		return err
	}
	return r.writePlain("✓ Moved track to position %d\n", position)
}

// PlaylistShow renders a playlist and its tracks in the requested format.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	playlist, err := r.playlists.Get(cmd.String("playlist"))
	if err != nil {
		return err
	}
	tracks, err := r.playlists.Tracks(ctx, playlist.ID())
	if err != nil {
		return err
	}

	data, err := formatter.FormatPlaylist(formatter.NewPlaylistDocument(playlist, tracks), strings.ToLower(cmd.String("format")))
	if err != nil {
		return err
	}
	return r.writeDocument(data)
}
