package repositories

import (
	"context"
	"fmt"
)

// CountPlaylists returns how many live playlists the user owns.
func (r *PlaylistRepository) CountPlaylists(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlists WHERE user_id = ? AND deleted_at IS NULL", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count playlists: %w", err)
	}
	return n, nil
}

// CountTracks returns the number of distinct tracks across the user's live playlists.
func (r *PlaylistRepository) CountTracks(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(DISTINCT pt.track_id)
		FROM playlist_tracks pt
		JOIN playlists p ON p.id = pt.playlist_id
		WHERE p.user_id = ? AND p.deleted_at IS NULL
	`

	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

// TotalDuration returns the summed duration in seconds of the distinct tracks across the user's live playlists.
func (r *PlaylistRepository) TotalDuration(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(t.duration), 0)
		FROM tracks t
		WHERE t.id IN (
			SELECT pt.track_id
			FROM playlist_tracks pt
			JOIN playlists p ON p.id = pt.playlist_id
			WHERE p.user_id = ? AND p.deleted_at IS NULL
		)
	`

	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to sum durations: %w", err)
	}
	return n, nil
}
