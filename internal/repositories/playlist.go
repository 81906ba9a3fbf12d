package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
)

const playlistColumns = `p.id, p.sequence, p.user_id, p.name, p.description, p.public, p.created_at, p.updated_at, p.deleted_at,
	(SELECT COUNT(*) FROM playlist_tracks pt WHERE pt.playlist_id = p.id)`

// PlaylistRepository implements models.Repository[*models.Playlist] and manages playlist membership.
//
// Track positions are 1-based and contiguous within a playlist; every membership change keeps them that way.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.Playlist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	playlist.SetID(shared.GenerateID())
	playlist.SetSequence(sequence)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO playlists (id, sequence, user_id, name, description, public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		playlist.ID(),
		sequence,
		playlist.UserID(),
		playlist.Name(),
		playlist.Description(),
		playlist.Public(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists p WHERE p.id = ? AND p.deleted_at IS NULL"

	playlist, err := scanPlaylist(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return playlist, err
}

// Update modifies an existing playlist in the database
func (r *PlaylistRepository) Update(playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE playlists
		SET name = ?, description = ?, public = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, playlist.Name(), playlist.Description(), playlist.Public(), now, playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID()))
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id))
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists
//
// Supported criteria: "user_id" (string), "public" (bool).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.Playlist, error) {
	query := "SELECT " + playlistColumns + " FROM playlists p WHERE p.deleted_at IS NULL"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND p.user_id = ?"
		args = append(args, userID)
	}

	if public, ok := criteria["public"].(bool); ok {
		query += " AND p.public = ?"
		args = append(args, public)
	}

	query += " ORDER BY p.sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// AddTrack appends a track to the end of a playlist and returns its position.
func (r *PlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requirePlaylist(ctx, tx, playlistID); err != nil {
		return 0, err
	}

	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tracks WHERE id = ? AND deleted_at IS NULL)", trackID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check track: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	var position int
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_tracks WHERE playlist_id = ?", playlistID).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("failed to compute position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO playlist_tracks (id, playlist_id, track_id, position, added_at) VALUES (?, ?, ?, ?, ?)",
		shared.GenerateID(), playlistID, trackID, position, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add track to playlist: %w", err)
	}

	if err := touchPlaylist(ctx, tx, playlistID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return position, nil
}

// RemoveTrack removes a track from a playlist and closes the gap it leaves.
func (r *PlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position, err := trackPosition(ctx, tx, playlistID, trackID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?", playlistID, trackID); err != nil {
		return fmt.Errorf("failed to remove track: %w", err)
	}

	_, err = tx.ExecContext(ctx, "UPDATE playlist_tracks SET position = position - 1 WHERE playlist_id = ? AND position > ?", playlistID, position)
	if err != nil {
		return fmt.Errorf("failed to compact positions: %w", err)
	}

	if err := touchPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}

	return tx.Commit()
}

// Reorder moves a track to position (1-based), shifting the tracks in between.
//
// The move runs in one transaction so concurrent readers never observe duplicate or missing positions.
func (r *PlaylistRepository) Reorder(ctx context.Context, playlistID, trackID string, position int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?", playlistID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count playlist tracks: %w", err)
	}
	if position < 1 || position > count {
		return fmt.Errorf("%w: position %d outside 1..%d", shared.ErrInvalidArgument, position, count)
	}

	current, err := trackPosition(ctx, tx, playlistID, trackID)
	if err != nil {
		return err
	}
	if current == position {
		return nil
	}

	if position < current {
		_, err = tx.ExecContext(ctx,
			"UPDATE playlist_tracks SET position = position + 1 WHERE playlist_id = ? AND position >= ? AND position < ?",
			playlistID, position, current,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE playlist_tracks SET position = position - 1 WHERE playlist_id = ? AND position > ? AND position <= ?",
			playlistID, current, position,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to shift positions: %w", err)
	}

	_, err = tx.ExecContext(ctx, "UPDATE playlist_tracks SET position = ? WHERE playlist_id = ? AND track_id = ?", position, playlistID, trackID)
	if err != nil {
		return fmt.Errorf("failed to move track: %w", err)
	}

	if err := touchPlaylist(ctx, tx, playlistID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

// Tracks returns the playlist's tracks in position order.
func (r *PlaylistRepository) Tracks(ctx context.Context, playlistID string) ([]models.PlaylistTrack, error) {
	query := `
		SELECT pt.id, pt.playlist_id, pt.track_id, pt.position, pt.added_at,
			t.title, t.artist, t.album, t.duration, t.isrc, t.audio_url
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	var out []models.PlaylistTrack
	for rows.Next() {
		var pt models.PlaylistTrack
		err := rows.Scan(&pt.ID, &pt.PlaylistID, &pt.TrackID, &pt.Position, &pt.AddedAt,
			&pt.Track.Title, &pt.Track.Artist, &pt.Track.Album, &pt.Track.Duration, &pt.Track.ISRC, &pt.Track.AudioURL)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		out = append(out, pt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func requirePlaylist(ctx context.Context, tx *sql.Tx, playlistID string) error {
	var exists bool
	err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM playlists WHERE id = ? AND deleted_at IS NULL)", playlistID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check playlist: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	return nil
}

func trackPosition(ctx context.Context, tx *sql.Tx, playlistID, trackID string) (int, error) {
	var position int
	err := tx.QueryRowContext(ctx, "SELECT position FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?", playlistID, trackID).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s is not in playlist %s", shared.ErrTrackNotFound, trackID, playlistID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read track position: %w", err)
	}
	return position, nil
}

func touchPlaylist(ctx context.Context, tx *sql.Tx, playlistID string) error {
	if _, err := tx.ExecContext(ctx, "UPDATE playlists SET updated_at = ? WHERE id = ?", time.Now(), playlistID); err != nil {
		return fmt.Errorf("failed to touch playlist: %w", err)
	}
	return nil
}

func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		id          string
		sequence    int
		userID      string
		name        string
		description string
		public      bool
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
		trackCount  int
	)

	err := row.Scan(&id, &sequence, &userID, &name, &description, &public, &createdAt, &updatedAt, &deletedAt, &trackCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPlaylist(sequence, userID, name, description, public)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	playlist.SetTrackCount(trackCount)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}
