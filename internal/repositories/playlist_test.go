package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/soundshelf/internal/shared"
)

func trackOrder(t *testing.T, repo *PlaylistRepository, playlistID string) []string {
	t.Helper()
	tracks, err := repo.Tracks(context.Background(), playlistID)
	if err != nil {
		t.Fatalf("failed to list playlist tracks: %v", err)
	}
	titles := make([]string, len(tracks))
	for i, pt := range tracks {
		if pt.Position != i+1 {
			t.Errorf("expected contiguous positions, got %d at index %d", pt.Position, i)
		}
		titles[i] = pt.Track.Title
	}
	return titles
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CRUD", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		user := mustCreateUser(t, db, "owner@example.com")
		playlist := mustCreatePlaylist(t, db, user.ID(), "Morning")

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.Name() != "Morning" || retrieved.TrackCount() != 0 {
			t.Errorf("unexpected playlist %s with %d tracks", retrieved.Name(), retrieved.TrackCount())
		}

		retrieved.SetPublic(true)
		if err := repo.Update(retrieved); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		public, err := repo.List(map[string]any{"user_id": user.ID(), "public": true})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(public) != 1 {
			t.Errorf("expected 1 public playlist, got %d", len(public))
		}

		if err := repo.Delete(playlist.ID()); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		if _, err := repo.Get(playlist.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("AddTrack", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		user := mustCreateUser(t, db, "owner@example.com")
		playlist := mustCreatePlaylist(t, db, user.ID(), "Mix")
		a := mustCreateTrack(t, db, user.ID(), "A", 60)
		b := mustCreateTrack(t, db, user.ID(), "B", 60)

		for i, tr := range []string{a.ID(), b.ID()} {
			pos, err := repo.AddTrack(ctx, playlist.ID(), tr)
			if err != nil {
				t.Fatalf("failed to add track: %v", err)
			}
			if pos != i+1 {
				t.Errorf("expected position %d, got %d", i+1, pos)
			}
		}

		if _, err := repo.AddTrack(ctx, playlist.ID(), a.ID()); err == nil {
			t.Error("expected error adding a duplicate track")
		}
		if _, err := repo.AddTrack(ctx, "missing", a.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if _, err := repo.AddTrack(ctx, playlist.ID(), "missing"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.TrackCount() != 2 {
			t.Errorf("expected track count 2, got %d", retrieved.TrackCount())
		}
	})

	t.Run("Reorder And Remove", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		user := mustCreateUser(t, db, "owner@example.com")
		playlist := mustCreatePlaylist(t, db, user.ID(), "Set")

		ids := map[string]string{}
		for _, title := range []string{"A", "B", "C", "D"} {
			tr := mustCreateTrack(t, db, user.ID(), title, 100)
			ids[title] = tr.ID()
			if _, err := repo.AddTrack(ctx, playlist.ID(), tr.ID()); err != nil {
				t.Fatalf("failed to add track: %v", err)
			}
		}

		steps := []struct {
			move string
			to   int
			want []string
		}{
			{move: "D", to: 1, want: []string{"D", "A", "B", "C"}},
			{move: "A", to: 4, want: []string{"D", "B", "C", "A"}},
			{move: "B", to: 2, want: []string{"D", "B", "C", "A"}},
			{move: "C", to: 2, want: []string{"D", "C", "B", "A"}},
		}

		for _, step := range steps {
			if err := repo.Reorder(ctx, playlist.ID(), ids[step.move], step.to); err != nil {
				t.Fatalf("failed to move %s to %d: %v", step.move, step.to, err)
			}
			if got := trackOrder(t, repo, playlist.ID()); !equalOrder(got, step.want) {
				t.Errorf("after moving %s to %d expected %v, got %v", step.move, step.to, step.want, got)
			}
		}

		for _, pos := range []int{0, 5} {
			if err := repo.Reorder(ctx, playlist.ID(), ids["A"], pos); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for position %d, got %v", pos, err)
			}
		}

		if err := repo.RemoveTrack(ctx, playlist.ID(), ids["C"]); err != nil {
			t.Fatalf("failed to remove track: %v", err)
		}
		if got := trackOrder(t, repo, playlist.ID()); !equalOrder(got, []string{"D", "B", "A"}) {
			t.Errorf("unexpected order after removal: %v", got)
		}

		if err := repo.RemoveTrack(ctx, playlist.ID(), ids["C"]); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound removing twice, got %v", err)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db)
		user := mustCreateUser(t, db, "owner@example.com")
		first := mustCreatePlaylist(t, db, user.ID(), "One")
		second := mustCreatePlaylist(t, db, user.ID(), "Two")
		shared1 := mustCreateTrack(t, db, user.ID(), "Shared", 200)
		solo := mustCreateTrack(t, db, user.ID(), "Solo", 100)

		for _, add := range [][2]string{{first.ID(), shared1.ID()}, {second.ID(), shared1.ID()}, {second.ID(), solo.ID()}} {
			if _, err := repo.AddTrack(ctx, add[0], add[1]); err != nil {
				t.Fatalf("failed to add track: %v", err)
			}
		}

		if n, err := repo.CountPlaylists(ctx, user.ID()); err != nil || n != 2 {
			t.Errorf("CountPlaylists = %d, %v; want 2", n, err)
		}
		if n, err := repo.CountTracks(ctx, user.ID()); err != nil || n != 2 {
			t.Errorf("CountTracks = %d, %v; want 2", n, err)
		}
		if n, err := repo.TotalDuration(ctx, user.ID()); err != nil || n != 300 {
			t.Errorf("TotalDuration = %d, %v; want 300", n, err)
		}
	})
}
