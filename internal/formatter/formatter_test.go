package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	th "github.com/desertthunder/soundshelf/internal/testing"
)

func testDocument() *PlaylistDocument {
	playlist := models.NewPlaylist(1, "user1", "Test Playlist", "A test playlist", true)
	playlist.SetID("test123")

	tracks := []models.PlaylistTrack{
		{
			ID:         "pt1",
			PlaylistID: "test123",
			TrackID:    "track1",
			Position:   1,
			Track:      models.TrackInfo{Title: "Song One", Artist: "Artist One", Album: "Album One", Duration: 180, ISRC: "USRC12345678"},
		},
		{
			ID:         "pt2",
			PlaylistID: "test123",
			TrackID:    "track2",
			Position:   2,
			Track:      models.TrackInfo{Title: "Song Two", Artist: "Artist Two", Duration: 240},
		},
	}
	return NewPlaylistDocument(playlist, tracks)
}

func testResolutions() []models.Resolution {
	return []models.Resolution{
		{UserID: "u1", Email: "one@example.com", PlanTier: models.PlanPro, Roles: models.NewRoleSet(models.RoleAdmin, models.RoleCurator)},
		{UserID: "u2", PlanTier: models.PlanFree, Roles: models.RoleSet{}},
		{UserID: "u3", Code: "unauthorized", Error: "unauthorized: permission denied"},
	}
}

func TestPlaylistExporters(t *testing.T) {
	doc := testDocument()

	t.Run("NewPlaylistDocument", func(t *testing.T) {
		if doc.TrackCount != 2 {
			t.Errorf("expected 2 tracks, got %d", doc.TrackCount)
		}
		if doc.Duration != 420 {
			t.Errorf("expected total duration 420, got %d", doc.Duration)
		}

		empty := NewPlaylistDocument(models.NewPlaylist(1, "u", "Empty", "", false), nil)
		if empty.Tracks == nil {
			t.Error("expected non-nil tracks for an empty playlist")
		}
	})

	t.Run("PlaylistToCSV", func(t *testing.T) {
		data, err := PlaylistToCSV(doc)
		if err != nil {
			t.Fatalf("PlaylistToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Position,Title,Artist,Album,Duration,ISRC") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Song One,Artist One,Album One,180,USRC12345678") {
			t.Errorf("CSV missing first track, got: %s", output)
		}
	})

	t.Run("PlaylistToMarkdown", func(t *testing.T) {
		data, err := PlaylistToMarkdown(doc)
		if err != nil {
			t.Fatalf("PlaylistToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"**Description**: A test playlist",
			"**Tracks**: 2",
			"**Duration**: 7:00",
			"**Visibility**: Public",
			"1. Artist One - Song One (Album One) [3:00]",
			"2. Artist Two - Song Two [4:00]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("PlaylistToText", func(t *testing.T) {
		data, err := PlaylistToText(doc)
		if err != nil {
			t.Fatalf("PlaylistToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Test Playlist") || !strings.Contains(output, "2. Artist Two - Song Two") {
			t.Errorf("unexpected text output: %s", output)
		}
	})

	t.Run("FormatPlaylist JSON", func(t *testing.T) {
		data, err := FormatPlaylist(doc, FormatJSON)
		if err != nil {
			t.Fatalf("FormatPlaylist failed: %v", err)
		}

		var decoded PlaylistDocument
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.ID != "test123" || len(decoded.Tracks) != 2 {
			t.Errorf("unexpected decoded document: %+v", decoded)
		}
	})

	t.Run("FormatPlaylist Unsupported", func(t *testing.T) {
		if _, err := FormatPlaylist(doc, "xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestResolutionExporters(t *testing.T) {
	results := testResolutions()

	t.Run("ResolutionsToCSV", func(t *testing.T) {
		data, err := ResolutionsToCSV(results)
		if err != nil {
			t.Fatalf("ResolutionsToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
		}
		if lines[1] != "u1,one@example.com,pro,admin;curator,," {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if !strings.HasPrefix(lines[3], "u3,,,,unauthorized,") {
			t.Errorf("unexpected failure row: %s", lines[3])
		}
	})

	t.Run("ResolutionsToMarkdown", func(t *testing.T) {
		data, err := ResolutionsToMarkdown(results)
		if err != nil {
			t.Fatalf("ResolutionsToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"**Resolved**: 2",
			"**Failed**: 1",
			"| u1 | one@example.com | pro | admin,curator | ok |",
			"| u2 |  | free | none | ok |",
			"| u3 |  | - | - | unauthorized |",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ResolutionsToText", func(t *testing.T) {
		data, err := ResolutionsToText(results)
		if err != nil {
			t.Fatalf("ResolutionsToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "u1 <one@example.com>: plan=pro roles=admin,curator") {
			t.Errorf("unexpected text output: %s", output)
		}
		if !strings.Contains(output, "u3: error (unauthorized)") {
			t.Errorf("missing failure line: %s", output)
		}
	})

	t.Run("FormatResolutions JSON", func(t *testing.T) {
		data, err := FormatResolutions(nil, FormatJSON)
		if err != nil {
			t.Fatalf("FormatResolutions failed: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected empty array, got %s", data)
		}
	})
}

func TestWriteResolutionReport(t *testing.T) {
	tests := []struct {
		format string
		report string
	}{
		{format: FormatJSON, report: "resolutions.json"},
		{format: FormatCSV, report: "resolutions.csv"},
		{format: FormatMarkdown, report: "resolutions.md"},
		{format: FormatText, report: "resolutions.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "report")

			manifestPath, err := WriteResolutionReport(testResolutions(), tt.format, dir)
			if err != nil {
				t.Fatalf("WriteResolutionReport failed: %v", err)
			}

			th.AssertFileExists(t, filepath.Join(dir, tt.report))

			var manifest Manifest
			if err := json.Unmarshal([]byte(th.MustReadFile(t, manifestPath)), &manifest); err != nil {
				t.Fatalf("invalid manifest: %v", err)
			}
			if manifest.Report != tt.report || manifest.Total != 3 || manifest.Resolved != 2 || manifest.Failed != 1 {
				t.Errorf("unexpected manifest: %+v", manifest)
			}
		})
	}

	t.Run("unsupported format", func(t *testing.T) {
		if _, err := WriteResolutionReport(testResolutions(), "xml", t.TempDir()); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestValidFormat(t *testing.T) {
	for _, f := range Formats {
		if !ValidFormat(f) {
			t.Errorf("expected %s to be valid", f)
		}
	}
	if ValidFormat("yaml") {
		t.Error("expected yaml to be invalid")
	}
}
