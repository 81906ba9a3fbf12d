// package formatter renders playlists and bulk user-type resolutions to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
)

// Supported output formats
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists every supported format name.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ValidFormat reports whether name is a supported format.
func ValidFormat(name string) bool {
	return slices.Contains(Formats, name)
}

// PlaylistDocument is the serialisable form of a playlist and its ordered tracks.
type PlaylistDocument struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Public      bool                   `json:"public"`
	TrackCount  int                    `json:"track_count"`
	Duration    int                    `json:"duration"`
	Tracks      []models.PlaylistTrack `json:"tracks"`
}

// NewPlaylistDocument builds a [PlaylistDocument] from a stored playlist and its tracks.
func NewPlaylistDocument(p *models.Playlist, tracks []models.PlaylistTrack) *PlaylistDocument {
	doc := &PlaylistDocument{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Public:      p.Public(),
		TrackCount:  len(tracks),
		Tracks:      tracks,
	}
	if doc.Tracks == nil {
		doc.Tracks = []models.PlaylistTrack{}
	}
	for _, pt := range tracks {
		doc.Duration += pt.Track.Duration
	}
	return doc
}

// PlaylistToCSV converts a playlist to CSV format with columns: Position, Title, Artist, Album, Duration, ISRC
func PlaylistToCSV(doc *PlaylistDocument) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Album", "Duration", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, pt := range doc.Tracks {
		record := []string{
			strconv.Itoa(pt.Position),
			pt.Track.Title,
			pt.Track.Artist,
			pt.Track.Album,
			strconv.Itoa(pt.Track.Duration),
			pt.Track.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistToMarkdown converts a playlist to Markdown format
func PlaylistToMarkdown(doc *PlaylistDocument) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", doc.Name))

	if doc.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", doc.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", doc.TrackCount))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n", shared.FormatDuration(doc.Duration)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n\n", shared.VisibilityString(doc.Public)))

	buf.WriteString("## Tracks\n\n")
	for _, pt := range doc.Tracks {
		albumPart := ""
		if pt.Track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", pt.Track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", pt.Position, pt.Track.Artist, pt.Track.Title, albumPart, shared.FormatDuration(pt.Track.Duration)))
	}

	return buf.Bytes(), nil
}

// PlaylistToText converts a playlist to plain text format
func PlaylistToText(doc *PlaylistDocument) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", doc.Name))
	if doc.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", doc.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", doc.TrackCount))

	for _, pt := range doc.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", pt.Position, pt.Track.Artist, pt.Track.Title))
	}

	return buf.Bytes(), nil
}

// FormatPlaylist renders doc in the named format.
func FormatPlaylist(doc *PlaylistDocument, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return PlaylistToCSV(doc)
	case FormatMarkdown:
		return PlaylistToMarkdown(doc)
	case FormatText:
		return PlaylistToText(doc)
	case FormatJSON, "":
		return shared.MarshalJSON(doc, true)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
}

// ResolutionsToCSV converts bulk resolution results to CSV with columns: User, Email, Plan, Roles, Code, Error
func ResolutionsToCSV(results []models.Resolution) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"User", "Email", "Plan", "Roles", "Code", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range results {
		record := []string{
			r.UserID,
			r.Email,
			string(r.PlanTier),
			strings.Join(r.Roles.Strings(), ";"),
			r.Code,
			r.Error,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ResolutionsToMarkdown converts bulk resolution results to a Markdown table
func ResolutionsToMarkdown(results []models.Resolution) ([]byte, error) {
	var buf bytes.Buffer

	ok, failed := countResolutions(results)
	buf.WriteString("# User Types\n\n")
	buf.WriteString(fmt.Sprintf("**Resolved**: %d\n", ok))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", failed))

	buf.WriteString("| User | Email | Plan | Roles | Status |\n")
	buf.WriteString("|------|-------|------|-------|--------|\n")
	for _, r := range results {
		status := "ok"
		plan, roles := string(r.PlanTier), r.Roles.String()
		if !r.OK() {
			status = r.Code
			plan, roles = "-", "-"
		}
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n", r.UserID, r.Email, plan, roles, status))
	}

	return buf.Bytes(), nil
}

// ResolutionsToText converts bulk resolution results to plain text, one user per line
func ResolutionsToText(results []models.Resolution) ([]byte, error) {
	var buf bytes.Buffer

	for _, r := range results {
		name := r.UserID
		if r.Email != "" {
			name = fmt.Sprintf("%s <%s>", r.UserID, r.Email)
		}
		if r.OK() {
			buf.WriteString(fmt.Sprintf("%s: plan=%s roles=%s\n", name, r.PlanTier, r.Roles))
		} else {
			buf.WriteString(fmt.Sprintf("%s: error (%s) %s\n", name, r.Code, r.Error))
		}
	}

	return buf.Bytes(), nil
}

// FormatResolutions renders bulk resolution results in the named format.
func FormatResolutions(results []models.Resolution, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ResolutionsToCSV(results)
	case FormatMarkdown:
		return ResolutionsToMarkdown(results)
	case FormatText:
		return ResolutionsToText(results)
	case FormatJSON, "":
		if results == nil {
			results = []models.Resolution{}
		}
		return shared.MarshalJSON(results, true)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
}

// Manifest summarises a bulk resolution written to disk.
type Manifest struct {
	Format   string `json:"format"`
	Report   string `json:"report"`
	Total    int    `json:"total"`
	Resolved int    `json:"resolved"`
	Failed   int    `json:"failed"`
}

// WriteResolutionReport writes results to dir as resolutions.{ext} alongside a manifest.json.
//
// Returns the path of the manifest.
func WriteResolutionReport(results []models.Resolution, format, dir string) (string, error) {
	if format == "" {
		format = FormatJSON
	}

	data, err := FormatResolutions(results, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	report := filepath.Join(dir, "resolutions."+extension(format))
	if err := os.WriteFile(report, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	ok, failed := countResolutions(results)
	manifest, err := shared.MarshalJSON(Manifest{
		Format:   format,
		Report:   filepath.Base(report),
		Total:    len(results),
		Resolved: ok,
		Failed:   failed,
	}, true)
	if err != nil {
		return "", fmt.Errorf("failed to generate manifest: %w", err)
	}

	manifestPath := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(manifestPath, manifest, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return manifestPath, nil
}

func extension(format string) string {
	switch format {
	case FormatMarkdown:
		return "md"
	default:
		return format
	}
}

func countResolutions(results []models.Resolution) (ok, failed int) {
	for _, r := range results {
		if r.OK() {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
