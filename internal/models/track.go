package models

import "fmt"

// Track is an audio track uploaded by a user.
type Track struct {
	entity
	userID   string
	title    string
	artist   string
	album    string
	duration int // seconds
	isrc     string
	audioURL string
}

// TrackInfo holds the descriptive fields of a [Track].
type TrackInfo struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration"`
	ISRC     string `json:"isrc,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// NewTrack creates a [Track] owned by userID.
func NewTrack(sequence int, userID string, info TrackInfo) *Track {
	return &Track{
		entity:   newEntity(sequence),
		userID:   userID,
		title:    info.Title,
		artist:   info.Artist,
		album:    info.Album,
		duration: info.Duration,
		isrc:     info.ISRC,
		audioURL: info.AudioURL,
	}
}

func (t *Track) UserID() string   { return t.userID }
func (t *Track) Title() string    { return t.title }
func (t *Track) Artist() string   { return t.artist }
func (t *Track) Album() string    { return t.album }
func (t *Track) Duration() int    { return t.duration }
func (t *Track) ISRC() string     { return t.isrc }
func (t *Track) AudioURL() string { return t.audioURL }

// Info returns the descriptive fields of the track.
func (t *Track) Info() TrackInfo {
	return TrackInfo{
		Title:    t.title,
		Artist:   t.artist,
		Album:    t.album,
		Duration: t.duration,
		ISRC:     t.isrc,
		AudioURL: t.audioURL,
	}
}

// SetInfo replaces the descriptive fields of the track.
func (t *Track) SetInfo(info TrackInfo) {
	t.title = info.Title
	t.artist = info.Artist
	t.album = info.Album
	t.duration = info.Duration
	t.isrc = info.ISRC
	t.audioURL = info.AudioURL
}

// Validate checks required fields.
func (t *Track) Validate() error {
	if t.id == "" {
		return fmt.Errorf("track ID is required")
	}
	if t.userID == "" {
		return fmt.Errorf("track owner is required")
	}
	if t.title == "" {
		return fmt.Errorf("track title is required")
	}
	if t.artist == "" {
		return fmt.Errorf("track artist is required")
	}
	if t.duration < 0 {
		return fmt.Errorf("track duration must not be negative")
	}
	return nil
}
