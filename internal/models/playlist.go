package models

import (
	"fmt"
	"time"
)

// MaxPlaylistNameLength bounds playlist names.
const MaxPlaylistNameLength = 100

// Playlist is an ordered collection of tracks owned by a user.
type Playlist struct {
	entity
	userID      string
	name        string
	description string
	public      bool
	trackCount  int
}

// NewPlaylist creates a [Playlist] owned by userID.
func NewPlaylist(sequence int, userID, name, description string, public bool) *Playlist {
	return &Playlist{
		entity:      newEntity(sequence),
		userID:      userID,
		name:        name,
		description: description,
		public:      public,
	}
}

func (p *Playlist) UserID() string      { return p.userID }
func (p *Playlist) Name() string        { return p.name }
func (p *Playlist) Description() string { return p.description }
func (p *Playlist) Public() bool        { return p.public }
func (p *Playlist) TrackCount() int     { return p.trackCount }

func (p *Playlist) SetName(name string)        { p.name = name }
func (p *Playlist) SetDescription(desc string) { p.description = desc }
func (p *Playlist) SetPublic(public bool)      { p.public = public }
func (p *Playlist) SetTrackCount(n int)        { p.trackCount = n }

// Validate checks required fields and the name length.
func (p *Playlist) Validate() error {
	if p.id == "" {
		return fmt.Errorf("playlist ID is required")
	}
	if p.userID == "" {
		return fmt.Errorf("playlist owner is required")
	}
	if p.name == "" {
		return fmt.Errorf("playlist name is required")
	}
	if len(p.name) > MaxPlaylistNameLength {
		return fmt.Errorf("playlist name exceeds %d characters", MaxPlaylistNameLength)
	}
	return nil
}

// PlaylistTrack places a track at a 1-based position within a playlist.
type PlaylistTrack struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id"`
	TrackID    string    `json:"track_id"`
	Position   int       `json:"position"`
	AddedAt    time.Time `json:"added_at"`
	Track      TrackInfo `json:"track"`
}
