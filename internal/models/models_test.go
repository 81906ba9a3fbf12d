package models

import (
	"testing"
)

func TestUserValidate(t *testing.T) {
	tc := []struct {
		name    string
		id      string
		email   string
		user    string
		wantErr bool
	}{
		{name: "valid", id: "u1", email: "ana@example.com", user: "Ana"},
		{name: "missing id", email: "ana@example.com", user: "Ana", wantErr: true},
		{name: "missing email", id: "u1", user: "Ana", wantErr: true},
		{name: "malformed email", id: "u1", email: "not-an-email", user: "Ana", wantErr: true},
		{name: "missing name", id: "u1", email: "ana@example.com", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUser(1, tt.email, tt.user)
			u.SetID(tt.id)
			if err := u.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlaylistValidate(t *testing.T) {
	p := NewPlaylist(1, "u1", "Road Trip", "", false)
	p.SetID("p1")
	if err := p.Validate(); err != nil {
		t.Fatalf("expected valid playlist: %v", err)
	}

	long := make([]byte, MaxPlaylistNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	p.SetName(string(long))
	if err := p.Validate(); err == nil {
		t.Error("expected error for overlong name")
	}
}

func TestTrackValidate(t *testing.T) {
	tr := NewTrack(1, "u1", TrackInfo{Title: "Intro", Artist: "Band", Duration: -1})
	tr.SetID("t1")
	if err := tr.Validate(); err == nil {
		t.Error("expected error for negative duration")
	}

	tr.SetInfo(TrackInfo{Title: "Intro", Artist: "Band", Duration: 61})
	if err := tr.Validate(); err != nil {
		t.Errorf("expected valid track: %v", err)
	}
}

func TestParsePlanTier(t *testing.T) {
	for _, s := range []string{"free", "PLUS", " pro "} {
		if _, err := ParsePlanTier(s); err != nil {
			t.Errorf("ParsePlanTier(%q) unexpected error: %v", s, err)
		}
	}

	if _, err := ParsePlanTier("platinum"); err == nil {
		t.Error("expected error for unknown tier")
	}

	if PlanFree.Paid() || !PlanPro.Paid() {
		t.Error("Paid() returned an unexpected result")
	}
}

func TestRoleSet(t *testing.T) {
	set := NewRoleSet(RoleModerator, RoleAdmin, RoleModerator)

	if len(set) != 2 {
		t.Fatalf("expected duplicates to be dropped, got %v", set)
	}
	if set[0] != RoleAdmin || set[1] != RoleModerator {
		t.Errorf("expected sorted set, got %v", set)
	}
	if !set.Has(RoleAdmin) || set.Has(RoleCurator) {
		t.Error("Has returned an unexpected result")
	}

	clone := set.Clone()
	clone[0] = RoleCurator
	if set[0] != RoleAdmin {
		t.Error("Clone should not share memory")
	}

	if NewRoleSet().String() != "none" {
		t.Errorf("empty set String() = %q", NewRoleSet().String())
	}
	if set.String() != "admin,moderator" {
		t.Errorf("String() = %q", set.String())
	}

	if _, err := ParseRole("janitor"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestRowString(t *testing.T) {
	row := Row{"plan": []byte("pro"), "role": "admin", "n": int64(1)}

	if v, ok := row.String("plan"); !ok || v != "pro" {
		t.Errorf("expected bytes to convert, got %q %v", v, ok)
	}
	if v, ok := row.String("role"); !ok || v != "admin" {
		t.Errorf("expected string column, got %q %v", v, ok)
	}
	if _, ok := row.String("n"); ok {
		t.Error("expected non-text column to report false")
	}
	if _, ok := row.String("missing"); ok {
		t.Error("expected missing column to report false")
	}
}
