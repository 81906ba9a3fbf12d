package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"github.com/desertthunder/soundshelf/internal/tasks"
	"github.com/desertthunder/soundshelf/internal/usertypes"
)

type stubUsers struct {
	users []*models.User
	err   error
}

func (s *stubUsers) List(map[string]any) ([]*models.User, error) { return s.users, s.err }

type stubResolver struct {
	mu          sync.Mutex
	useCache    []bool
	invalidated []string
	err         error
}

func (s *stubResolver) All(ctx context.Context, userID string, useCache bool) (*usertypes.UserTypes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useCache = append(s.useCache, useCache)
	if s.err != nil {
		return nil, s.err
	}
	return &usertypes.UserTypes{PlanTier: models.PlanPro, Roles: models.NewRoleSet(models.RoleCurator)}, nil
}

func (s *stubResolver) PlanTier(ctx context.Context, userID string, useCache bool) (models.PlanTier, error) {
	return models.PlanPro, nil
}

func (s *stubResolver) Invalidate(userID string) {
	s.invalidated = append(s.invalidated, userID)
}

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func newTestModel(t *testing.T, resolver *stubResolver) *Model {
	t.Helper()
	alice := models.NewUser(1, "alice@example.com", "Alice")
	alice.SetID("u1")
	bob := models.NewUser(2, "bob@example.com", "Bob")
	bob.SetID("u2")

	m := NewModel(context.Background(), &stubUsers{users: []*models.User{alice, bob}}, resolver, tasks.NewEngine(resolver, nil, nil))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(m.Init()())
	if !m.ready {
		t.Fatal("expected users to be loaded")
	}
	return m
}

// run executes cmd and feeds its message back into the model.
func run(m *Model, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := m.Update(cmd())
	return next
}

func TestModel(t *testing.T) {
	t.Run("resolve selected user", func(t *testing.T) {
		resolver := &stubResolver{}
		m := newTestModel(t, resolver)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != UserTypesView || m.selected.ID() != "u1" {
			t.Fatalf("expected user types view for u1, got view %d", m.view)
		}
		if !strings.Contains(m.View(), "Resolving") {
			t.Errorf("expected loading state, got %q", m.View())
		}

		run(m, cmd)
		view := m.View()
		if !strings.Contains(view, "pro") || !strings.Contains(view, "curator") {
			t.Errorf("expected resolved types in view, got %q", view)
		}
		if len(resolver.useCache) != 1 || !resolver.useCache[0] {
			t.Errorf("expected cached lookup, got %v", resolver.useCache)
		}
	})

	t.Run("refetch and invalidate", func(t *testing.T) {
		resolver := &stubResolver{}
		m := newTestModel(t, resolver)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(m, cmd)

		_, cmd = m.Update(keyRune('r'))
		run(m, cmd)
		if len(resolver.useCache) != 2 || resolver.useCache[1] {
			t.Errorf("expected refetch to bypass the cache, got %v", resolver.useCache)
		}
		if !strings.Contains(m.View(), "refetched") {
			t.Errorf("expected refetched source, got %q", m.View())
		}

		m.Update(keyRune('i'))
		if len(resolver.invalidated) != 1 || resolver.invalidated[0] != "u1" {
			t.Errorf("expected u1 to be invalidated, got %v", resolver.invalidated)
		}
		if !strings.Contains(m.View(), "Cache entry dropped") {
			t.Errorf("expected invalidation notice, got %q", m.View())
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != UserListView || m.selected != nil {
			t.Errorf("expected to return to the user list")
		}
	})

	t.Run("resolution failure", func(t *testing.T) {
		resolver := &stubResolver{err: shared.NewError(shared.CodeUnauthorized, "denied", nil)}
		m := newTestModel(t, resolver)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(m, cmd)
		if !strings.Contains(m.View(), "Failed (unauthorized)") {
			t.Errorf("expected failure code in view, got %q", m.View())
		}
	})

	t.Run("stale resolution ignored", func(t *testing.T) {
		m := newTestModel(t, &stubResolver{})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		run(m, cmd)
		if m.resolved != nil {
			t.Error("expected result for a deselected user to be dropped")
		}
	})

	t.Run("bulk resolve", func(t *testing.T) {
		m := newTestModel(t, &stubResolver{})

		_, cmd := m.Update(keyRune('b'))
		if m.view != BulkView {
			t.Fatalf("expected bulk view, got %d", m.view)
		}
		for cmd != nil {
			cmd = run(m, cmd)
		}

		if m.view != BulkResultView || m.bulkResult == nil {
			t.Fatalf("expected bulk result view, got %d", m.view)
		}
		if m.bulkResult.Resolved != 2 {
			t.Errorf("expected 2 resolved, got %d", m.bulkResult.Resolved)
		}
		if !strings.Contains(m.View(), "Resolved: 2/2") {
			t.Errorf("unexpected result view %q", m.View())
		}
	})

	t.Run("load failure", func(t *testing.T) {
		m := NewModel(context.Background(), &stubUsers{err: errors.New("database is locked")}, &stubResolver{}, nil)
		m.Update(m.Init()())
		if !strings.Contains(m.View(), "database is locked") {
			t.Errorf("expected load error in view, got %q", m.View())
		}
	})
}
