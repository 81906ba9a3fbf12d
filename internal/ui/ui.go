package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/shared"
	"github.com/desertthunder/soundshelf/internal/tasks"
	"github.com/desertthunder/soundshelf/internal/usertypes"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	UserListView ViewState = iota
	UserTypesView
	BulkView
	BulkResultView
)

// UserLister loads the users to browse, typically a [repositories.UserRepository].
type UserLister interface {
	List(criteria map[string]any) ([]*models.User, error)
}

// Resolver resolves and evicts cached user types, typically a [usertypes.Resolver].
type Resolver interface {
	All(ctx context.Context, userID string, useCache bool) (*usertypes.UserTypes, error)
	Invalidate(userID string)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	users        UserLister
	resolver     Resolver
	engine       *tasks.Engine
	width        int
	height       int
	userList     list.Model
	ready        bool
	selected     *models.User
	resolved     *typesResolved
	loading      bool
	notice       string
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	bulkOutcome  *bulkComplete
	bulkResult   *tasks.BulkResolveResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, users UserLister, resolver Resolver, engine *tasks.Engine) *Model {
	return &Model{
		ctx:      ctx,
		view:     UserListView,
		users:    users,
		resolver: resolver,
		engine:   engine,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by loading users.
func (m *Model) Init() tea.Cmd {
	return m.loadUsers()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.ready {
			m.userList.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case UserListView:
			return m.handleUserListKeys(msg)
		case UserTypesView:
			return m.handleUserTypesKeys(msg)
		case BulkView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case BulkResultView:
			return m.handleBulkResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgUsersLoaded:
		data := msg.data.(usersLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.users))
		for i, u := range data.users {
			items[i] = userItem{user: u}
		}
		m.userList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.userList.Title = "Users"
		m.userList.SetSize(max(m.width-4, 0), max(m.height-8, 0))
		m.ready = true
		return m, nil

	case MsgTypesResolved:
		data := msg.data.(typesResolved)
		if m.selected == nil || data.userID != m.selected.ID() {
			return m, nil
		}
		m.loading = false
		m.resolved = &data
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgBulkComplete:
		data := msg.data.(bulkComplete)
		m.bulkResult = data.result
		m.err = data.err
		m.progressChan = nil
		m.bulkOutcome = nil
		m.view = BulkResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != BulkResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case UserListView:
		return m.renderUserList()
	case UserTypesView:
		return m.renderUserTypes()
	case BulkView:
		return m.renderBulk()
	case BulkResultView:
		return m.renderBulkResult()
	default:
		return ""
	}
}

func (m *Model) handleUserListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.userList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.userList.SelectedItem().(userItem); ok {
			m.selected = item.user
			m.resolved = nil
			m.notice = ""
			m.view = UserTypesView
			return m, m.resolve(item.user.ID(), false)
		}
		return m, nil
	case key.Matches(msg, m.keys.bulk):
		return m, m.startBulk()
	}

	return m.updateList(msg)
}

func (m *Model) handleUserTypesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = UserListView
		m.selected = nil
		m.resolved = nil
		m.notice = ""
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.notice = ""
		return m, m.resolve(m.selected.ID(), true)
	case key.Matches(msg, m.keys.invalidate):
		m.resolver.Invalidate(m.selected.ID())
		m.notice = "Cache entry dropped; the next lookup goes to the store."
		return m, nil
	}
	return m, nil
}

func (m *Model) handleBulkResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = UserListView
		m.bulkResult = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != UserListView || !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.userList, cmd = m.userList.Update(msg)
	return m, cmd
}

func (m *Model) loadUsers() tea.Cmd {
	return func() tea.Msg {
		users, err := m.users.List(map[string]any{})
		return usersLoadedMsg(users, err)
	}
}

// resolve looks up user types, bypassing the cache when refresh is set.
func (m *Model) resolve(userID string, refresh bool) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		types, err := m.resolver.All(m.ctx, userID, !refresh)
		return typesResolvedMsg(userID, types, refresh, err)
	}
}

func (m *Model) startBulk() tea.Cmd {
	if m.engine == nil || !m.ready {
		return nil
	}

	users := make([]*models.User, 0, len(m.userList.Items()))
	for _, item := range m.userList.Items() {
		if u, ok := item.(userItem); ok {
			users = append(users, u.user)
		}
	}

	m.view = BulkView
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.bulkOutcome = &bulkComplete{}
	progress, outcome := m.progressChan, m.bulkOutcome

	go func() {
		outcome.result, outcome.err = m.engine.BulkResolve(m.ctx, progress, users, tasks.BulkResolveOpts{UseCache: true})
		close(progress)
	}()

	return m.waitForProgress()
}

// waitForProgress relays the next progress update. The outcome is only read once the channel is closed.
func (m *Model) waitForProgress() tea.Cmd {
	progress, outcome := m.progressChan, m.bulkOutcome
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return bulkCompleteMsg(outcome.result, outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderUserList() string {
	if !m.ready {
		return styles.help.Render("Loading users...")
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.bulk, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.userList.View(), helpView)
}

func (m *Model) renderUserTypes() string {
	title := styles.title.Render(fmt.Sprintf("%s <%s>", m.selected.Name(), m.selected.Email()))
	helpKeys := []key.Binding{m.keys.refresh, m.keys.invalidate, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	var body string
	switch {
	case m.loading || m.resolved == nil:
		body = styles.help.Render("Resolving...")
	case m.resolved.err != nil:
		code := shared.CodeOf(m.resolved.err)
		body = styles.err.Render(fmt.Sprintf("Failed (%s): %v", code, m.resolved.err))
	default:
		source := "cache or store"
		if m.resolved.refreshed {
			source = "store (refetched)"
		}
		plan := string(m.resolved.types.PlanTier)
		body = strings.Join([]string{
			styles.label.Render("Plan") + styles.As(plan, planColor(plan)),
			styles.label.Render("Roles") + m.resolved.types.Roles.String(),
			styles.label.Render("Source") + source,
			styles.label.Render("At") + m.resolved.resolvedAt.Format("15:04:05"),
		}, "\n")
	}

	if m.notice != "" {
		body += "\n\n" + styles.warn.Render(m.notice)
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, body, helpView)
}

func (m *Model) renderBulk() string {
	title := styles.title.Render("Resolving User Types")

	phase := "Starting..."
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("%s (%d/%d)", m.progress.Phase, m.progress.Step, m.progress.Total)
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderBulkResult() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Bulk resolution failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.bulkResult == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Resolution Complete")
	info := fmt.Sprintf("\nResolved: %d/%d", m.bulkResult.Resolved, m.bulkResult.Total)

	var failed string
	if m.bulkResult.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to resolve %d users:", m.bulkResult.Failed)))
		for _, res := range m.bulkResult.Results {
			if !res.OK() {
				failed += fmt.Sprintf("\n  • %s (%s)", res.UserID, res.Code)
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
