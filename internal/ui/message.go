package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundshelf/internal/models"
	"github.com/desertthunder/soundshelf/internal/tasks"
	"github.com/desertthunder/soundshelf/internal/usertypes"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgUsersLoaded MsgKind = iota
	MsgTypesResolved
	MsgProgressUpdate
	MsgBulkComplete
)

type usersLoaded struct {
	users []*models.User
	err   error
}

type typesResolved struct {
	userID     string
	types      *usertypes.UserTypes
	refreshed  bool
	resolvedAt time.Time
	err        error
}

type bulkComplete struct {
	result *tasks.BulkResolveResult
	err    error
}

// usersLoadedMsg is the constructor for [MsgUsersLoaded]
func usersLoadedMsg(users []*models.User, err error) Msg {
	return Msg{kind: MsgUsersLoaded, data: usersLoaded{users: users, err: err}}
}

// typesResolvedMsg is the constructor for [MsgTypesResolved]
func typesResolvedMsg(userID string, types *usertypes.UserTypes, refreshed bool, err error) Msg {
	return Msg{
		kind: MsgTypesResolved,
		data: typesResolved{userID: userID, types: types, refreshed: refreshed, resolvedAt: time.Now(), err: err},
	}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// bulkCompleteMsg is the constructor for [MsgBulkComplete]
func bulkCompleteMsg(result *tasks.BulkResolveResult, err error) Msg {
	return Msg{kind: MsgBulkComplete, data: bulkComplete{result: result, err: err}}
}
