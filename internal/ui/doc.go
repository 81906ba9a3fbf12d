// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is an inspector for resolved user types:
//  1. [UserListView] : Browse and filter users
//  2. [UserTypesView] : Show a user's plan tier and roles, refetch them or drop them from the cache
//  3. [BulkView] : Monitor real-time progress while every listed user is resolved
//  4. [BulkResultView] : Display resolved and failed counts with failure codes
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the tasks Engine, providing non-blocking status reporting during bulk runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, i, b, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
