// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI browses the signed-in user's movie lists:
//  1. [ListsView] : Browse lists, create (c), rename (r) or delete (d) them
//  2. [ItemsView] : Browse the movies of one list, newest first, and remove them (d)
//  3. [InputView] : Enter a name for a new or renamed list
//  4. [ConfirmView] : Confirm a deletion
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Every mutation is followed by a fresh read so the screen only shows what the store holds.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
