// Package dashboard implements the two-pane catalog browser TUI: object
// list on the left, object detail on the right.
package dashboard

import (
	"context"

	"github.com/softgrove/vitrine/internal/viewstate"
)

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // Left pane (object list) has focus.
	PaneRight              // Right pane (detail viewport) has focus.
)

// --- Consumer-side interfaces ---

// ListSource is the shared listing stream the dashboard subscribes to.
type ListSource interface {
	Subscribe(ctx context.Context) <-chan viewstate.ListState
	Refresh()
}

// DetailSource provides per-object detail streams.
type DetailSource interface {
	Watch(ctx context.Context, id int) <-chan viewstate.DetailState
}

// --- tea.Msg types ---

// ListUpdateMsg carries one emission of the listing stream.
type ListUpdateMsg struct {
	State viewstate.ListState
}

// ListClosedMsg signals the listing stream has closed; the dashboard has
// nothing left to show.
type ListClosedMsg struct{}

// DetailUpdateMsg carries one emission of a detail stream. Gen identifies
// the selection that opened the stream so stale emissions can be dropped
// after the cursor has moved on.
type DetailUpdateMsg struct {
	Gen   int
	State viewstate.DetailState
}

// DetailClosedMsg signals a detail stream has closed.
type DetailClosedMsg struct {
	Gen int
}
