package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/softgrove/vitrine/internal/museum"
	"github.com/softgrove/vitrine/internal/viewstate"
)

// CursorMarker is the prefix shown on the selected object row.
const CursorMarker = "▸ "

// browseState manages the object list, cursor, and loading/error states
// for the left pane.
type browseState struct {
	objects   []museum.Object
	cursor    int
	loading   bool
	emissions int
	err       error
}

// newBrowseState returns a browseState in the loading state.
func newBrowseState() browseState {
	return browseState{loading: true}
}

// apply folds one listing emission into the browse state. The cursor stays
// on the same object across refreshes when it survives, otherwise it is
// clamped.
func (bs browseState) apply(state viewstate.ListState) browseState {
	prevID := bs.SelectedID()

	// The list holder replays an empty default before the first refresh
	// completes; keep the loading indicator through that first emission.
	bs.emissions++
	if state.Err != nil || len(state.Objects) > 0 || bs.emissions > 1 {
		bs.loading = false
	}
	bs.err = state.Err
	bs.objects = append([]museum.Object(nil), state.Objects...)

	bs.cursor = 0
	for i, obj := range bs.objects {
		if obj.ID == prevID {
			bs.cursor = i
			break
		}
	}
	return bs
}

// handleKey processes cursor movement for the left pane.
func (bs browseState) handleKey(msg tea.KeyMsg) browseState {
	switch msg.String() {
	case "up", "k":
		if len(bs.objects) > 0 {
			bs.cursor--
			if bs.cursor < 0 {
				bs.cursor = len(bs.objects) - 1
			}
		}
	case "down", "j":
		if len(bs.objects) > 0 {
			bs.cursor++
			if bs.cursor >= len(bs.objects) {
				bs.cursor = 0
			}
		}
	}
	return bs
}

// SelectedID returns the object ID at the current cursor position, or -1
// when the list is empty.
func (bs browseState) SelectedID() int {
	if len(bs.objects) == 0 || bs.cursor < 0 || bs.cursor >= len(bs.objects) {
		return -1
	}
	return bs.objects[bs.cursor].ID
}

// View renders the list pane content for the given dimensions.
// spinnerView is the current spinner frame (may be empty when inactive).
func (bs browseState) View(width, height int, spinnerView string) string {
	if bs.loading && bs.err == nil && len(bs.objects) == 0 {
		return fmt.Sprintf("%s Loading catalog...", spinnerView)
	}

	if bs.err != nil {
		msg := errorText.Render(fmt.Sprintf("Error: %s", bs.err))
		return msg + "\n\nPress r to retry"
	}

	if len(bs.objects) == 0 {
		return "Catalog is empty — press r to refresh"
	}

	var b strings.Builder
	for i, obj := range bs.objects {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i == bs.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		line := fmt.Sprintf("#%d %s", obj.ID, obj.DisplayTitle())
		if obj.Artist != "" {
			line += " " + mutedText.Render("("+obj.Artist+")")
		}
		b.WriteString(line)
	}
	return b.String()
}
