package dashboard

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/softgrove/vitrine/internal/viewstate"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// Model is the root Bubble Tea model for the catalog browser.
// It manages a two-pane layout: object list left, detail viewport right.
type Model struct {
	ctx     context.Context
	list    ListSource
	details DetailSource

	focus    Focus
	width    int
	height   int
	viewport viewport.Model
	help     help.Model
	spinner  spinner.Model
	browse   browseState

	listCh <-chan viewstate.ListState

	detail       viewstate.DetailState
	detailCh     <-chan viewstate.DetailState
	detailGen    int
	detailCancel context.CancelFunc
	selected     int
}

// NewModel creates a browser Model subscribed to the given sources.
// Subscriptions are scoped to ctx; cancelling it tears them down.
func NewModel(ctx context.Context, list ListSource, details DetailSource) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		list:     list,
		details:  details,
		focus:    PaneLeft,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		spinner:  s,
		browse:   newBrowseState(),
		listCh:   list.Subscribe(ctx),
		selected: -1,
	}
}

// Init starts the spinner and the listing stream pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForList(m.listCh))
}

// waitForList returns a tea.Cmd that blocks for the next listing emission.
func waitForList(ch <-chan viewstate.ListState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return ListClosedMsg{}
		}
		return ListUpdateMsg{State: state}
	}
}

// waitForDetail returns a tea.Cmd that blocks for the next detail emission
// of the selection identified by gen.
func waitForDetail(ch <-chan viewstate.DetailState, gen int) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return DetailClosedMsg{Gen: gen}
		}
		return DetailUpdateMsg{Gen: gen, State: state}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		_, rightWidth := PaneWidths(msg.Width)
		vpWidth := rightWidth - borderChrome
		if vpWidth < 0 {
			vpWidth = 0
		}
		m.viewport.Width = vpWidth
		m.viewport.Height = m.contentHeight()
		m.viewport.SetContent(renderDetail(m.selected, m.detail))
		return m, nil

	case spinner.TickMsg:
		if !m.browse.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ListUpdateMsg:
		m.browse = m.browse.apply(msg.State)
		next := waitForList(m.listCh)
		if id := m.browse.SelectedID(); id != m.selected {
			var watch tea.Cmd
			m, watch = m.watchSelection(id)
			return m, tea.Batch(next, watch)
		}
		return m, next

	case ListClosedMsg:
		return m, tea.Quit

	case DetailUpdateMsg:
		if msg.Gen != m.detailGen {
			return m, nil // stale stream, selection moved on
		}
		m.detail = msg.State
		m.viewport.SetContent(renderDetail(m.selected, m.detail))
		return m, waitForDetail(m.detailCh, m.detailGen)

	case DetailClosedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes key messages with pane-aware routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.detailCancel != nil {
			m.detailCancel()
		}
		return m, tea.Quit

	case "tab":
		if m.focus == PaneLeft {
			m.focus = PaneRight
		} else {
			m.focus = PaneLeft
		}
		return m, nil

	case "r":
		m.browse.loading = true
		m.browse.err = nil
		list := m.list
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			list.Refresh()
			return nil
		})
	}

	if m.focus == PaneRight {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.browse = m.browse.handleKey(msg)
	if id := m.browse.SelectedID(); id != m.selected {
		return m.watchSelection(id)
	}
	return m, nil
}

// watchSelection retargets the detail stream at the newly selected object.
// The previous stream is cancelled and its late emissions are dropped by
// generation check.
func (m Model) watchSelection(id int) (Model, tea.Cmd) {
	if m.detailCancel != nil {
		m.detailCancel()
		m.detailCancel = nil
	}
	m.selected = id
	m.detail = viewstate.DetailState{}
	m.detailGen++

	if id < 0 {
		m.detailCh = nil
		m.viewport.SetContent(renderDetail(m.selected, m.detail))
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.detailCancel = cancel
	m.detailCh = m.details.Watch(ctx, id)
	m.viewport.SetContent(renderDetail(m.selected, m.detail))
	return m, waitForDetail(m.detailCh, m.detailGen)
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - helpBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the two-pane layout with help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	var leftStyle, rightStyle lipgloss.Style
	if m.focus == PaneLeft {
		leftStyle = FocusedBorder()
		rightStyle = UnfocusedBorder()
	} else {
		leftStyle = UnfocusedBorder()
		rightStyle = FocusedBorder()
	}

	leftStyle = leftStyle.
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle = rightStyle.
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	leftPane := leftStyle.Render(m.browse.View(leftWidth-borderChrome, contentHeight, m.spinner.View()))
	rightPane := rightStyle.Render(m.viewport.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	helpView := m.help.View(BrowseKeyMap())

	return lipgloss.JoinVertical(lipgloss.Left, panes, helpView)
}
