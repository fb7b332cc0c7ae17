package maillist

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvu/mailquar/internal/keys"
	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/quarantine"
	"github.com/nvu/mailquar/internal/theme"
)

// fetchTimeout bounds one list fetch at the transport level; the
// controller layer itself imposes no timeout.
const fetchTimeout = 30 * time.Second

// LoadedMsg is sent when a fetch cycle completes. Stale completions
// (discarded by the controller) still produce the message so the view
// can refresh its spinner state, with Applied false.
type LoadedMsg struct {
	Applied bool
}

// PreviewMailMsg is sent when the user selects a mail row to preview.
type PreviewMailMsg struct {
	ID string
}

// ActionResultMsg is sent when a disposition action issued from the
// list completes; the parent shows the error as a transient notice.
type ActionResultMsg struct {
	ID     string
	Action model.MailAction
	Err    error
}

// Model is the quarantine list view component.
type Model struct {
	list       list.Model
	ctrl       *quarantine.Controller
	dispatcher *quarantine.Dispatcher
	keys       *keys.KeyMap
	width      int
	height     int
}

// New creates a new quarantine list model.
func New(ctrl *quarantine.Controller, dispatcher *quarantine.Dispatcher, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, EntryDelegate{}, width, height-2)
	l.Title = "Quarantine"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:       l,
		ctrl:       ctrl,
		dispatcher: dispatcher,
		keys:       k,
		width:      width,
		height:     height,
	}
}

// Init returns a command that loads the initial quarantine set.
func (m Model) Init() tea.Cmd {
	return m.FetchCmd()
}

// FetchCmd runs one fetch cycle against the gateway. The controller
// guards against out-of-order completions, so overlapping commands
// are safe.
func (m Model) FetchCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		applied := ctrl.Fetch(ctx)
		return LoadedMsg{Applied: applied}
	}
}

// SetParams installs a new date range and returns the fetch command
// when the range actually changed; an equal value fetches nothing.
func (m Model) SetParams(params model.QueryParams) tea.Cmd {
	if !m.ctrl.SetParams(params) {
		return nil
	}
	return m.FetchCmd()
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if !msg.Applied {
			return m, nil
		}
		state := m.ctrl.State()
		if state.Phase != model.Loaded {
			return m, m.list.SetItems(nil)
		}
		items := make([]list.Item, len(state.Data))
		for i, entry := range state.Data {
			items[i] = EntryItem{Entry: entry}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes selection and disposition keys; everything else
// goes to the embedded list for navigation.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		mail, ok := m.selectedMail()
		if !ok {
			return m, nil
		}
		id := mail.ID
		return m, func() tea.Msg {
			return PreviewMailMsg{ID: id}
		}

	case key.Matches(msg, m.keys.Deliver):
		return m.actionOnSelected(model.ActionDeliver)

	case key.Matches(msg, m.keys.Delete):
		return m.actionOnSelected(model.ActionDelete)

	case key.Matches(msg, m.keys.Whitelist):
		return m.actionOnSelected(model.ActionWhitelist)

	case key.Matches(msg, m.keys.Blacklist):
		return m.actionOnSelected(model.ActionBlacklist)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// actionOnSelected dispatches a disposition action for the focused
// mail row. Heading rows ignore action keys.
func (m Model) actionOnSelected(action model.MailAction) (Model, tea.Cmd) {
	mail, ok := m.selectedMail()
	if !ok {
		return m, nil
	}

	dispatcher := m.dispatcher
	id := mail.ID
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		err := dispatcher.Dispatch(ctx, id, action)
		return ActionResultMsg{ID: id, Action: action, Err: err}
	}
}

// selectedMail returns the mail under the cursor, if the cursor is on
// a mail row.
func (m Model) selectedMail() (*model.Mail, bool) {
	item, ok := m.list.SelectedItem().(EntryItem)
	if !ok || item.Entry.Mail == nil {
		return nil, false
	}
	return item.Entry.Mail, true
}

// View renders the list view, or the load/error/empty states in its
// place. A failed fetch replaces the list entirely; stale data never
// shows next to an error.
func (m Model) View() string {
	state := m.ctrl.State()

	switch state.Phase {
	case model.Failed:
		return m.centered(theme.ErrorStyle.Render(
			"Cannot load quarantine:\n" + state.Err.Error(),
		))
	case model.Loaded:
		if len(state.Data) == 0 {
			return m.centered("No mail in quarantine for this date range.")
		}
		return m.list.View()
	case model.Loading:
		// A refresh of an already loaded list keeps the rows on screen.
		if len(state.Data) > 0 {
			return m.list.View()
		}
		return m.centered("Loading…")
	default:
		return m.centered("Loading…")
	}
}

func (m Model) centered(content string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
