package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nvu/mailquar/internal/keys"
	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/quarantine"
	"github.com/nvu/mailquar/internal/reload"
	"github.com/nvu/mailquar/internal/session"
	"github.com/nvu/mailquar/internal/theme"
	"github.com/nvu/mailquar/internal/ui"
	"github.com/nvu/mailquar/internal/ui/daterange"
	"github.com/nvu/mailquar/internal/ui/help"
	"github.com/nvu/mailquar/internal/ui/login"
	"github.com/nvu/mailquar/internal/ui/maillist"
	"github.com/nvu/mailquar/internal/ui/preview"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewList
	ViewPreview
	ViewDateRange
	ViewHelp
)

// reloadMsg is delivered when the reload coordinator fires; the list
// re-fetches unconditionally.
type reloadMsg struct {
	version int
}

// sessionMsg is delivered on a logged-in transition of the session store.
type sessionMsg struct {
	loggedIn bool
}

// ticketLoginMsg carries the outcome of the one-time ticket exchange.
type ticketLoginMsg struct {
	err error
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the bridges between the core controllers and the event loop.
type Model struct {
	cfg        *model.AppConfig
	layout     ui.Layout
	keys       *keys.KeyMap
	session    *session.Store
	gateway    *quarantine.Gateway
	coord      *reload.Coordinator
	ctrl       *quarantine.Controller
	dispatcher *quarantine.Dispatcher
	log        *zap.Logger

	currentView ViewState
	mailList    maillist.Model
	previewView preview.Model
	loginView   login.Model
	dateDialog  daterange.Model
	helpView    help.Model

	// ticket holds a pending one-time login from the entry URL.
	ticket *session.TicketLogin

	reloadCh  chan int
	sessionCh chan bool

	notice string
	ready  bool
}

// New creates the root application model and wires the core components
// to the shared reload coordinator.
func New(
	cfg *model.AppConfig,
	sess *session.Store,
	gateway *quarantine.Gateway,
	coord *reload.Coordinator,
	ticket *session.TicketLogin,
	log *zap.Logger,
) *Model {
	if log == nil {
		log = zap.NewNop()
	}

	m := &Model{
		cfg:       cfg,
		keys:      keys.DefaultKeyMap(),
		session:   sess,
		gateway:   gateway,
		coord:     coord,
		log:       log,
		ticket:    ticket,
		reloadCh:  make(chan int, 16),
		sessionCh: make(chan bool, 16),
	}

	// The controller subscribes for its lifetime; bumps are forwarded
	// into the event loop without blocking the bumper.
	m.ctrl = quarantine.NewController(gateway, coord, func() {
		select {
		case m.reloadCh <- coord.Version():
		default:
		}
	})
	m.dispatcher = quarantine.NewDispatcher(gateway, coord, log)

	sess.Subscribe(func(loggedIn bool) {
		select {
		case m.sessionCh <- loggedIn:
		default:
		}
	})

	m.mailList = maillist.New(m.ctrl, m.dispatcher, m.keys, 80, 24)
	m.loginView = login.New(sess, cfg.Session.DefaultRealm, 80, 24)
	m.helpView = help.New(m.keys, 80, 24)

	if sess.LoggedIn() {
		m.currentView = ViewList
	} else {
		m.currentView = ViewLogin
	}

	return m
}

// Init starts the coordinator/session bridges and either the ticket
// auto-login or the first list fetch.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitReload(), m.waitSession()}

	switch {
	case m.currentView == ViewList:
		m.session.StartRefresh()
		cmds = append(cmds, m.mailList.Init())
	case m.ticket != nil:
		cmds = append(cmds, m.ticketLoginCmd())
	default:
		cmds = append(cmds, m.loginView.Init())
	}

	return tea.Batch(cmds...)
}

// waitReload returns a command that waits for the next coordinator bump.
func (m *Model) waitReload() tea.Cmd {
	ch := m.reloadCh
	return func() tea.Msg {
		return reloadMsg{version: <-ch}
	}
}

// waitSession returns a command that waits for the next session transition.
func (m *Model) waitSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		return sessionMsg{loggedIn: <-ch}
	}
}

// ticketLoginCmd exchanges the one-time ticket from the entry URL.
func (m *Model) ticketLoginCmd() tea.Cmd {
	sess := m.session
	ticket := *m.ticket
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return ticketLoginMsg{err: sess.LoginWithTicket(ctx, ticket)}
	}
}

// Update handles messages and dispatches to the active view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.mailList.SetSize(w, h)
		m.loginView.SetSize(w, h)
		m.dateDialog.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// The preview is constructed per selection; before the first
		// openPreview it is a zero value that must not be rendered.
		if m.currentView == ViewPreview {
			m.previewView.SetSize(w, h)
		}
		return m.updateActiveView(msg)

	case reloadMsg:
		// The quarantine set changed somewhere; re-fetch regardless of
		// whether params changed, and keep listening.
		return m, tea.Batch(m.mailList.FetchCmd(), m.waitReload())

	case sessionMsg:
		return m.onSessionChange(msg.loggedIn)

	case ticketLoginMsg:
		if msg.err != nil {
			// Non-fatal: fall back to the interactive login form.
			m.notice = "Ticket login failed: " + msg.err.Error()
			m.currentView = ViewLogin
			return m, m.loginView.Init()
		}
		// Success arrives through the session observer as well.
		return m, nil

	case login.LoggedInMsg:
		// View switch happens in onSessionChange; nothing more here.
		return m, nil

	case maillist.LoadedMsg:
		// Fetch completions rebuild the list even while another view is
		// active, so navigating back never shows rows the server no
		// longer has.
		var cmd tea.Cmd
		m.mailList, cmd = m.mailList.Update(msg)
		return m, cmd

	case maillist.PreviewMailMsg:
		return m.openPreview(msg.ID)

	case maillist.ActionResultMsg:
		if msg.Err != nil {
			m.notice = fmt.Sprintf("%s failed: %v", msg.Action.Label(), msg.Err)
		} else {
			m.notice = fmt.Sprintf("%s: %s", msg.Action.Label(), msg.ID)
		}
		return m, nil

	case preview.ActionDoneMsg:
		if msg.Err == nil {
			m.notice = msg.Action.Label() + " done"
		}
		var cmd tea.Cmd
		m.previewView, cmd = m.previewView.Update(msg)
		return m, cmd

	case preview.BackMsg:
		m.currentView = ViewList
		return m, nil

	case preview.OpenContentMsg:
		return m, openExternal(msg.URL)

	case daterange.AppliedMsg:
		m.currentView = ViewList
		return m, m.mailList.SetParams(msg.Params)

	case daterange.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// onSessionChange routes a logged-in transition.
func (m *Model) onSessionChange(loggedIn bool) (tea.Model, tea.Cmd) {
	if !loggedIn {
		m.session.StopRefresh()
		m.loginView = login.New(m.session, m.cfg.Session.DefaultRealm,
			m.layout.ContentWidth(), m.layout.ContentHeight())
		m.currentView = ViewLogin
		m.notice = ""
		return m, tea.Batch(m.loginView.Init(), m.waitSession())
	}

	// A completed login drops the one-time ticket and lands on the
	// root view, the analogue of replacing the entry URL.
	m.ticket = nil
	m.session.ConsumeRedirect()
	m.session.StartRefresh()
	m.currentView = ViewList
	m.notice = ""
	return m, tea.Batch(m.mailList.FetchCmd(), m.waitSession())
}

// openPreview switches to the preview view for the given mail id. The
// entries stay available during a refresh, so selection works in the
// Loading phase too.
func (m *Model) openPreview(id string) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()
	for _, entry := range state.Data {
		if entry.Mail != nil && entry.Mail.ID == id {
			ctrl := quarantine.NewPreview(id, m.dispatcher)
			url := quarantine.ContentURL(m.cfg.Server.URL, id)
			m.previewView = preview.New(*entry.Mail, ctrl, url, m.keys,
				m.layout.ContentWidth(), m.layout.ContentHeight())
			m.currentView = ViewPreview
			return m, m.previewView.Init()
		}
	}
	return m, nil
}

// handleGlobalKeys processes keys that work regardless of focus. Keys
// are not intercepted while a form view has input focus.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.session.StopRefresh()
		return tea.Quit, true
	}

	if m.currentView == ViewHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.currentView = ViewList
		}
		return nil, true
	}

	if m.currentView != ViewList {
		return nil, false
	}

	switch msg.String() {
	case "?":
		m.currentView = ViewHelp
		return nil, true

	case "q":
		m.session.StopRefresh()
		return tea.Quit, true

	case "r":
		m.notice = ""
		return m.mailList.FetchCmd(), true

	case "f":
		m.dateDialog = daterange.New(m.ctrl.Params(),
			m.layout.ContentWidth(), m.layout.ContentHeight())
		m.currentView = ViewDateRange
		return m.dateDialog.Init(), true

	case "L":
		m.session.Logout()
		return nil, true
	}

	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m *Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewList:
		m.mailList, cmd = m.mailList.Update(msg)
	case ViewPreview:
		m.previewView, cmd = m.previewView.Update(msg)
	case ViewDateRange:
		m.dateDialog, cmd = m.dateDialog.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Mail Gateway Quarantine", m.sessionStatus())
	statusBar := m.layout.RenderStatusBar(m.statusHints())

	var content string
	switch m.currentView {
	case ViewLogin:
		content = m.loginView.View()
	case ViewList:
		content = m.mailList.View()
	case ViewPreview:
		content = m.previewView.View()
	case ViewDateRange:
		content = m.dateDialog.View()
	case ViewHelp:
		content = m.helpView.View()
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// sessionStatus describes the session for the header's right side.
func (m *Model) sessionStatus() string {
	cred, ok := m.session.Current()
	if !ok {
		return "not signed in"
	}
	if m.ctrl.Fetching() {
		return cred.Username + " · syncing"
	}
	return cred.Username
}

// statusHints returns the bottom bar content: a pending notice wins
// over the per-view key hints.
func (m *Model) statusHints() string {
	if m.notice != "" {
		return theme.NoticeStyle.Render(m.notice)
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+c quit"
	case ViewPreview:
		return "p deliver | d delete | w whitelist | b blacklist | o open body | esc back"
	case ViewDateRange:
		return "enter apply | esc cancel"
	case ViewHelp:
		return "esc close"
	default:
		return "enter preview | p/d/w/b actions | f date range | r refresh | ? help | L logout | q quit"
	}
}
