package login

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvu/mailquar/internal/session"
	"github.com/nvu/mailquar/internal/theme"
)

// LoggedInMsg signals the parent that an interactive login succeeded.
type LoggedInMsg struct{}

// loginResultMsg carries the outcome of the exchange call.
type loginResultMsg struct {
	err error
}

// Model is the interactive login form.
type Model struct {
	store *session.Store
	form  *huh.Form

	username string
	realm    string
	password string

	submitting bool
	errMsg     string
	width      int
	height     int
}

// New creates a login form model. defaultRealm pre-fills the realm field.
func New(store *session.Store, defaultRealm string, width, height int) Model {
	m := Model{
		store:  store,
		realm:  defaultRealm,
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("user@example.com").
				Value(&m.username).
				Validate(required("Username")),
			huh.NewInput().
				Title("Realm").
				Description("Authentication realm of the gateway").
				Value(&m.realm),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(required("Password")),
		),
	).WithWidth(min(m.width-4, 60))
}

func required(name string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return &fieldError{name}
		}
		return nil
	}
}

type fieldError struct{ field string }

func (e *fieldError) Error() string { return e.field + " is required" }

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form and performs the exchange on completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.password = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return LoggedInMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted && !m.submitting {
		m.submitting = true
		return m, m.loginCmd()
	}

	return m, cmd
}

// loginCmd performs the exchange against the gateway.
func (m Model) loginCmd() tea.Cmd {
	store := m.store
	username, realm, password := m.username, m.realm, m.password
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := store.Login(ctx, username, realm, password)
		return loginResultMsg{err: err}
	}
}

// View renders the login form with an optional failure line.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Mail Gateway Quarantine")

	parts := []string{title, ""}
	if m.errMsg != "" {
		parts = append(parts, theme.ErrorStyle.Render("Login failed: "+m.errMsg), "")
	}
	if m.submitting {
		parts = append(parts, "Signing in…")
	} else {
		parts = append(parts, m.form.View())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
