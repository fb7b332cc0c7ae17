package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvu/mailquar/internal/keys"
	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/quarantine"
	"github.com/nvu/mailquar/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// OpenContentMsg asks the parent to hand the sandboxed document URL to
// the external viewer.
type OpenContentMsg struct {
	URL string
}

// ActionDoneMsg is sent when a disposition action from the preview
// completes. The reload coordinator has already fired by then.
type ActionDoneMsg struct {
	Action model.MailAction
	Err    error
}

// Model is the single-mail preview view component.
type Model struct {
	mail       model.Mail
	ctrl       *quarantine.Preview
	contentURL string
	viewport   viewport.Model
	keys       *keys.KeyMap
	width      int
	height     int
}

// New creates a preview model for one selected mail.
func New(mail model.Mail, ctrl *quarantine.Preview, contentURL string, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	m := Model{
		mail:       mail,
		ctrl:       ctrl,
		contentURL: contentURL,
		viewport:   vp,
		keys:       k,
		width:      width,
		height:     height,
	}
	m.viewport.SetContent(m.renderContent())
	return m
}

// Init returns the initial command for the preview view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the preview view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ActionDoneMsg:
		// The controller recorded the error; re-render the banner.
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			if m.ctrl.LastError() != nil {
				m.ctrl.DismissError()
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.OpenContent):
			url := m.contentURL
			return m, func() tea.Msg {
				return OpenContentMsg{URL: url}
			}

		case key.Matches(msg, m.keys.Deliver):
			return m, m.actionCmd(model.ActionDeliver)

		case key.Matches(msg, m.keys.Delete):
			return m, m.actionCmd(model.ActionDelete)

		case key.Matches(msg, m.keys.Whitelist):
			return m, m.actionCmd(model.ActionWhitelist)

		case key.Matches(msg, m.keys.Blacklist):
			return m, m.actionCmd(model.ActionBlacklist)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// actionCmd dispatches a disposition action for the previewed mail.
func (m Model) actionCmd(action model.MailAction) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := ctrl.Dispatch(ctx, action)
		return ActionDoneMsg{Action: action, Err: err}
	}
}

// View renders the preview view.
func (m Model) View() string {
	return m.viewport.View()
}

// renderContent lays out the mail metadata, the content URL for the
// external viewer, and the dismissible action error banner.
func (m Model) renderContent() string {
	label := theme.HelpStyle
	score := theme.SpamScoreStyle(m.mail.SpamLevel).
		Render(fmt.Sprintf("%d", m.mail.SpamLevel))

	body := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s\n%s %s\n\n%s\n%s\n%s",
		label.Render("From:   "), m.mail.From,
		label.Render("Subject:"), m.mail.Subject,
		label.Render("Date:   "), time.Unix(m.mail.Time, 0).Local().Format("2006-01-02 15:04:05"),
		label.Render("Score:  "), score,
		label.Render("The message body renders in the external sandboxed viewer:"),
		m.contentURL,
		label.Render("p deliver · d delete · w whitelist · b blacklist · o open body"),
	)

	content := theme.PreviewPanelStyle.Width(m.width - 4).Render(body)

	if err := m.ctrl.LastError(); err != nil {
		banner := theme.ErrorStyle.Render(
			"Action failed: " + err.Error() + "  (esc to dismiss)",
		)
		content = lipgloss.JoinVertical(lipgloss.Left, banner, content)
	}

	return content
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}

// MailID returns the id of the previewed mail.
func (m Model) MailID() string { return m.mail.ID }
