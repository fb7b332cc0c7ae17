package daterange

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/theme"
)

// dayFormat is the accepted input format for both bounds.
const dayFormat = "2006-01-02"

// AppliedMsg carries the chosen date range back to the parent.
type AppliedMsg struct {
	Params model.QueryParams
}

// CancelMsg signals the parent to close the dialog unchanged.
type CancelMsg struct{}

// Model is the date range selection dialog.
type Model struct {
	form   *huh.Form
	from   string
	to     string
	width  int
	height int
}

// New creates a date range dialog pre-filled with the current bounds.
func New(current model.QueryParams, width, height int) Model {
	m := Model{width: width, height: height}
	if current.StartTime != nil {
		m.from = time.Unix(*current.StartTime, 0).Local().Format(dayFormat)
	}
	if current.EndTime != nil {
		m.to = time.Unix(*current.EndTime, 0).Local().Format(dayFormat)
	}
	m.form = m.buildForm()
	return m
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("From").
				Description("First day to show (YYYY-MM-DD); empty = unbounded").
				Placeholder(dayFormat).
				Value(&m.from).
				Validate(validateDay),
			huh.NewInput().
				Title("To").
				Description("Last day to show (YYYY-MM-DD); empty = unbounded").
				Placeholder(dayFormat).
				Value(&m.to).
				Validate(validateDay),
		),
	).WithWidth(min(m.width-4, 50))
}

func validateDay(v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	if _, err := time.ParseInLocation(dayFormat, strings.TrimSpace(v), time.Local); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form; esc cancels, completion applies the range.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		params := m.params()
		return m, func() tea.Msg { return AppliedMsg{Params: params} }
	}

	return m, cmd
}

// params converts the validated inputs to epoch bounds: the start of
// the first day and the last second of the last day, both in the
// viewer's local time zone.
func (m Model) params() model.QueryParams {
	var params model.QueryParams

	if from := strings.TrimSpace(m.from); from != "" {
		if day, err := time.ParseInLocation(dayFormat, from, time.Local); err == nil {
			params.StartTime = model.Epoch(day.Unix())
		}
	}
	if to := strings.TrimSpace(m.to); to != "" {
		if day, err := time.ParseInLocation(dayFormat, to, time.Local); err == nil {
			params.EndTime = model.Epoch(day.AddDate(0, 0, 1).Add(-time.Second).Unix())
		}
	}

	return params
}

// View renders the dialog.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Select Date Range")
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, "", m.form.View()))
}

// SetSize updates the dialog dimensions.
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
