package maillist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvu/mailquar/internal/model"
	"github.com/nvu/mailquar/internal/theme"
)

// EntryItem wraps a model.ListEntry so it can be used in a bubbles/list.
type EntryItem struct {
	Entry model.ListEntry
}

// FilterValue returns the string used for fuzzy filtering.
func (i EntryItem) FilterValue() string {
	if i.Entry.Mail != nil {
		return i.Entry.Mail.From + " " + i.Entry.Mail.Subject
	}
	return i.Entry.Heading
}

// EntryDelegate implements list.ItemDelegate for quarantine rows:
// date headings render as separators, mail rows as sender/subject/score.
type EntryDelegate struct{}

// Height returns the number of lines each item takes.
func (d EntryDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d EntryDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d EntryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list row.
func (d EntryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entryItem, ok := item.(EntryItem)
	if !ok {
		return
	}

	entry := entryItem.Entry
	if entry.IsHeading() {
		fmt.Fprint(w, theme.DateHeadingStyle.Render("── "+entry.Heading+" ──"))
		return
	}

	mail := entry.Mail
	score := theme.SpamScoreStyle(mail.SpamLevel).
		Render(fmt.Sprintf("score %d", mail.SpamLevel))

	line := fmt.Sprintf(
		"%s  %s  %s %s",
		clock(mail.Time),
		truncate(mail.From, 28),
		truncate(mail.Subject, 48),
		score,
	)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// clock formats the arrival time-of-day; the day itself is carried by
// the surrounding date heading.
func clock(epoch int64) string {
	return time.Unix(epoch, 0).Local().Format("15:04")
}

// truncate shortens s to max runes, never splitting a multi-byte
// character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
