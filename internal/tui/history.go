package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"proof/internal/api"
	"proof/internal/history"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type historyModel struct {
	engine *history.Engine

	search  textinput.Model
	spinner spinner.Model

	searchFocused bool
	tagCursor     int // 0 = All, 1..n index into vocabulary
	entryCursor   int
	width         int
	height        int
}

// historyRefreshedMsg carries a completed entries refresh.
type historyRefreshedMsg struct {
	ticket  history.Ticket
	entries []api.HistoryEntry
	err     error
}

// vocabularyMsg signals that the tag vocabulary fetch finished.
type vocabularyMsg struct {
	err error
}

func newHistoryModel(engine *history.Engine) historyModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	search := textinput.New()
	search.Placeholder = "search questions and answers…"
	search.CharLimit = 256

	return historyModel{
		engine:  engine,
		spinner: sp,
		search:  search,
	}
}

func (m *historyModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = width - 10
}

// refreshCmd fetches entries for an already-opened ticket.
func (m historyModel) refreshCmd(t history.Ticket) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		entries, err := engine.Fetch(context.Background(), t)
		return historyRefreshedMsg{ticket: t, entries: entries, err: err}
	}
}

// vocabularyCmd refetches the distinct-tag vocabulary. Failures are
// silent; the previous vocabulary stays usable.
func (m historyModel) vocabularyCmd() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		return vocabularyMsg{err: engine.RefreshVocabulary(context.Background())}
	}
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyRefreshedMsg:
		m.engine.Apply(msg.ticket, msg.entries, msg.err)
		if n := len(m.engine.Entries()); m.entryCursor >= n && n > 0 {
			m.entryCursor = n - 1
		}
		return m, nil

	case vocabularyMsg:
		if m.tagCursor > len(m.engine.Vocabulary()) {
			m.tagCursor = 0
		}
		return m, nil

	case spinner.TickMsg:
		if m.engine.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.searchFocused {
			switch msg.String() {
			case "esc", "enter":
				m.searchFocused = false
				m.search.Blur()
				return m, nil
			}
			before := m.search.Value()
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			if after := m.search.Value(); after != before {
				// One combined refresh per mutation: the new search text
				// travels together with the active tag.
				return m, tea.Batch(cmd, m.spinner.Tick, m.refreshCmd(m.engine.SetSearch(after)))
			}
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.searchFocused = true
			m.search.Focus()
			return m, nil
		case "left", "h":
			if m.tagCursor > 0 {
				m.tagCursor--
			}
			return m, nil
		case "right", "l":
			if m.tagCursor < len(m.engine.Vocabulary()) {
				m.tagCursor++
			}
			return m, nil
		case " ":
			return m, tea.Batch(m.spinner.Tick, m.refreshCmd(m.toggleAtCursor()))
		case "up", "k":
			if m.entryCursor > 0 {
				m.entryCursor--
			}
			return m, nil
		case "down", "j":
			if m.entryCursor < len(m.engine.Entries())-1 {
				m.entryCursor++
			}
			return m, nil
		case "enter":
			entries := m.engine.Entries()
			if m.entryCursor < len(entries) {
				m.engine.ToggleExpanded(entries[m.entryCursor].ID)
			}
			return m, nil
		case "r":
			return m, tea.Batch(
				m.spinner.Tick,
				m.refreshCmd(m.engine.Refresh()),
				m.vocabularyCmd(),
			)
		}
	}
	return m, nil
}

// toggleAtCursor maps the tag cursor onto the engine's exclusive toggle.
// Cursor 0 is "All": selecting it clears whatever tag is active.
func (m historyModel) toggleAtCursor() history.Ticket {
	if m.tagCursor == 0 {
		_, active := m.engine.Filters()
		if active == "" {
			return m.engine.Refresh()
		}
		return m.engine.ToggleTag(active)
	}
	vocab := m.engine.Vocabulary()
	return m.engine.ToggleTag(vocab[m.tagCursor-1])
}

func (m historyModel) View() string {
	s := "\n"
	s += titleStyle.Render("  Q&A History") + "\n"
	s += subtitleStyle.Render("  Last 10 questions asked about your codebase") + "\n\n"

	s += "  🔍 " + m.search.View() + "\n"
	s += m.renderTagBar() + "\n"

	if m.engine.Loading() {
		s += fmt.Sprintf("\n  %s %s\n", m.spinner.View(), dimStyle.Render("Loading history…"))
		return s
	}

	entries := m.engine.Entries()
	if len(entries) == 0 {
		search, tag := m.engine.Filters()
		s += "\n" + dimStyle.Render("  No Q&As found.") + "\n"
		if search != "" || tag != "" {
			s += dimStyle.Render("  Try different search terms or tags.") + "\n"
		} else {
			s += dimStyle.Render("  Ask your first question to get started!") + "\n"
		}
		return s
	}

	expandedID, expanded := m.engine.Expanded()
	s += "\n"
	for i, e := range entries {
		s += m.renderEntry(e, i == m.entryCursor, expanded && e.ID == expandedID)
	}

	s += "\n" + helpStyle.Render("  /: search • ←/→ + space: tag filter • ↑/↓ + enter: expand • r: reload") + "\n"
	return s
}

func (m historyModel) renderTagBar() string {
	_, active := m.engine.Filters()

	render := func(label, tag string, idx int) string {
		style := tagStyle
		if (tag == "" && active == "") || (tag != "" && tag == active) {
			style = tagSelectedStyle
		}
		cell := style.Render(label)
		if idx == m.tagCursor && !m.searchFocused {
			cell = selectedStyle.Render("▸") + cell
		} else {
			cell = " " + cell
		}
		return cell
	}

	bar := "  " + render("All", "", 0)
	for i, t := range m.engine.Vocabulary() {
		bar += " " + render(t, t, i+1)
	}
	return bar
}

func (m historyModel) renderEntry(e api.HistoryEntry, selected, expanded bool) string {
	cursor := "  "
	questionStyle := listItemStyle
	if selected {
		cursor = "▸ "
		questionStyle = selectedStyle
	}

	header := fmt.Sprintf("%s#%d %s", cursor, e.ID, questionStyle.Render(truncate(e.Question, m.width-30)))
	if tags := renderTags(e.Tags); tags != "" {
		header += " " + tags
	}
	header += " " + dimStyle.Render(relativeTime(e.CreatedAt))

	s := header + "\n"
	if !expanded {
		s += dimStyle.Render("    "+truncate(e.Answer, m.width-10)) + "\n"
		return s
	}

	for _, line := range strings.Split(strings.TrimSpace(e.Answer), "\n") {
		s += "    " + line + "\n"
	}
	for _, sn := range e.Snippets {
		loc := sn.File
		if sn.HasLines() {
			loc = fmt.Sprintf("%s:%d–%d", sn.File, sn.StartLine, sn.EndLine)
		}
		s += dimStyle.Render("    ⌗ "+loc) + "\n"
	}
	return s
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if max < 10 {
		max = 10
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// relativeTime renders the store's "2006-01-02 15:04:05" UTC stamps as a
// rough age. Unparseable stamps pass through untouched.
func relativeTime(createdAt string) string {
	t, err := time.Parse("2006-01-02 15:04:05", createdAt)
	if err != nil {
		return createdAt
	}
	d := time.Since(t.UTC())
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
