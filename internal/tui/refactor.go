package tui

import (
	"context"
	"fmt"
	"strings"

	"proof/internal/api"
	"proof/internal/query"
	"proof/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

var refactorPrompts = []string{
	"Identify functions that are too long and suggest splitting them",
	"Find duplicated code and suggest consolidation",
	"Suggest better error handling patterns",
	"Identify hard-coded values that should be constants or config",
	"Suggest improvements to naming conventions",
	"Find missing input validation and suggest fixes",
}

type refactorModel struct {
	queries *query.Workflow
	sess    *session.Session

	topic    textinput.Model
	spinner  spinner.Model
	results  viewport.Model
	renderer *glamour.TermRenderer

	promptIdx int
	width     int
	height    int
}

// refactorDoneMsg is sent when a refactor request completes.
type refactorDoneMsg struct {
	ticket query.RefactorTicket
	result api.RefactorResult
	err    error
}

func newRefactorModel(queries *query.Workflow, sess *session.Session) refactorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	topic := textinput.New()
	topic.Placeholder = "e.g. functions that are too long, or error handling patterns"
	topic.CharLimit = 2000
	topic.Focus()

	return refactorModel{
		queries: queries,
		sess:    sess,
		spinner: sp,
		topic:   topic,
		results: viewport.New(0, 0),
	}
}

func (m *refactorModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.topic.Width = width - 6

	vpHeight := height - 10
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.results.Width = width
	m.results.Height = vpHeight
	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	); err == nil {
		m.renderer = r
	}
	// Re-render for the new wrap width but keep the scroll position.
	offset := m.results.YOffset
	m.refreshResults()
	m.results.SetYOffset(offset)
}

func refactorCmd(w *query.Workflow, t query.RefactorTicket) tea.Cmd {
	return func() tea.Msg {
		res, err := w.Client().Refactor(context.Background(), t.Topic)
		return refactorDoneMsg{ticket: t, result: res, err: err}
	}
}

func (m refactorModel) Update(msg tea.Msg) (refactorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case refactorDoneMsg:
		if m.queries.ResolveRefactor(msg.ticket, msg.result, msg.err) {
			m.refreshResults()
		}
		return m, nil

	case spinner.TickMsg:
		if m.queries.RefactorLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.queries.RefactorLoading() {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+e":
			m.topic.SetValue(refactorPrompts[m.promptIdx])
			m.topic.CursorEnd()
			m.promptIdx = (m.promptIdx + 1) % len(refactorPrompts)
			return m, nil
		case "enter":
			ticket, ok := m.queries.StartRefactor(m.topic.Value())
			if !ok {
				return m, nil
			}
			m.refreshResults()
			return m, tea.Batch(m.spinner.Tick, refactorCmd(m.queries, ticket))
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.topic, cmd = m.topic.Update(msg)
	cmds = append(cmds, cmd)
	m.results, cmd = m.results.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *refactorModel) refreshResults() {
	res := m.queries.Suggestions()
	if res == nil {
		m.results.SetContent(dimStyle.Render("Describe what to refactor to get actionable suggestions with code examples."))
		return
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Suggestions") + "\n\n")
	b.WriteString(m.renderMarkdown(res.Suggestions))
	if block := renderSnippets(res.Snippets, m.width); block != "" {
		b.WriteString("\n\n" + block)
	}
	m.results.SetContent(b.String())
	m.results.GotoTop()
}

func (m refactorModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func (m refactorModel) View() string {
	s := "\n"
	s += titleStyle.Render("  Refactor Suggestions") + "\n"
	if cb, ok := m.sess.Active(); ok {
		s += subtitleStyle.Render(fmt.Sprintf("  %d files loaded from %s", cb.FileCount, cb.Source)) + "\n\n"
	} else {
		s += warnStyle.Render("  No codebase loaded — load one first on the Load tab.") + "\n\n"
	}

	s += "  " + m.topic.View() + "\n"

	if m.queries.RefactorLoading() {
		s += fmt.Sprintf("  %s %s\n", m.spinner.View(), dimStyle.Render("Analyzing codebase…"))
	} else {
		s += helpStyle.Render("  Enter: suggest • ctrl+e: example prompt") + "\n"
	}

	s += "\n" + m.results.View()
	return s
}
