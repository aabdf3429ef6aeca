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

var exampleQuestions = []string{
	"Where is authentication handled?",
	"How do retries work?",
	"Where are API routes defined?",
	"How is the database connected?",
	"Where are environment variables loaded?",
	"What error handling patterns are used?",
}

type askFocus int

const (
	focusQuestion askFocus = iota
	focusTag
)

type askModel struct {
	queries *query.Workflow
	sess    *session.Session

	question textinput.Model
	tagInput textinput.Model
	spinner  spinner.Model
	results  viewport.Model
	renderer *glamour.TermRenderer

	focus      askFocus
	exampleIdx int
	width      int
	height     int
}

// askDoneMsg is sent when an ask request completes.
type askDoneMsg struct {
	ticket query.AskTicket
	result api.Answer
	err    error
}

func newAskModel(queries *query.Workflow, sess *session.Session) askModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	q := textinput.New()
	q.Placeholder = "e.g. Where is authentication handled?"
	q.CharLimit = 2000
	q.Focus()

	tag := textinput.New()
	tag.Placeholder = "add tag"
	tag.CharLimit = 64

	return askModel{
		queries:  queries,
		sess:     sess,
		spinner:  sp,
		question: q,
		tagInput: tag,
		results:  viewport.New(0, 0),
	}
}

func (m *askModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.question.Width = width - 6
	m.tagInput.Width = 32

	vpHeight := height - 12
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

func askCmd(w *query.Workflow, t query.AskTicket) tea.Cmd {
	return func() tea.Msg {
		res, err := w.Client().Ask(context.Background(), t.Question, t.Tags)
		return askDoneMsg{ticket: t, result: res, err: err}
	}
}

func (m askModel) Update(msg tea.Msg) (askModel, tea.Cmd) {
	switch msg := msg.(type) {
	case askDoneMsg:
		if m.queries.ResolveAsk(msg.ticket, msg.result, msg.err) {
			m.refreshResults()
		}
		return m, nil

	case spinner.TickMsg:
		if m.queries.AskLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.queries.AskLoading() {
			// One in-flight ask at a time; the submit key is inert while
			// loading, matching the disabled control in a GUI.
			return m, nil
		}
		switch msg.String() {
		case "ctrl+t":
			if m.focus == focusQuestion {
				m.focus = focusTag
				m.question.Blur()
				m.tagInput.Focus()
			} else {
				m.focus = focusQuestion
				m.tagInput.Blur()
				m.question.Focus()
			}
			return m, nil
		case "ctrl+e":
			m.question.SetValue(exampleQuestions[m.exampleIdx])
			m.question.CursorEnd()
			m.exampleIdx = (m.exampleIdx + 1) % len(exampleQuestions)
			return m, nil
		case "ctrl+x":
			m.queries.RemoveLastTag()
			return m, nil
		case "enter":
			if m.focus == focusTag {
				m.queries.AddTag(m.tagInput.Value())
				m.tagInput.Reset()
				return m, nil
			}
			ticket, ok := m.queries.StartAsk(m.question.Value(), m.queries.PendingTags())
			if !ok {
				return m, nil
			}
			m.refreshResults()
			return m, tea.Batch(m.spinner.Tick, askCmd(m.queries, ticket))
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.focus == focusQuestion {
		m.question, cmd = m.question.Update(msg)
	} else {
		m.tagInput, cmd = m.tagInput.Update(msg)
	}
	cmds = append(cmds, cmd)

	m.results, cmd = m.results.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *askModel) refreshResults() {
	res := m.queries.Answer()
	if res == nil {
		m.results.SetContent(dimStyle.Render("Ask a question to see an answer with cited code."))
		return
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Answer"))
	if tags := renderTags(res.Tags); tags != "" {
		b.WriteString("  " + tags)
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderMarkdown(res.Answer))
	if block := renderSnippets(res.Snippets, m.width); block != "" {
		b.WriteString("\n\n" + block)
	}
	m.results.SetContent(b.String())
	m.results.GotoTop()
}

func (m askModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func (m askModel) View() string {
	s := "\n"
	s += titleStyle.Render("  Ask a Question") + "\n"
	if cb, ok := m.sess.Active(); ok {
		s += subtitleStyle.Render(fmt.Sprintf("  %d files loaded from %s", cb.FileCount, cb.Source)) + "\n\n"
	} else {
		s += warnStyle.Render("  No codebase loaded — load one first on the Load tab.") + "\n\n"
	}

	s += "  " + m.question.View() + "\n"

	tagLine := "  tags: "
	if tags := m.queries.PendingTags(); len(tags) > 0 {
		tagLine += renderTags(tags) + " "
	}
	tagLine += m.tagInput.View()
	s += tagLine + "\n"

	if m.queries.AskLoading() {
		s += fmt.Sprintf("  %s %s\n", m.spinner.View(), dimStyle.Render("Scanning codebase and querying LLM…"))
	} else {
		s += helpStyle.Render("  Enter: ask • ctrl+t: tags • ctrl+x: drop tag • ctrl+e: example") + "\n"
	}

	s += "\n" + m.results.View()
	return s
}
