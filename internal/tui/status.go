package tui

import (
	"context"
	"fmt"
	"time"

	"proof/internal/api"
	"proof/internal/health"
	"proof/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type statusModel struct {
	client *api.Client
	sess   *session.Session

	report      *api.Health
	lastChecked time.Time
	checking    bool
	spinner     spinner.Model
	width       int
}

func newStatusModel(client *api.Client, sess *session.Session) statusModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return statusModel{client: client, sess: sess, spinner: sp}
}

func (m *statusModel) resize(width, height int) {
	m.width = width
}

// setReport installs a health report delivered by the polling monitor or
// a manual refresh.
func (m *statusModel) setReport(h api.Health) {
	m.report = &h
	m.lastChecked = time.Now()
	m.checking = false
}

func checkHealthCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return healthReportMsg{report: health.Check(ctx, client)}
	}
}

func (m statusModel) Update(msg tea.Msg) (statusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.checking || m.report == nil {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" && !m.checking {
			m.checking = true
			return m, tea.Batch(m.spinner.Tick, checkHealthCmd(m.client))
		}
	}
	return m, nil
}

func (m statusModel) View() string {
	s := "\n"
	s += titleStyle.Render("  System Status") + "\n"
	s += subtitleStyle.Render("  Health of the backend, database and answering service") + "\n\n"

	if m.report == nil {
		s += fmt.Sprintf("  %s %s\n", m.spinner.View(), dimStyle.Render("Checking systems…"))
		return s
	}

	r := *m.report
	if r.OK() {
		s += successStyle.Render("  ✅ All systems operational") + "\n"
	} else {
		s += warnStyle.Render("  ⚠ Some issues detected") + "\n"
	}
	if r.CodebaseLoaded {
		s += dimStyle.Render(fmt.Sprintf("  Codebase loaded: %d files indexed", r.FileCount)) + "\n\n"
	} else {
		s += dimStyle.Render("  No codebase currently loaded") + "\n\n"
	}

	cards := lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderStatusCard("Backend API", r.Backend),
		" ",
		renderStatusCard("Database", r.Database),
		" ",
		renderStatusCard("LLM Connection", r.LLM),
	)
	s += lipgloss.NewStyle().MarginLeft(2).Render(cards) + "\n\n"

	if m.checking {
		s += fmt.Sprintf("  %s %s\n", m.spinner.View(), dimStyle.Render("Checking…"))
	} else {
		s += dimStyle.Render("  Last checked: "+m.lastChecked.Format("15:04:05")) + "\n"
		s += helpStyle.Render("  r: refresh now (auto-refreshes every 30s)") + "\n"
	}
	return s
}

func renderStatusCard(title string, c api.ComponentStatus) string {
	dot := errorStyle.Render("●")
	label := errorStyle.Render("Error")
	if c.Status == api.StatusOK {
		dot = successStyle.Render("●")
		label = successStyle.Render("Operational")
	}
	body := fmt.Sprintf("%s %s\n%s\n%s", dot, label, titleStyle.Render(title), dimStyle.Render(c.Message))
	return snippetBoxStyle.Width(28).Render(body)
}
