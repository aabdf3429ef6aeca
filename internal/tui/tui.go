// Package tui is the interactive terminal front end. One top-level model
// switches between five tab views; each view owns its own action slot and
// resolves asynchronous work through typed messages.
package tui

import (
	"fmt"
	"time"

	"proof/internal/api"
	"proof/internal/health"
	"proof/internal/history"
	"proof/internal/ingest"
	"proof/internal/notify"
	"proof/internal/query"
	"proof/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// view identifies which tab is active.
type view int

const (
	viewLoad view = iota
	viewAsk
	viewRefactor
	viewHistory
	viewStatus
	viewCount
)

var viewNames = [viewCount]string{"Load", "Ask", "Refactor", "History", "Status"}

// programRef is an indirect pointer to the tea.Program so background
// goroutines (notification timers, the health monitor) can send messages.
// It must be set after tea.NewProgram returns but before Run.
type programRef struct {
	p *tea.Program
}

func (r *programRef) send(msg tea.Msg) {
	if r != nil && r.p != nil {
		r.p.Send(msg)
	}
}

// Config holds configuration passed from the CLI layer.
type Config struct {
	ServerURL      string
	HealthInterval time.Duration
}

// Messages shared across views.
type (
	// notesChangedMsg wakes the render loop when a notification is
	// pushed, expired or dismissed.
	notesChangedMsg struct{}

	// healthReportMsg carries a completed health check, from the polling
	// monitor or a manual refresh.
	healthReportMsg struct {
		report api.Health
	}
)

// Model is the top-level Bubble Tea model.
type Model struct {
	view   view
	width  int
	height int

	client *api.Client
	sess   *session.Session
	notes  *notify.Center

	load     loadModel
	ask      askModel
	refactor refactorModel
	history  historyModel
	status   statusModel
}

// New wires the core workflows into a fresh model.
func New(client *api.Client, sess *session.Session, notes *notify.Center) Model {
	ingestor := ingest.New(client, sess, notes)
	queries := query.New(client, sess, notes)
	engine := history.New(client, notes)

	return Model{
		view:     viewLoad,
		client:   client,
		sess:     sess,
		notes:    notes,
		load:     newLoadModel(ingestor, notes, sess),
		ask:      newAskModel(queries, sess),
		refactor: newRefactorModel(queries, sess),
		history:  newHistoryModel(engine),
		status:   newStatusModel(client, sess),
	}
}

func (m Model) Init() tea.Cmd {
	// History entries and the tag vocabulary load independently on mount;
	// neither blocks the other. Health arrives via the monitor.
	return tea.Batch(
		m.history.refreshCmd(m.history.engine.Refresh()),
		m.history.vocabularyCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.load.resize(msg.Width, msg.Height)
		m.ask.resize(msg.Width, msg.Height)
		m.refactor.resize(msg.Width, msg.Height)
		m.history.resize(msg.Width, msg.Height)
		m.status.resize(msg.Width, msg.Height)
		return m, nil

	case notesChangedMsg:
		return m, nil

	case healthReportMsg:
		m.status.setReport(msg.report)
		return m, nil

	// Async completions go to the view that owns the slot, not the view
	// that happens to be visible. A completion arriving after a tab
	// switch must still resolve its slot and clear the loading flag.
	case ingestDoneMsg:
		var cmd tea.Cmd
		m.load, cmd = m.load.Update(msg)
		return m, cmd

	case askDoneMsg:
		var cmd tea.Cmd
		m.ask, cmd = m.ask.Update(msg)
		return m, cmd

	case refactorDoneMsg:
		var cmd tea.Cmd
		m.refactor, cmd = m.refactor.Update(msg)
		return m, cmd

	case historyRefreshedMsg, vocabularyMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.view = (m.view + 1) % viewCount
			return m, nil
		case "shift+tab":
			m.view = (m.view + viewCount - 1) % viewCount
			return m, nil
		case "ctrl+d":
			// Dismiss the oldest visible notification.
			if active := m.notes.Active(); len(active) > 0 {
				m.notes.Dismiss(active[0].ID)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.view {
	case viewLoad:
		m.load, cmd = m.load.Update(msg)
	case viewAsk:
		m.ask, cmd = m.ask.Update(msg)
	case viewRefactor:
		m.refactor, cmd = m.refactor.Update(msg)
	case viewHistory:
		m.history, cmd = m.history.Update(msg)
	case viewStatus:
		m.status, cmd = m.status.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var body string
	switch m.view {
	case viewLoad:
		body = m.load.View()
	case viewAsk:
		body = m.ask.View()
	case viewRefactor:
		body = m.refactor.View()
	case viewHistory:
		body = m.history.View()
	case viewStatus:
		body = m.status.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabs(),
		m.renderNotifications(),
		body,
		m.renderStatusBar(),
	)
}

func (m Model) renderTabs() string {
	var tabs []string
	for v := view(0); v < viewCount; v++ {
		if v == m.view {
			tabs = append(tabs, tabActiveStyle.Render(viewNames[v]))
		} else {
			tabs = append(tabs, tabStyle.Render(viewNames[v]))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderNotifications() string {
	active := m.notes.Active()
	if len(active) == 0 {
		return ""
	}
	var s string
	for _, ev := range active {
		switch ev.Kind {
		case notify.Success:
			s += successStyle.Render("✓ "+ev.Message) + "\n"
		case notify.Error:
			s += errorStyle.Render("✕ "+ev.Message) + "\n"
		default:
			s += dimStyle.Render("ℹ "+ev.Message) + "\n"
		}
	}
	return s
}

func (m Model) renderStatusBar() string {
	codebase := "no codebase loaded"
	if cb, ok := m.sess.Active(); ok {
		codebase = fmt.Sprintf("%d files (%s)", cb.FileCount, cb.Source)
	}
	return statusBarStyle.Width(m.width).Render(fmt.Sprintf(
		" proof • %s • %s • tab: switch view • ctrl+c: quit",
		m.client.BaseURL(), codebase,
	))
}

// Run starts the TUI program and the health monitor bound to its
// lifetime.
func Run(cfg Config) error {
	client := api.New(cfg.ServerURL)
	sess := session.New()
	notes := notify.NewCenter()
	defer notes.Close()

	model := New(client, sess, notes)

	ref := &programRef{}
	p := tea.NewProgram(model, tea.WithAltScreen())
	ref.p = p

	notes.SetOnChange(func() {
		ref.send(notesChangedMsg{})
	})

	monitor := health.NewMonitor(client, cfg.HealthInterval, func(h api.Health) {
		ref.send(healthReportMsg{report: h})
	})
	monitor.Start()
	defer monitor.Stop()

	_, err := p.Run()
	return err
}
