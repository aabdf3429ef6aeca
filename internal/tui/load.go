package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"proof/internal/ingest"
	"proof/internal/notify"
	"proof/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loadMode int

const (
	loadModeArchive loadMode = iota
	loadModeRepo
)

// manifestPreviewLimit caps how many file paths the result summary shows.
const manifestPreviewLimit = 30

type loadModel struct {
	ingestor *ingest.Workflow
	notes    *notify.Center
	sess     *session.Session

	mode      loadMode
	pathInput textinput.Model
	urlInput  textinput.Model
	spinner   spinner.Model

	loading bool
	result  *session.Codebase
	width   int
}

// ingestDoneMsg is sent when an ingestion attempt completes.
type ingestDoneMsg struct {
	codebase session.Codebase
	err      error
}

func newLoadModel(ingestor *ingest.Workflow, notes *notify.Center, sess *session.Session) loadModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	path := textinput.New()
	path.Placeholder = "path/to/codebase.zip"
	path.CharLimit = 512
	path.Focus()

	repo := textinput.New()
	repo.Placeholder = "https://github.com/owner/repo"
	repo.CharLimit = 512

	return loadModel{
		ingestor:  ingestor,
		notes:     notes,
		sess:      sess,
		spinner:   sp,
		pathInput: path,
		urlInput:  repo,
	}
}

func (m *loadModel) resize(width, height int) {
	m.width = width
	m.pathInput.Width = width - 6
	m.urlInput.Width = width - 6
}

func (m loadModel) toggleMode() loadModel {
	if m.mode == loadModeArchive {
		m.mode = loadModeRepo
		m.pathInput.Blur()
		m.urlInput.Focus()
	} else {
		m.mode = loadModeArchive
		m.urlInput.Blur()
		m.pathInput.Focus()
	}
	return m
}

func uploadArchiveCmd(w *ingest.Workflow, notes *notify.Center, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			notes.Errorf("Cannot read archive: %v", err)
			return ingestDoneMsg{err: err}
		}
		defer f.Close()

		cb, err := w.UploadArchive(context.Background(), filepath.Base(path), f)
		return ingestDoneMsg{codebase: cb, err: err}
	}
}

func loadRepositoryCmd(w *ingest.Workflow, rawURL string) tea.Cmd {
	return func() tea.Msg {
		cb, err := w.LoadRepository(context.Background(), rawURL)
		return ingestDoneMsg{codebase: cb, err: err}
	}
}

func (m loadModel) Update(msg tea.Msg) (loadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ingestDoneMsg:
		m.loading = false
		if msg.err == nil {
			cb := msg.codebase
			m.result = &cb
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+t":
			return m.toggleMode(), nil
		case "enter":
			m.loading = true
			if m.mode == loadModeArchive {
				return m, tea.Batch(
					m.spinner.Tick,
					uploadArchiveCmd(m.ingestor, m.notes, strings.TrimSpace(m.pathInput.Value())),
				)
			}
			return m, tea.Batch(
				m.spinner.Tick,
				loadRepositoryCmd(m.ingestor, m.urlInput.Value()),
			)
		}
	}

	var cmd tea.Cmd
	if m.mode == loadModeArchive {
		m.pathInput, cmd = m.pathInput.Update(msg)
	} else {
		m.urlInput, cmd = m.urlInput.Update(msg)
	}
	return m, cmd
}

func (m loadModel) View() string {
	s := "\n"
	s += titleStyle.Render("  Load a Codebase") + "\n"
	s += subtitleStyle.Render("  Upload a ZIP archive or point at a public repository") + "\n\n"

	archiveTab := "  ZIP archive "
	repoTab := " Repository URL "
	if m.mode == loadModeArchive {
		s += selectedStyle.Render(archiveTab) + dimStyle.Render(repoTab) + "\n\n"
		s += "  " + m.pathInput.View() + "\n"
	} else {
		s += dimStyle.Render(archiveTab) + selectedStyle.Render(repoTab) + "\n\n"
		s += "  " + m.urlInput.View() + "\n"
		s += dimStyle.Render("  Only public repositories; rate limits apply upstream.") + "\n"
	}

	s += "\n"
	if m.loading {
		s += fmt.Sprintf("  %s %s\n", m.spinner.View(), dimStyle.Render("Parsing codebase…"))
	} else {
		s += helpStyle.Render("  Enter: load • ctrl+t: switch source") + "\n"
	}

	if m.result != nil && !m.loading {
		s += "\n" + successStyle.Render(fmt.Sprintf("  ✓ %d files indexed from %s", m.result.FileCount, m.result.Source)) + "\n"
		preview := m.result.Files
		if len(preview) > manifestPreviewLimit {
			preview = preview[:manifestPreviewLimit]
		}
		for _, f := range preview {
			s += dimStyle.Render("    "+f) + "\n"
		}
		if rest := m.result.FileCount - len(preview); rest > 0 {
			s += dimStyle.Render(fmt.Sprintf("    +%d more", rest)) + "\n"
		}
	}

	return s
}
