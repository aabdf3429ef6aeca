// Package ingest drives codebase loading. Both paths share one contract:
// produce a full descriptor or leave the session untouched.
package ingest

import (
	"context"
	"errors"
	"io"
	"strings"

	"proof/internal/api"
	"proof/internal/notify"
	"proof/internal/session"
)

// Validation failures detected before any network call.
var (
	ErrNotArchive = errors.New("only .zip archives are supported")
	ErrEmptyURL   = errors.New("repository URL is empty")
)

// Workflow loads codebases into the session. It is the session's only
// writer.
type Workflow struct {
	client *api.Client
	sess   *session.Session
	notes  *notify.Center
}

func New(client *api.Client, sess *session.Session, notes *notify.Center) *Workflow {
	return &Workflow{client: client, sess: sess, notes: notes}
}

// UploadArchive submits an archive blob. The filename must carry a .zip
// extension; a violation fails fast without touching the network.
func (w *Workflow) UploadArchive(ctx context.Context, filename string, r io.Reader) (session.Codebase, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".zip") {
		w.notes.Errorf("Only .zip files are supported")
		return session.Codebase{}, ErrNotArchive
	}

	res, err := w.client.UploadArchive(ctx, filename, r)
	if err != nil {
		w.notes.Errorf("Upload failed: %v", err)
		return session.Codebase{}, err
	}

	cb := session.Codebase{
		Source:    filename,
		FileCount: res.FileCount,
		Files:     res.Files,
	}
	w.sess.SetActive(cb)
	w.notes.Successf("%d files loaded from ZIP", res.FileCount)
	return cb, nil
}

// LoadRepository submits a repository URL. The URL must be non-empty after
// trimming; the backend enforces its own visibility and rate limits.
func (w *Workflow) LoadRepository(ctx context.Context, rawURL string) (session.Codebase, error) {
	repoURL := strings.TrimSpace(rawURL)
	if repoURL == "" {
		w.notes.Errorf("Please enter a repository URL")
		return session.Codebase{}, ErrEmptyURL
	}

	res, err := w.client.LoadRepository(ctx, repoURL)
	if err != nil {
		w.notes.Errorf("Repository load failed: %v", err)
		return session.Codebase{}, err
	}

	cb := session.Codebase{
		Source:    repoURL,
		FileCount: res.FileCount,
		Files:     res.Files,
	}
	w.sess.SetActive(cb)
	w.notes.Successf("%d files loaded from repository", res.FileCount)
	return cb, nil
}
