package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"proof/internal/api"
	"proof/internal/notify"
	"proof/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkflow(t *testing.T, handler http.HandlerFunc) (*Workflow, *session.Session, *notify.Center, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	sess := session.New()
	notes := notify.NewCenter()
	t.Cleanup(notes.Close)
	return New(api.New(srv.URL), sess, notes), sess, notes, &hits
}

func TestUploadRejectsNonArchiveBeforeNetwork(t *testing.T) {
	w, sess, notes, hits := newTestWorkflow(t, func(rw http.ResponseWriter, r *http.Request) {})

	_, err := w.UploadArchive(context.Background(), "project.tar.gz", strings.NewReader("bytes"))
	assert.ErrorIs(t, err, ErrNotArchive)
	assert.Equal(t, int32(0), hits.Load())
	assert.False(t, sess.Loaded())

	active := notes.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notify.Error, active[0].Kind)
}

func TestUploadAcceptsUppercaseExtension(t *testing.T) {
	w, sess, _, _ := newTestWorkflow(t, func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write([]byte(`{"source":"PROJECT.ZIP","file_count":3,"files":["a.go","b.go","c.go"]}`))
	})

	cb, err := w.UploadArchive(context.Background(), "PROJECT.ZIP", strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.Equal(t, 3, cb.FileCount)
	assert.True(t, sess.Loaded())
}

func TestUploadSuccessActivatesSession(t *testing.T) {
	w, sess, notes, _ := newTestWorkflow(t, func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write([]byte(`{"source":"project.zip","file_count":42,"files":["main.go"]}`))
	})

	cb, err := w.UploadArchive(context.Background(), "project.zip", strings.NewReader("zipbytes"))
	require.NoError(t, err)
	assert.Equal(t, "project.zip", cb.Source)
	assert.Equal(t, 42, cb.FileCount)

	got, ok := sess.Active()
	require.True(t, ok)
	assert.Equal(t, cb, got)

	active := notes.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notify.Success, active[0].Kind)
	assert.Contains(t, active[0].Message, "42 files")
}

func TestUploadFailureLeavesSessionUntouched(t *testing.T) {
	w, sess, notes, _ := newTestWorkflow(t, func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadRequest)
		_, _ = rw.Write([]byte(`{"detail":"Archive is empty."}`))
	})
	sess.SetActive(session.Codebase{Source: "previous.zip", FileCount: 7})

	_, err := w.UploadArchive(context.Background(), "project.zip", strings.NewReader("zipbytes"))
	require.Error(t, err)

	// The previously active codebase stays in place on failure.
	cb, ok := sess.Active()
	require.True(t, ok)
	assert.Equal(t, "previous.zip", cb.Source)

	active := notes.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notify.Error, active[0].Kind)
	assert.Contains(t, active[0].Message, "Archive is empty.")
}

func TestLoadRepositoryRejectsEmptyURL(t *testing.T) {
	w, sess, notes, hits := newTestWorkflow(t, func(rw http.ResponseWriter, r *http.Request) {})

	_, err := w.LoadRepository(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyURL)
	assert.Equal(t, int32(0), hits.Load())
	assert.False(t, sess.Loaded())
	require.Len(t, notes.Active(), 1)
}

func TestLoadRepositoryTrimsURL(t *testing.T) {
	var gotURL string
	w, sess, _, _ := newTestWorkflow(t, func(rw http.ResponseWriter, r *http.Request) {
		var body struct {
			RepoURL string `json:"repo_url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotURL = body.RepoURL
		_, _ = rw.Write([]byte(`{"source":"github.com/pallets/flask","file_count":120,"files":[]}`))
	})

	cb, err := w.LoadRepository(context.Background(), "  https://github.com/pallets/flask  ")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/pallets/flask", gotURL)
	assert.Equal(t, "https://github.com/pallets/flask", cb.Source)
	assert.Equal(t, 120, cb.FileCount)
	assert.True(t, sess.Loaded())
}

func TestLoadRepositoryReplacesArchiveCodebase(t *testing.T) {
	w, sess, _, _ := newTestWorkflow(t, func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write([]byte(`{"source":"github.com/pallets/flask","file_count":120,"files":[]}`))
	})
	sess.SetActive(session.Codebase{Source: "project.zip", FileCount: 42, Files: []string{"main.go"}})

	_, err := w.LoadRepository(context.Background(), "https://github.com/pallets/flask")
	require.NoError(t, err)

	cb, ok := sess.Active()
	require.True(t, ok)
	assert.Equal(t, "https://github.com/pallets/flask", cb.Source)
	assert.Equal(t, 120, cb.FileCount)
}
