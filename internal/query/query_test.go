package query

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"proof/internal/api"
	"proof/internal/notify"
	"proof/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) (*api.Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return api.New(srv.URL), &hits
}

func loadedSession() *session.Session {
	s := session.New()
	s.SetActive(session.Codebase{Source: "project.zip", FileCount: 42, Files: []string{"main.go"}})
	return s
}

func lastNote(t *testing.T, notes *notify.Center) notify.Event {
	t.Helper()
	active := notes.Active()
	require.NotEmpty(t, active)
	return active[len(active)-1]
}

func TestTagSetNormalization(t *testing.T) {
	var set TagSet
	for _, raw := range []string{"Foo", " foo ", "bar", ""} {
		set.Add(raw)
	}
	assert.Equal(t, []string{"foo", "bar"}, set.List())
}

func TestTagSetRemove(t *testing.T) {
	var set TagSet
	set.Add("security")
	set.Add("auth")

	assert.True(t, set.Remove("security"))
	assert.False(t, set.Remove("security"))
	assert.Equal(t, []string{"auth"}, set.List())

	assert.True(t, set.RemoveLast())
	assert.False(t, set.RemoveLast())
	assert.Zero(t, set.Len())
}

func TestEmptyQuestionNeverReachesNetwork(t *testing.T) {
	client, hits := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	_, err := w.Ask(context.Background(), "   \t  ", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, int32(0), hits.Load())
	assert.Len(t, notes.Active(), 1)
	assert.Equal(t, notify.Error, lastNote(t, notes).Kind)
}

func TestAskRejectedWithoutCodebase(t *testing.T) {
	client, hits := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, session.New(), notes)

	_, err := w.Ask(context.Background(), "Where is auth handled?", []string{"security"})
	assert.ErrorIs(t, err, ErrNoCodebase)
	assert.Equal(t, int32(0), hits.Load())

	_, err = w.Refactor(context.Background(), "error handling")
	assert.ErrorIs(t, err, ErrNoCodebase)
	assert.Equal(t, int32(0), hits.Load())
}

func TestAskSuccessStoresAnswer(t *testing.T) {
	client, hits := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"in auth.py","tags":["security"],"snippets":[{"file":"auth.py","start_line":10,"end_line":25,"code":"def login(): ..."}]}`))
	})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	answer, err := w.Ask(context.Background(), "  Where is auth handled?  ", []string{"Security", "security"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "in auth.py", answer.Answer)

	require.NotNil(t, w.Answer())
	assert.False(t, w.AskLoading())
	assert.Equal(t, notify.Success, lastNote(t, notes).Kind)

	for _, s := range answer.Snippets {
		if s.HasLines() {
			assert.GreaterOrEqual(t, s.EndLine, s.StartLine)
		}
	}
}

func TestAskFailureLeavesSlotEmptyAndNotifies(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Error processing question: context too large"}`))
	})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	_, err := w.Ask(context.Background(), "Where is auth handled?", nil)
	require.Error(t, err)
	assert.Nil(t, w.Answer())
	assert.False(t, w.AskLoading())

	note := lastNote(t, notes)
	assert.Equal(t, notify.Error, note.Kind)
	assert.Contains(t, note.Message, "context too large")
}

func TestStaleAskCompletionDiscarded(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	first, ok := w.StartAsk("first question", nil)
	require.True(t, ok)
	second, ok := w.StartAsk("second question", nil)
	require.True(t, ok)

	// The superseded completion must not land.
	applied := w.ResolveAsk(first, api.Answer{Answer: "stale"}, nil)
	assert.False(t, applied)
	assert.Nil(t, w.Answer())
	assert.True(t, w.AskLoading())

	applied = w.ResolveAsk(second, api.Answer{Answer: "fresh"}, nil)
	assert.True(t, applied)
	require.NotNil(t, w.Answer())
	assert.Equal(t, "fresh", w.Answer().Answer)
	assert.False(t, w.AskLoading())
}

func TestStartAskClearsPriorAnswer(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	ticket, ok := w.StartAsk("q1", nil)
	require.True(t, ok)
	require.True(t, w.ResolveAsk(ticket, api.Answer{Answer: "a1"}, nil))
	require.NotNil(t, w.Answer())

	_, ok = w.StartAsk("q2", nil)
	require.True(t, ok)
	assert.Nil(t, w.Answer())
}

func TestStartAskNormalizesTicketTags(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	ticket, ok := w.StartAsk("  trimmed?  ", []string{"Foo", " foo ", "bar", ""})
	require.True(t, ok)
	assert.Equal(t, "trimmed?", ticket.Question)
	assert.Equal(t, []string{"foo", "bar"}, ticket.Tags)
}

func TestRefactorLifecycle(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"suggestions":"split run() into phases","snippets":[]}`))
	})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	res, err := w.Refactor(context.Background(), "long functions")
	require.NoError(t, err)
	assert.Equal(t, "split run() into phases", res.Suggestions)
	require.NotNil(t, w.Suggestions())
	assert.False(t, w.RefactorLoading())
}

func TestSlotsAreIndependent(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	askTicket, ok := w.StartAsk("question", nil)
	require.True(t, ok)
	refTicket, ok := w.StartRefactor("topic")
	require.True(t, ok)

	assert.True(t, w.AskLoading())
	assert.True(t, w.RefactorLoading())

	require.True(t, w.ResolveRefactor(refTicket, api.RefactorResult{Suggestions: "s"}, nil))
	assert.True(t, w.AskLoading())
	assert.False(t, w.RefactorLoading())

	require.True(t, w.ResolveAsk(askTicket, api.Answer{Answer: "a"}, nil))
	assert.False(t, w.AskLoading())
}

func TestPendingTags(t *testing.T) {
	client, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	notes := notify.NewCenter()
	defer notes.Close()
	w := New(client, loadedSession(), notes)

	assert.True(t, w.AddTag(" Security "))
	assert.False(t, w.AddTag("security"))
	assert.True(t, w.AddTag("db"))
	assert.Equal(t, []string{"security", "db"}, w.PendingTags())

	assert.True(t, w.RemoveTag("security"))
	assert.True(t, w.RemoveLastTag())
	assert.Empty(t, w.PendingTags())
}

func TestAskAfterIngestScenario(t *testing.T) {
	client, hits := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"auth lives in middleware","tags":["security"],"snippets":[]}`))
	})
	notes := notify.NewCenter()
	defer notes.Close()

	sess := session.New()
	w := New(client, sess, notes)

	_, err := w.Ask(context.Background(), "Where is auth handled?", []string{"security"})
	assert.ErrorIs(t, err, ErrNoCodebase)
	assert.Equal(t, int32(0), hits.Load())

	sess.SetActive(session.Codebase{Source: "project.zip", FileCount: 42})

	answer, err := w.Ask(context.Background(), "Where is auth handled?", []string{"security"})
	require.NoError(t, err)
	assert.Equal(t, "auth lives in middleware", answer.Answer)
	assert.Equal(t, int32(1), hits.Load())

	// Notifications from both attempts are still visible within the TTL.
	require.Eventually(t, func() bool {
		return len(notes.Active()) == 2
	}, time.Second, 5*time.Millisecond)
}
