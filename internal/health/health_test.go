package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"proof/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassesReportThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"backend": {"status":"ok","message":"API is running"},
			"database": {"status":"ok","message":"Database connected"},
			"llm": {"status":"error","message":"Ollama not reachable"},
			"codebase_loaded": true,
			"file_count": 42
		}`))
	}))
	defer srv.Close()

	h := Check(context.Background(), api.New(srv.URL))
	assert.Equal(t, api.StatusOK, h.Backend.Status)
	assert.Equal(t, api.StatusError, h.LLM.Status)
	assert.True(t, h.CodebaseLoaded)
	assert.Equal(t, 42, h.FileCount)
	assert.False(t, h.OK())
}

func TestCheckUnreachableSynthesizesReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	h := Check(context.Background(), api.New(srv.URL))
	assert.Equal(t, api.StatusError, h.Backend.Status)
	assert.Equal(t, api.StatusError, h.Database.Status)
	assert.Equal(t, api.StatusError, h.LLM.Status)
	assert.Equal(t, "Could not reach backend", h.Database.Message)
	assert.Equal(t, "Could not reach backend", h.LLM.Message)
	assert.NotEmpty(t, h.Backend.Message)
	assert.False(t, h.OK())
	assert.False(t, h.CodebaseLoaded)
}

func TestMonitorPollsOnInterval(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"backend":{"status":"ok"},"database":{"status":"ok"},"llm":{"status":"ok"}}`))
	}))
	defer srv.Close()

	var mu sync.Mutex
	var reports []api.Health
	m := NewMonitor(api.New(srv.URL), 15*time.Millisecond, func(h api.Health) {
		mu.Lock()
		reports = append(reports, h)
		mu.Unlock()
	})
	m.Start()
	defer m.Stop()

	// One immediate check plus at least one ticked re-check.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reports) >= 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, reports[0].OK())
}

func TestMonitorStopSuppressesFurtherReports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"backend":{"status":"ok"},"database":{"status":"ok"},"llm":{"status":"ok"}}`))
	}))
	defer srv.Close()

	var mu sync.Mutex
	var count int
	m := NewMonitor(api.New(srv.URL), 10*time.Millisecond, func(h api.Health) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	m.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 1
	}, time.Second, 5*time.Millisecond)

	m.Stop()
	mu.Lock()
	after := count
	mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, count)
}

func TestMonitorStopIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"backend":{"status":"ok"},"database":{"status":"ok"},"llm":{"status":"ok"}}`))
	}))
	defer srv.Close()

	m := NewMonitor(api.New(srv.URL), time.Minute, func(api.Health) {})
	m.Start()
	m.Stop()
	m.Stop()
}

func TestMonitorStopWithoutStart(t *testing.T) {
	m := NewMonitor(api.New("http://localhost:0"), time.Minute, func(api.Health) {})
	m.Stop()
}

func TestDefaultIntervalSelected(t *testing.T) {
	m := NewMonitor(api.New("http://localhost:0"), 0, func(api.Health) {})
	assert.Equal(t, DefaultInterval, m.interval)
}
