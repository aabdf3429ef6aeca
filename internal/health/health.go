// Package health polls the backend health boundary on a fixed interval,
// independent of user action.
package health

import (
	"context"
	"sync"
	"time"

	"proof/internal/api"
)

// DefaultInterval is how often the monitor re-checks.
const DefaultInterval = 30 * time.Second

const checkTimeout = 10 * time.Second

// Check queries the health boundary. It never returns an error: when the
// boundary itself is unreachable it synthesizes a report marking all three
// subsystems down.
func Check(ctx context.Context, client *api.Client) api.Health {
	h, err := client.Health(ctx)
	if err != nil {
		return Unreachable(err)
	}
	return h
}

// Unreachable builds the degraded report used when the boundary cannot be
// reached at all.
func Unreachable(err error) api.Health {
	return api.Health{
		Backend:  api.ComponentStatus{Status: api.StatusError, Message: err.Error()},
		Database: api.ComponentStatus{Status: api.StatusError, Message: "Could not reach backend"},
		LLM:      api.ComponentStatus{Status: api.StatusError, Message: "Could not reach backend"},
	}
}

// Monitor runs Check once on Start and then on a fixed interval until
// stopped. Reports are delivered through the callback; after Stop returns
// the callback is never invoked again.
type Monitor struct {
	client   *api.Client
	interval time.Duration
	report   func(api.Health)

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewMonitor creates a monitor. interval <= 0 selects DefaultInterval.
func NewMonitor(client *api.Client, interval time.Duration, report func(api.Health)) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		client:   client,
		interval: interval,
		report:   report,
		done:     make(chan struct{}),
	}
}

// Start launches the polling goroutine.
func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	go func() {
		defer close(m.done)

		m.check(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.check(ctx)
			}
		}
	}()
}

func (m *Monitor) check(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	h := Check(cctx, m.client)

	// Suppress the report if we were torn down while the request was in
	// flight, so no update lands on disposed state.
	select {
	case <-ctx.Done():
	default:
		m.report(h)
	}
}

// Stop cancels the polling loop and waits for it to exit. Safe to call
// more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel == nil {
			return
		}
		m.cancel()
		<-m.done
	})
}
