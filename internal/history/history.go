// Package history fetches, searches and tag-filters the bounded view of
// past Q&A records. Free-text search and the single active tag are two
// independent filter dimensions reconciled into one server query: every
// filter mutation yields exactly one refresh carrying the new combined
// state.
package history

import (
	"context"
	"sync"

	"proof/internal/api"
	"proof/internal/notify"
)

// Ticket identifies one refresh request with the combined filter state it
// was issued under. A response is applied only while its token is current.
type Ticket struct {
	Token  uint64
	Search string
	Tag    string
}

// Engine owns the history list, the filter state and the tag vocabulary.
// Safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	client *api.Client
	notes  *notify.Center

	search    string
	activeTag string
	entries   []api.HistoryEntry
	vocab     []string

	token   uint64
	loading bool

	expandedID int64
	expanded   bool
}

func New(client *api.Client, notes *notify.Center) *Engine {
	return &Engine{client: client, notes: notes}
}

// Refresh opens a refresh under the current filter state, e.g. on initial
// mount or manual reload.
func (e *Engine) Refresh() Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.begin()
}

// SetSearch replaces the free-text filter and opens a refresh combining it
// with the active tag.
func (e *Engine) SetSearch(s string) Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search = s
	return e.begin()
}

// ToggleTag selects a tag exclusively: selecting the active tag clears the
// filter back to "all", selecting a different tag replaces it. The opened
// refresh carries the new tag combined with the current search text.
func (e *Engine) ToggleTag(tag string) Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activeTag == tag {
		e.activeTag = ""
	} else {
		e.activeTag = tag
	}
	return e.begin()
}

// begin must be called with the lock held.
func (e *Engine) begin() Ticket {
	e.token++
	e.loading = true
	return Ticket{Token: e.token, Search: e.search, Tag: e.activeTag}
}

// Fetch issues the combined server query for a ticket. It does not touch
// engine state; pass the result to Apply.
func (e *Engine) Fetch(ctx context.Context, t Ticket) ([]api.HistoryEntry, error) {
	return e.client.History(ctx, t.Search, t.Tag)
}

// Apply installs a completed refresh. Stale tickets are discarded. On
// failure the previous entries are left untouched and the error is
// surfaced as a notification.
func (e *Engine) Apply(t Ticket, entries []api.HistoryEntry, err error) bool {
	e.mu.Lock()
	if t.Token != e.token {
		e.mu.Unlock()
		return false
	}
	e.loading = false
	if err != nil {
		e.mu.Unlock()
		e.notes.Errorf("Failed to load history: %v", err)
		return true
	}
	e.entries = entries
	e.mu.Unlock()
	return true
}

// Load runs Fetch and Apply in one step, for callers outside an event
// loop.
func (e *Engine) Load(ctx context.Context, t Ticket) error {
	entries, err := e.Fetch(ctx, t)
	e.Apply(t, entries, err)
	return err
}

// RefreshVocabulary refetches the distinct-tag vocabulary. Independent of
// entry refreshes; a failure leaves the previous vocabulary in place.
func (e *Engine) RefreshVocabulary(ctx context.Context) error {
	tags, err := e.client.Tags(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.vocab = tags
	e.mu.Unlock()
	return nil
}

// Entries returns the current bounded history view.
func (e *Engine) Entries() []api.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]api.HistoryEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Vocabulary returns the known distinct tags.
func (e *Engine) Vocabulary() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.vocab))
	copy(out, e.vocab)
	return out
}

// Filters returns the current search text and active tag ("" means all).
func (e *Engine) Filters() (search, tag string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search, e.activeTag
}

// Loading reports whether a refresh is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// ToggleExpanded flips the expansion state for one entry. Expanding an
// entry implicitly collapses any other; at most one entry is expanded.
func (e *Engine) ToggleExpanded(id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.expanded && e.expandedID == id {
		e.expanded = false
		return
	}
	e.expandedID = id
	e.expanded = true
}

// Expanded returns the expanded entry ID, or false when all are collapsed.
func (e *Engine) Expanded() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expandedID, e.expanded
}
