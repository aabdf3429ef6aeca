// Package session holds the single active-codebase descriptor. The
// ingestion workflow is the only writer; everything else reads.
package session

import "sync"

// Codebase describes one ingested codebase as an atomic unit.
type Codebase struct {
	// Source is the archive filename or repository URL it was loaded from.
	Source    string
	FileCount int
	Files     []string
}

// Session tracks at most one active codebase. The zero value is unusable;
// use New.
type Session struct {
	mu     sync.RWMutex
	active *Codebase
}

func New() *Session {
	return &Session{}
}

// Active returns the current codebase descriptor, or false when none is
// loaded.
func (s *Session) Active() (Codebase, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return Codebase{}, false
	}
	return *s.active, true
}

// Loaded reports whether a codebase is active.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active != nil
}

// SetActive replaces the active descriptor wholesale. There is no partial
// update: every successful ingestion produces a full replacement.
func (s *Session) SetActive(cb Codebase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &cb
}

// Clear drops the active codebase.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
}
