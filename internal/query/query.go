// Package query drives question-asking and refactor-suggestion requests.
// Each action has its own slot with a loading flag and a monotonically
// increasing request token; a completion is applied only when its token
// matches the slot's current token, so a stale in-flight response can
// never overwrite a newer one.
package query

import (
	"context"
	"errors"
	"strings"

	"proof/internal/api"
	"proof/internal/notify"
	"proof/internal/session"
)

// Validation failures detected before any network call.
var (
	ErrEmptyInput = errors.New("input is empty")
	ErrNoCodebase = errors.New("no codebase loaded")
)

type slot struct {
	loading bool
	token   uint64
}

func (s *slot) begin() uint64 {
	s.token++
	s.loading = true
	return s.token
}

// current reports whether token identifies the slot's newest request, and
// clears the loading flag if so.
func (s *slot) finish(token uint64) bool {
	if token != s.token {
		return false
	}
	s.loading = false
	return true
}

// AskTicket identifies one started ask request.
type AskTicket struct {
	Token    uint64
	Question string
	Tags     []string
}

// RefactorTicket identifies one started refactor request.
type RefactorTicket struct {
	Token uint64
	Topic string
}

// Workflow owns the ask and refactor action slots. The two slots are
// independent and may have overlapping in-flight requests.
type Workflow struct {
	client *api.Client
	sess   *session.Session
	notes  *notify.Center

	askSlot      slot
	refactorSlot slot

	pending TagSet

	answer      *api.Answer
	suggestions *api.RefactorResult
}

func New(client *api.Client, sess *session.Session, notes *notify.Center) *Workflow {
	return &Workflow{client: client, sess: sess, notes: notes}
}

// Client exposes the transport client for callers that submit tickets
// asynchronously.
func (w *Workflow) Client() *api.Client { return w.client }

// StartAsk validates the question and opens the ask slot. Each violation
// emits exactly one error notification and leaves all state unchanged.
// On success the previous answer is discarded and the trimmed question
// plus normalized tags are returned for submission.
func (w *Workflow) StartAsk(question string, tags []string) (AskTicket, bool) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		w.notes.Errorf("Please enter a question")
		return AskTicket{}, false
	}
	if !w.sess.Loaded() {
		w.notes.Errorf("Load a codebase first")
		return AskTicket{}, false
	}

	var set TagSet
	for _, t := range tags {
		set.Add(t)
	}

	w.answer = nil
	return AskTicket{
		Token:    w.askSlot.begin(),
		Question: trimmed,
		Tags:     set.List(),
	}, true
}

// ResolveAsk applies a completed ask request. Stale completions (token
// superseded by a newer StartAsk) are discarded and the return value is
// false. The loading flag is cleared on both success and failure.
func (w *Workflow) ResolveAsk(t AskTicket, res api.Answer, err error) bool {
	if !w.askSlot.finish(t.Token) {
		return false
	}
	if err != nil {
		w.notes.Errorf("Error: %v", err)
		return true
	}
	w.answer = &res
	w.notes.Successf("Answer ready!")
	return true
}

// Ask runs the full ask cycle synchronously: validate, submit, resolve.
func (w *Workflow) Ask(ctx context.Context, question string, tags []string) (api.Answer, error) {
	t, ok := w.StartAsk(question, tags)
	if !ok {
		if strings.TrimSpace(question) == "" {
			return api.Answer{}, ErrEmptyInput
		}
		return api.Answer{}, ErrNoCodebase
	}
	res, err := w.client.Ask(ctx, t.Question, t.Tags)
	w.ResolveAsk(t, res, err)
	return res, err
}

// StartRefactor validates the topic and opens the refactor slot, following
// the same contract as StartAsk.
func (w *Workflow) StartRefactor(topic string) (RefactorTicket, bool) {
	trimmed := strings.TrimSpace(topic)
	if trimmed == "" {
		w.notes.Errorf("Please describe what to refactor")
		return RefactorTicket{}, false
	}
	if !w.sess.Loaded() {
		w.notes.Errorf("Load a codebase first")
		return RefactorTicket{}, false
	}

	w.suggestions = nil
	return RefactorTicket{
		Token: w.refactorSlot.begin(),
		Topic: trimmed,
	}, true
}

// ResolveRefactor applies a completed refactor request, discarding stale
// completions.
func (w *Workflow) ResolveRefactor(t RefactorTicket, res api.RefactorResult, err error) bool {
	if !w.refactorSlot.finish(t.Token) {
		return false
	}
	if err != nil {
		w.notes.Errorf("Error: %v", err)
		return true
	}
	w.suggestions = &res
	w.notes.Successf("Refactor suggestions ready!")
	return true
}

// Refactor runs the full refactor cycle synchronously.
func (w *Workflow) Refactor(ctx context.Context, topic string) (api.RefactorResult, error) {
	t, ok := w.StartRefactor(topic)
	if !ok {
		if strings.TrimSpace(topic) == "" {
			return api.RefactorResult{}, ErrEmptyInput
		}
		return api.RefactorResult{}, ErrNoCodebase
	}
	res, err := w.client.Refactor(ctx, t.Topic)
	w.ResolveRefactor(t, res, err)
	return res, err
}

// AddTag adds a pending tag for the next question; input is trimmed and
// lower-cased, empties and duplicates are ignored.
func (w *Workflow) AddTag(raw string) bool { return w.pending.Add(raw) }

// RemoveTag removes a pending tag by exact match.
func (w *Workflow) RemoveTag(tag string) bool { return w.pending.Remove(tag) }

// RemoveLastTag drops the most recently added pending tag.
func (w *Workflow) RemoveLastTag() bool { return w.pending.RemoveLast() }

// PendingTags returns the pending tag set in insertion order. It is
// independent of the vocabulary used for history filtering.
func (w *Workflow) PendingTags() []string { return w.pending.List() }

// AskLoading reports whether an ask request is in flight.
func (w *Workflow) AskLoading() bool { return w.askSlot.loading }

// RefactorLoading reports whether a refactor request is in flight.
func (w *Workflow) RefactorLoading() bool { return w.refactorSlot.loading }

// Answer returns the latest ask result, or nil.
func (w *Workflow) Answer() *api.Answer { return w.answer }

// Suggestions returns the latest refactor result, or nil.
func (w *Workflow) Suggestions() *api.RefactorResult { return w.suggestions }
