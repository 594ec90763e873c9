// Package repository holds the in-memory session store.
package repository

import (
	"context"
	"time"

	"github.com/okian/prepdeck/internal/domain/model"
	"github.com/okian/prepdeck/internal/domain/sequencer"
)

// FinishReason records why a session stopped accepting answers.
type FinishReason string

// Finish reasons.
const (
	FinishCompleted FinishReason = "completed"
	FinishExhausted FinishReason = "exhausted"
	FinishTimedOut  FinishReason = "timed_out"
	FinishEnded     FinishReason = "ended"
)

// Session is one adaptive test run.
type Session struct {
	ID    string
	Topic string
	// Total is the number of questions the session asks at most.
	Total   int
	Pool    []model.Question
	State   sequencer.State
	Answers []model.AnswerRecord

	CreatedAt time.Time
	Deadline  time.Time
	// ExpiresAt is when the sweeper may drop the session.
	ExpiresAt time.Time

	Finished     bool
	FinishReason FinishReason
	FinishedAt   time.Time
}

// Finish marks the session finished. Later calls keep the first reason.
func (s *Session) Finish(reason FinishReason, at time.Time) {
	if s.Finished {
		return
	}
	s.Finished = true
	s.FinishReason = reason
	s.FinishedAt = at
}

// Clone returns a copy that shares only the immutable pool.
func (s *Session) Clone() Session {
	out := *s
	out.State = s.State.Clone()
	out.Answers = append([]model.AnswerRecord(nil), s.Answers...)
	return out
}

// Store provides access to live sessions.
type Store interface {
	// Create adds a new session. Returns ErrCapacity when full and ErrExists on id reuse.
	Create(ctx context.Context, s *Session) error
	// Get returns a copy of the session or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)
	// Update runs fn on the stored session under the store lock. Changes made
	// by fn are kept even when fn returns an error. Returns a copy taken after fn.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	// Delete removes a session or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}
