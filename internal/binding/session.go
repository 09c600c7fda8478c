package binding

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session carries the inputs of one map being edited and the latest binding.
// Every change bumps the generation; a recompute started from an older
// generation never replaces a newer published result.
type Session struct {
	ID string

	mu        sync.Mutex
	input     Input
	gen       uint64
	published uint64
	result    *Result
}

// NewSession starts a session at generation 1.
func NewSession(in Input) *Session {
	return &Session{ID: uuid.NewString(), input: in, gen: 1}
}

// Update mutates the inputs and returns the new generation.
func (s *Session) Update(fn func(*Input)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.input)
	s.gen++
	return s.gen
}

// Input returns a snapshot of the current inputs.
func (s *Session) Input() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Recompute binds the current inputs from scratch. The computed result is
// returned even when a newer one was published meanwhile; only the newest
// generation is kept by Result.
func (s *Session) Recompute(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	in, gen := s.input, s.gen
	s.mu.Unlock()

	res, err := Bind(ctx, in)
	if err != nil {
		return nil, err
	}
	res.Generation = gen

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen > s.published {
		s.published = gen
		s.result = res
	} else {
		zap.L().Debug("binding: discarded stale result",
			zap.String("session", s.ID),
			zap.Uint64("generation", gen),
			zap.Uint64("published", s.published),
		)
	}
	return res, nil
}

// Result returns the latest published binding, or nil before the first
// successful recompute.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}
