package ncalc

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/results"
)

// Session evaluates a series of expressions where @ refers to the
// previous result. Results are kept in a results.Store, so a session can
// be resumed by another process that opens the same store.
//
// Parameters are shared by every expression of the session, so a value
// assigned by one expression is visible to the next.
type Session struct {
	// ID identifies the session in the store.
	ID uuid.UUID

	// Parameters is shared by every evaluation of the session.
	Parameters map[string]any

	store results.Store
	opts  []Option
	mu    sync.Mutex
}

// NewSession starts a new session backed by store. opts apply to every
// expression evaluated in the session.
//
// Example:
//
//	s := ncalc.NewSession(results.NewMemoryStore())
//	s.Evaluate(ctx, "2 + 3") // int32(5)
//	s.Evaluate(ctx, "@ * 2") // int32(10)
func NewSession(store results.Store, opts ...Option) *Session {
	return ResumeSession(store, uuid.New(), opts...)
}

// ResumeSession continues the session id stored in store.
func ResumeSession(store results.Store, id uuid.UUID, opts ...Option) *Session {
	return &Session{
		ID:         id,
		Parameters: make(map[string]any),
		store:      store,
		opts:       opts,
	}
}

// Evaluate parses and evaluates text with result references enabled and
// appends the result to the store. A reference to @ before any result has
// been stored fails with ErrNoResult.
func (s *Session) Evaluate(ctx context.Context, text string) (any, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	opts := append(slices.Clone(s.opts), withResultReference(), WithResultStore(s.store, s.ID))
	e := New(text, opts...)
	for k, v := range e.Parameters {
		if _, ok := s.Parameters[k]; !ok {
			s.Parameters[k] = v
		}
	}
	e.Parameters = s.Parameters
	return e.EvaluateContext(ctx)
}

func withResultReference() Option {
	return func(c *exprConfig) {
		c.opts.Advanced.Flags |= options.UseResultReference
	}
}

// Last returns the most recent result of the session.
func (s *Session) Last(ctx context.Context) (results.Record, error) {
	if s.store == nil {
		return results.Record{}, ErrNoStore
	}
	rec, err := s.store.Last(ctx, s.ID)
	if errors.Is(err, results.ErrNotFound) {
		return results.Record{}, ErrNoResult
	}
	return rec, err
}

// History returns every stored result of the session, oldest first.
func (s *Session) History(ctx context.Context) ([]results.Record, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx, s.ID)
}

// Reset removes the stored results of the session. Parameters are kept.
func (s *Session) Reset(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	return s.store.DeleteSession(ctx, s.ID)
}
