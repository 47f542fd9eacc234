package results

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory result store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID][]storedResult
	closed   bool
}

// storedResult holds a result in its encoded form, so that records handed
// out never alias values held by the store.
type storedResult struct {
	sequence   int64
	expression string
	kind       string
	text       string
	createdAt  time.Time
}

// NewMemoryStore creates a new in-memory result store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID][]storedResult),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, sessionID uuid.UUID, expr string, value any) (Record, error) {
	kind, text, err := Encode(value)
	if err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	results := m.sessions[sessionID]
	r := storedResult{
		sequence:   int64(len(results)) + 1,
		expression: expr,
		kind:       kind,
		text:       text,
		createdAt:  time.Now().UTC(),
	}
	m.sessions[sessionID] = append(results, r)
	return r.record(sessionID)
}

// Last implements Store.
func (m *MemoryStore) Last(_ context.Context, sessionID uuid.UUID) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	results := m.sessions[sessionID]
	if len(results) == 0 {
		return Record{}, ErrNotFound
	}
	return results[len(results)-1].record(sessionID)
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, sessionID uuid.UUID) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	results := m.sessions[sessionID]
	records := make([]Record, 0, len(results))
	for _, r := range results {
		rec, err := r.record(sessionID)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteSession implements Store.
func (m *MemoryStore) DeleteSession(_ context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.sessions, sessionID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.sessions = nil
	return nil
}

// Len returns the total number of results across all sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, results := range m.sessions {
		count += len(results)
	}
	return count
}

func (r storedResult) record(sessionID uuid.UUID) (Record, error) {
	v, err := Decode(r.kind, r.text)
	if err != nil {
		return Record{}, err
	}
	return Record{
		SessionID:  sessionID,
		Sequence:   r.sequence,
		Expression: r.expression,
		Value:      v,
		CreatedAt:  r.createdAt,
	}, nil
}
