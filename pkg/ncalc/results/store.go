// Package results stores evaluation results per session so that later
// expressions can refer back to them with the @ result reference.
package results

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Store persists evaluation results.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores value as the next result of the session and returns
	// the stored record. Sequences start at 1.
	Append(ctx context.Context, sessionID uuid.UUID, expr string, value any) (Record, error)

	// Last returns the most recent result of the session.
	// Returns ErrNotFound if the session has no results.
	Last(ctx context.Context, sessionID uuid.UUID) (Record, error)

	// List returns all results of the session, ordered by sequence.
	// Returns an empty slice (not error) if the session has none.
	List(ctx context.Context, sessionID uuid.UUID) ([]Record, error)

	// DeleteSession removes all results of the session.
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one stored result.
type Record struct {
	SessionID  uuid.UUID
	Sequence   int64
	Expression string
	Value      any
	CreatedAt  time.Time
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a session has no stored result.
	ErrNotFound = errors.New("result not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("result store closed")
)
