package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists results to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite result store.
// The path should be a file path (e.g., "./results.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would open its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			session_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			expression TEXT NOT NULL,
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (session_id, sequence)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, sessionID uuid.UUID, expr string, value any) (Record, error) {
	kind, text, err := Encode(value)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	now := time.Now().UTC()
	var seq int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO results (session_id, sequence, expression, kind, value, created_at)
		VALUES (
			?,
			COALESCE((SELECT MAX(sequence) FROM results WHERE session_id = ?), 0) + 1,
			?, ?, ?, ?
		)
		RETURNING sequence
	`, sessionID.String(), sessionID.String(), expr, kind, text, now.Format(time.RFC3339Nano)).Scan(&seq)
	if err != nil {
		return Record{}, fmt.Errorf("append result: %w", err)
	}

	v, err := Decode(kind, text)
	if err != nil {
		return Record{}, err
	}
	return Record{
		SessionID:  sessionID,
		Sequence:   seq,
		Expression: expr,
		Value:      v,
		CreatedAt:  now,
	}, nil
}

// Last implements Store.
func (s *SQLiteStore) Last(ctx context.Context, sessionID uuid.UUID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT sequence, expression, kind, value, created_at
		FROM results
		WHERE session_id = ?
		ORDER BY sequence DESC
		LIMIT 1
	`, sessionID.String())
	rec, err := scanRecord(row, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load result: %w", err)
	}
	return rec, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, sessionID uuid.UUID) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence, expression, kind, value, created_at
		FROM results
		WHERE session_id = ?
		ORDER BY sequence
	`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, sessionID)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return records, nil
}

// DeleteSession implements Store.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE session_id = ?`, sessionID.String()); err != nil {
		return fmt.Errorf("delete session results: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, sessionID uuid.UUID) (Record, error) {
	var (
		rec       Record
		kind      string
		text      string
		createdAt string
	)
	if err := row.Scan(&rec.Sequence, &rec.Expression, &kind, &text, &createdAt); err != nil {
		return Record{}, err
	}
	v, err := Decode(kind, text)
	if err != nil {
		return Record{}, err
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.SessionID = sessionID
	rec.Value = v
	rec.CreatedAt = created
	return rec, nil
}
