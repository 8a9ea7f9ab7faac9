// Package session persists chat conversations.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the requested session does not exist.
var ErrNotFound = errors.New("session not found")

// Querier is the subset of pgxpool.Pool the store depends on.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides access to the chat_sessions table.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates a session store.
func NewStore(db Querier, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// List returns all sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM chat_sessions
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Messages,
			&sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// Get returns one session by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	var sess Session
	err := s.db.QueryRow(ctx, `
		SELECT id, title, messages, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1`,
		id).Scan(&sess.ID, &sess.Title, &sess.Messages, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &sess, nil
}

// Create inserts a new session and returns it with generated fields.
// A nil messages slice is stored as an empty array.
func (s *Store) Create(ctx context.Context, title string, messages []Message) (*Session, error) {
	if title == "" {
		title = "New conversation"
	}
	if messages == nil {
		messages = []Message{}
	}

	var sess Session
	err := s.db.QueryRow(ctx, `
		INSERT INTO chat_sessions (title, messages)
		VALUES ($1, $2)
		RETURNING id, title, messages, created_at, updated_at`,
		title, messages).Scan(&sess.ID, &sess.Title, &sess.Messages,
		&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Debug("session created", "session_id", sess.ID)
	return &sess, nil
}

// Update replaces title and messages and bumps updated_at.
func (s *Store) Update(ctx context.Context, id uuid.UUID, title string, messages []Message) (*Session, error) {
	if messages == nil {
		messages = []Message{}
	}

	var sess Session
	err := s.db.QueryRow(ctx, `
		UPDATE chat_sessions
		SET title = $2, messages = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, title, messages, created_at, updated_at`,
		id, title, messages).Scan(&sess.ID, &sess.Title, &sess.Messages,
		&sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session. Deleting a missing session returns
// ErrNotFound.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Debug("session deleted", "session_id", id)
	return nil
}
