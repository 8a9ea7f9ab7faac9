// Package library persists generated teaching materials: free-form
// saved content and structured learning objective sets.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrMissingFields indicates a required field was empty.
	ErrMissingFields = errors.New("missing required fields")
)

// Querier is the subset of pgxpool.Pool the store depends on.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides access to the saved_content and saved_objectives tables.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates a library store.
func NewStore(db Querier, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// SaveContent stores a generated artifact. The content type defaults to
// "general" when the metadata does not carry one.
func (s *Store) SaveContent(ctx context.Context, title, content string, metadata map[string]any) (*Content, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: title, content", ErrMissingFields)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	contentType := "general"
	if ct, ok := metadata["content_type"].(string); ok && ct != "" {
		contentType = ct
	}

	var saved Content
	err := s.db.QueryRow(ctx, `
		INSERT INTO saved_content (title, content, content_type, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, content, content_type, metadata, created_at`,
		title, content, contentType, metadata).Scan(&saved.ID, &saved.Title,
		&saved.Content, &saved.ContentType, &saved.Metadata, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving content: %w", err)
	}

	s.logger.Debug("content saved",
		"content_id", saved.ID,
		"content_type", saved.ContentType)

	return &saved, nil
}

// ListContent returns saved artifacts, newest first.
func (s *Store) ListContent(ctx context.Context) ([]Content, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, content, content_type, metadata, created_at
		FROM saved_content
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}
	defer rows.Close()

	var items []Content
	for rows.Next() {
		var c Content
		if err := rows.Scan(&c.ID, &c.Title, &c.Content, &c.ContentType,
			&c.Metadata, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content: %w", err)
	}

	return items, nil
}

// SaveObjectivesParams are the fields accepted when saving an objective
// set. Topic, ObjectivesText, and ObjectiveCount are required.
type SaveObjectivesParams struct {
	Topic          string           `json:"topic"`
	ObjectivesText string           `json:"objectives_text"`
	ObjectiveCount int              `json:"objective_count"`
	Level          *string          `json:"level"`
	HadContext     bool             `json:"had_context"`
	Sources        []map[string]any `json:"sources"`
	Title          *string          `json:"title"`
	Notes          *string          `json:"notes"`
	Tags           []string         `json:"tags"`
}

// SaveObjectives stores a generated objective set.
func (s *Store) SaveObjectives(ctx context.Context, p SaveObjectivesParams) (*ObjectiveSet, error) {
	if strings.TrimSpace(p.Topic) == "" || strings.TrimSpace(p.ObjectivesText) == "" || p.ObjectiveCount == 0 {
		return nil, fmt.Errorf("%w: topic, objectives_text, objective_count", ErrMissingFields)
	}
	if p.Sources == nil {
		p.Sources = []map[string]any{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	var set ObjectiveSet
	err := s.db.QueryRow(ctx, `
		INSERT INTO saved_objectives
			(topic, objectives_text, objective_count, level, had_context, sources, title, notes, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, topic, objectives_text, objective_count, level,
		          had_context, sources, title, notes, tags, created_at`,
		p.Topic, p.ObjectivesText, p.ObjectiveCount, p.Level, p.HadContext,
		p.Sources, p.Title, p.Notes, p.Tags).Scan(&set.ID, &set.Topic,
		&set.ObjectivesText, &set.ObjectiveCount, &set.Level, &set.HadContext,
		&set.Sources, &set.Title, &set.Notes, &set.Tags, &set.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving objectives: %w", err)
	}

	s.logger.Debug("objectives saved", "objective_set_id", set.ID, "topic", set.Topic)
	return &set, nil
}

// ListObjectives returns saved objective sets, newest first.
func (s *Store) ListObjectives(ctx context.Context) ([]ObjectiveSet, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, topic, objectives_text, objective_count, level,
		       had_context, sources, title, notes, tags, created_at
		FROM saved_objectives
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing objectives: %w", err)
	}
	defer rows.Close()

	var sets []ObjectiveSet
	for rows.Next() {
		var set ObjectiveSet
		if err := rows.Scan(&set.ID, &set.Topic, &set.ObjectivesText,
			&set.ObjectiveCount, &set.Level, &set.HadContext, &set.Sources,
			&set.Title, &set.Notes, &set.Tags, &set.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning objective set: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating objective sets: %w", err)
	}

	return sets, nil
}

// DeleteObjectives removes one objective set.
func (s *Store) DeleteObjectives(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM saved_objectives WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting objective set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
