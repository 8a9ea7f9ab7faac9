//go:build integration

package library_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/eduassist/eduassist/internal/database"
	"github.com/eduassist/eduassist/internal/library"
	"github.com/eduassist/eduassist/internal/log"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "pgvector/pgvector:pg17",
		postgres.WithDatabase("eduassist_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(dsn, log.NewNop()))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestStore_SaveAndListContent(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	store := library.NewStore(pool, log.NewNop())

	saved, err := store.SaveContent(ctx, "Ethics lesson", "# Plan\n...", map[string]any{
		"content_type": "lesson_plan",
		"topic":        "research ethics",
	})
	require.NoError(t, err)
	assert.Equal(t, "lesson_plan", saved.ContentType)
	assert.Equal(t, "research ethics", saved.Metadata["topic"])

	// Missing content_type falls back to general.
	general, err := store.SaveContent(ctx, "Untitled notes", "text", nil)
	require.NoError(t, err)
	assert.Equal(t, "general", general.ContentType)

	items, err := store.ListContent(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// Newest first.
	assert.Equal(t, "Untitled notes", items[0].Title)
}

func TestStore_SaveContentValidation(t *testing.T) {
	pool := setupPool(t)
	store := library.NewStore(pool, log.NewNop())

	_, err := store.SaveContent(context.Background(), "", "body", nil)
	assert.ErrorIs(t, err, library.ErrMissingFields)

	_, err = store.SaveContent(context.Background(), "title", "  ", nil)
	assert.ErrorIs(t, err, library.ErrMissingFields)
}

func TestStore_Objectives(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	store := library.NewStore(pool, log.NewNop())

	level := "university"
	set, err := store.SaveObjectives(ctx, library.SaveObjectivesParams{
		Topic:          "informed consent",
		ObjectivesText: "1. Analyze consent requirements",
		ObjectiveCount: 3,
		Level:          &level,
		HadContext:     true,
		Sources: []map[string]any{
			{"source": "ethics.md", "content": "Informed consent basics.", "similarity": 0.91},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, set.Level)
	assert.Equal(t, "university", *set.Level)
	assert.True(t, set.HadContext)
	require.Len(t, set.Sources, 1)
	assert.Equal(t, "ethics.md", set.Sources[0]["source"])
	assert.InDelta(t, 0.91, set.Sources[0]["similarity"], 0.001)
	assert.Empty(t, set.Tags)

	sets, err := store.ListObjectives(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)

	require.NoError(t, store.DeleteObjectives(ctx, set.ID))
	assert.ErrorIs(t, store.DeleteObjectives(ctx, set.ID), library.ErrNotFound)
	assert.ErrorIs(t, store.DeleteObjectives(ctx, uuid.New()), library.ErrNotFound)
}

func TestStore_ObjectivesValidation(t *testing.T) {
	pool := setupPool(t)
	store := library.NewStore(pool, log.NewNop())

	_, err := store.SaveObjectives(context.Background(), library.SaveObjectivesParams{
		Topic: "only a topic",
	})
	assert.ErrorIs(t, err, library.ErrMissingFields)
}
