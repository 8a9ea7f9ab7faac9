package testutil

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSSEEvents(t *testing.T) {
	body := "event: status\ndata: {\"stage\":\"analyzing\"}\n\n" +
		"event: content\ndata: {\"text\":\"Hi \"}\n\n" +
		"event: done\ndata: {}\n\n"

	events := ParseSSEEvents(body)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"status", "content", "done"}, EventNames(events))
	assert.JSONEq(t, `{"stage":"analyzing"}`, string(events[0].Data))
}

func TestParseSSEEvents_SkipsIncompleteFrames(t *testing.T) {
	body := "event: orphan\n\n" + "data: {\"no\":\"name\"}\n\n"
	assert.Empty(t, ParseSSEEvents(body))
}

func TestMockEmbedder_DeterministicAndNormalized(t *testing.T) {
	e := &MockEmbedder{Dim: 768}
	ctx := context.Background()

	a1, err := e.Embed(ctx, "photosynthesis")
	require.NoError(t, err)
	a2, err := e.Embed(ctx, "photosynthesis")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "something else")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	require.Len(t, a1, 768)

	var norm float64
	for _, v := range a1 {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 0.001)
}
