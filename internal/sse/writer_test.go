package sse

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_SetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := NewWriter(rec)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
}

func TestSend_FramesEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	require.NoError(t, err)

	require.NoError(t, w.Send("status", map[string]string{"stage": "searching"}))

	assert.Equal(t, "event: status\ndata: {\"stage\":\"searching\"}\n\n", rec.Body.String())
}

func TestSend_MultipleEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	require.NoError(t, err)

	require.NoError(t, w.Send("content", map[string]string{"text": "Hello "}))
	require.NoError(t, w.Send("content", map[string]string{"text": "world"}))

	body := rec.Body.String()
	assert.Contains(t, body, "data: {\"text\":\"Hello \"}")
	assert.Contains(t, body, "data: {\"text\":\"world\"}")
}

// basicWriter exposes only the ResponseWriter methods of the recorder,
// hiding its Flush method.
type basicWriter struct{ rec *httptest.ResponseRecorder }

func (b basicWriter) Header() http.Header         { return b.rec.Header() }
func (b basicWriter) Write(p []byte) (int, error) { return b.rec.Write(p) }
func (b basicWriter) WriteHeader(code int)        { b.rec.WriteHeader(code) }

func TestNewWriter_RequiresFlusher(t *testing.T) {
	_, err := NewWriter(basicWriter{httptest.NewRecorder()})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}
