// Package sse implements server-sent event streaming over HTTP.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrStreamingUnsupported indicates the ResponseWriter cannot flush,
// which SSE requires.
var ErrStreamingUnsupported = errors.New("sse: response writer does not support streaming")

// Writer streams typed events to one client. Safe for use from a
// single goroutine; wrap sends in the mutex-protected methods only.
type Writer struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares the response for event streaming and writes the
// SSE headers.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Writer{w: w, flusher: flusher}, nil
}

// Send writes one named event with a JSON payload and flushes it.
// A write error means the client disconnected; callers should stop.
func (s *Writer) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: encoding %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return fmt.Errorf("sse: writing %s event: %w", event, err)
	}
	s.flusher.Flush()

	return nil
}
