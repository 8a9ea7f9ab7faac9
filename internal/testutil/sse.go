// Package testutil holds helpers shared by tests: an SSE frame parser
// and a deterministic embedder for vector search tests.
package testutil

import (
	"encoding/json"
	"strings"
)

// Event is one parsed server-sent event.
type Event struct {
	Name string
	Data json.RawMessage
}

// ParseSSEEvents splits a raw SSE body into events. Frames without an
// event name or data line are skipped.
func ParseSSEEvents(body string) []Event {
	var events []Event
	for _, frame := range strings.Split(body, "\n\n") {
		var ev Event
		for _, line := range strings.Split(frame, "\n") {
			if name, ok := strings.CutPrefix(line, "event: "); ok {
				ev.Name = name
			}
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				ev.Data = json.RawMessage(data)
			}
		}
		if ev.Name != "" && ev.Data != nil {
			events = append(events, ev)
		}
	}
	return events
}

// EventNames returns just the names, in order.
func EventNames(events []Event) []string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Name
	}
	return names
}
