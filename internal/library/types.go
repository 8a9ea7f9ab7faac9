package library

import (
	"time"

	"github.com/google/uuid"
)

// Content is a generated artifact the assistant stored on request, such
// as a lesson plan or a learning path.
type Content struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	ContentType string         `json:"content_type"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ObjectiveSet is a saved batch of learning objectives for one topic.
// Sources holds the search result snapshots that grounded the
// objectives, stored as-is.
type ObjectiveSet struct {
	ID             uuid.UUID        `json:"id"`
	Topic          string           `json:"topic"`
	ObjectivesText string           `json:"objectives_text"`
	ObjectiveCount int              `json:"objective_count"`
	Level          *string          `json:"level"`
	HadContext     bool             `json:"had_context"`
	Sources        []map[string]any `json:"sources"`
	Title          *string          `json:"title"`
	Notes          *string          `json:"notes"`
	Tags           []string         `json:"tags"`
	CreatedAt      time.Time        `json:"created_at"`
}
