package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/eduassist/eduassist/internal/gemini"
	"github.com/eduassist/eduassist/internal/knowledge"
)

// SourceLister enumerates the ingested source files. ListSources is
// capped; CountSources reports the full distinct-document count.
type SourceLister interface {
	ListSources(ctx context.Context) ([]knowledge.Source, error)
	CountSources(ctx context.Context) (int, error)
}

// ListTopics exposes the knowledge base inventory to the model.
type ListTopics struct {
	sources SourceLister
}

// NewListTopics creates the list_available_topics tool.
func NewListTopics(sources SourceLister) *ListTopics {
	return &ListTopics{sources: sources}
}

func (t *ListTopics) Name() string { return "list_available_topics" }

func (t *ListTopics) Declaration() gemini.FunctionDeclaration {
	return gemini.FunctionDeclaration{
		Name:        t.Name(),
		Description: "Lists all available documents and topics in the knowledge base. Use this to show users what content is available or to suggest topics they can explore.",
		Parameters: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}
}

func (t *ListTopics) Execute(ctx context.Context, _ Args) Result {
	sources, err := t.sources.ListSources(ctx)
	if err != nil {
		return Failure(err)
	}
	total, err := t.sources.CountSources(ctx)
	if err != nil {
		return Failure(err)
	}

	// The listing is truncated, so the count comes from the full
	// inventory rather than the returned slice.
	topics := make([]map[string]any, 0, len(sources))
	for _, src := range sources {
		topics = append(topics, map[string]any{
			"source":      src.SourceFile,
			"title":       src.Title,
			"chunk_count": src.ChunkCount,
		})
	}

	return Success(map[string]any{
		"topics_count": total,
		"topics":       topics,
		"message":      fmt.Sprintf("Found %d documents in the knowledge base.", total),
	})
}
