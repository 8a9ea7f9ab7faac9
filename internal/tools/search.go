package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/eduassist/eduassist/internal/gemini"
	"github.com/eduassist/eduassist/internal/knowledge"
)

// Searcher runs semantic search over the knowledge base.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]knowledge.Document, error)
}

// SearchKnowledgeBase exposes semantic search to the model.
type SearchKnowledgeBase struct {
	searcher Searcher
}

// NewSearchKnowledgeBase creates the search_knowledge_base tool.
func NewSearchKnowledgeBase(searcher Searcher) *SearchKnowledgeBase {
	return &SearchKnowledgeBase{searcher: searcher}
}

func (t *SearchKnowledgeBase) Name() string { return "search_knowledge_base" }

func (t *SearchKnowledgeBase) Declaration() gemini.FunctionDeclaration {
	return gemini.FunctionDeclaration{
		Name:        t.Name(),
		Description: "Searches the educational knowledge base using semantic search. Use this when you need to find relevant information from the document collection to answer questions or generate content.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "The search query to find relevant content in the knowledge base",
				},
				"top_k": {
					Type:        "number",
					Description: "Number of most relevant results to return (default: 5, max: 10)",
				},
			},
			Required: []string{"query"},
		},
	}
}

func (t *SearchKnowledgeBase) Execute(ctx context.Context, args Args) Result {
	query := args.String("query", "")
	if query == "" {
		return Failuref("query is required")
	}
	topK := args.Int("top_k", knowledge.DefaultTopK)

	docs, err := t.searcher.Search(ctx, query, topK)
	if err != nil {
		r := Failure(err)
		r["results"] = []any{}
		return r
	}

	results := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		results = append(results, map[string]any{
			"id":          d.ID,
			"title":       d.Title,
			"content":     d.Content,
			"source":      d.SourceFile,
			"chunk_index": d.ChunkIndex,
			"similarity":  d.Similarity,
			"metadata":    d.Metadata,
		})
	}

	return Success(map[string]any{
		"query":         query,
		"results_count": len(results),
		"results":       results,
	})
}
