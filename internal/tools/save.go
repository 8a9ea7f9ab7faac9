package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/eduassist/eduassist/internal/gemini"
	"github.com/eduassist/eduassist/internal/library"
)

// ContentSaver persists generated materials.
type ContentSaver interface {
	SaveContent(ctx context.Context, title, content string, metadata map[string]any) (*library.Content, error)
}

// SaveContent stores generated material when the user asks for it.
type SaveContent struct {
	saver ContentSaver
}

// NewSaveContent creates the save_content tool.
func NewSaveContent(saver ContentSaver) *SaveContent {
	return &SaveContent{saver: saver}
}

func (t *SaveContent) Name() string { return "save_content" }

func (t *SaveContent) Declaration() gemini.FunctionDeclaration {
	return gemini.FunctionDeclaration{
		Name:        t.Name(),
		Description: "Saves generated educational content to the database for later retrieval. Use this when the user explicitly asks to save or store content.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"title": {
					Type:        "string",
					Description: "A descriptive title for the content being saved",
				},
				"content": {
					Type:        "string",
					Description: "The actual content to save (can be markdown formatted)",
				},
				"metadata": {
					Type:        "object",
					Description: "Additional metadata like topic, level, source_query, etc.",
					Properties: map[string]*jsonschema.Schema{
						"topic":        {Type: "string"},
						"content_type": {Type: "string"},
						"level":        {Type: "string"},
						"tags":         {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
					},
				},
			},
			Required: []string{"title", "content"},
		},
	}
}

func (t *SaveContent) Execute(ctx context.Context, args Args) Result {
	title := args.String("title", "")
	content := args.String("content", "")
	if title == "" || content == "" {
		return Failuref("title and content are required")
	}
	metadata := args.Map("metadata")

	saved, err := t.saver.SaveContent(ctx, title, content, metadata)
	if err != nil {
		return Failure(err)
	}

	return Success(map[string]any{
		"message":    fmt.Sprintf("Content %q has been saved successfully.", title),
		"saved_id":   saved.ID.String(),
		"created_at": saved.CreatedAt,
	})
}
