package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/eduassist/eduassist/internal/gemini"
)

// GenerateObjectives produces measurable learning objectives for a
// topic, grounded in knowledge base context the model retrieved first.
type GenerateObjectives struct {
	generator Generator
}

// NewGenerateObjectives creates the generate_learning_objectives tool.
func NewGenerateObjectives(generator Generator) *GenerateObjectives {
	return &GenerateObjectives{generator: generator}
}

func (t *GenerateObjectives) Name() string { return "generate_learning_objectives" }

func (t *GenerateObjectives) Declaration() gemini.FunctionDeclaration {
	return gemini.FunctionDeclaration{
		Name:        t.Name(),
		Description: "Generates educational learning objectives based on a topic and provided context from the knowledge base. IMPORTANT: You must call search_knowledge_base FIRST to get relevant context, then pass that context here. Creates well-structured, measurable learning objectives following Bloom's taxonomy.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"topic": {
					Type:        "string",
					Description: "The topic or subject for which to generate learning objectives",
				},
				"context": {
					Type:        "string",
					Description: "Context from search_knowledge_base results - include relevant passages from the knowledge base to ground the objectives",
				},
				"count": {
					Type:        "number",
					Description: "Number of learning objectives to generate (default: 3)",
				},
				"level": {
					Type:        "string",
					Description: "Educational level: elementary, middle_school, high_school, university, or professional",
				},
			},
			Required: []string{"topic", "context"},
		},
	}
}

func (t *GenerateObjectives) Execute(ctx context.Context, args Args) Result {
	topic := args.String("topic", "")
	if topic == "" {
		return Failuref("topic is required")
	}
	context_ := args.String("context", "")
	count := args.Int("count", 3)
	level := args.String("level", "university")

	prompt := buildObjectivesPrompt(topic, context_, count, level)

	resp, err := t.generator.Generate(ctx, &gemini.GenerateRequest{
		Contents: []gemini.Content{gemini.TextContent(gemini.RoleUser, prompt)},
	})
	if err != nil {
		return Failure(err)
	}

	return Success(map[string]any{
		"topic":       topic,
		"level":       level,
		"count":       count,
		"objectives":  resp.Text(),
		"had_context": context_ != "",
	})
}

func buildObjectivesPrompt(topic, context string, count int, level string) string {
	contextBlock := ""
	if context != "" {
		contextBlock = fmt.Sprintf("Use this context from the knowledge base to inform your objectives:\n\n%s\n\n", context)
	}

	return fmt.Sprintf(`You are an expert educator. Generate %d clear, measurable learning objectives for the topic: %q

%sEducation Level: %s

Requirements:
- Use action verbs from Bloom's Taxonomy (e.g., analyze, evaluate, create, apply, understand, remember)
- Make each objective specific and measurable
- Appropriate for %s level students
- Ground objectives in the provided context if available

Format: Return ONLY the numbered list of objectives, nothing else.`,
		count, topic, contextBlock, level, level)
}
