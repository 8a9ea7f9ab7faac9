package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/eduassist/eduassist/internal/gemini"
)

// GenerateLearningPath produces a sequenced curriculum for a topic,
// ordered by prerequisite knowledge.
type GenerateLearningPath struct {
	generator Generator
}

// NewGenerateLearningPath creates the generate_learning_path tool.
func NewGenerateLearningPath(generator Generator) *GenerateLearningPath {
	return &GenerateLearningPath{generator: generator}
}

func (t *GenerateLearningPath) Name() string { return "generate_learning_path" }

func (t *GenerateLearningPath) Declaration() gemini.FunctionDeclaration {
	return gemini.FunctionDeclaration{
		Name:        t.Name(),
		Description: "Creates a complete, sequenced learning path (curriculum) for a topic, spanning multiple learning objectives ordered by prerequisite knowledge. Use this when users want a comprehensive curriculum or course outline rather than just isolated objectives. IMPORTANT: If the user asks about multiple related topics, combine them into ONE learning path showing how they connect.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"topic": {
					Type:        "string",
					Description: "The main topic or subject for the learning path. Can include multiple related topics if user wants an integrated curriculum covering several areas.",
				},
				"context": {
					Type:        "string",
					Description: "Context from search_knowledge_base results to ground the learning path",
				},
				"start_level": {
					Type:        "string",
					Description: "Starting educational level: beginner, intermediate, or advanced (default: beginner)",
				},
				"end_level": {
					Type:        "string",
					Description: "Target educational level: beginner, intermediate, or advanced (default: intermediate)",
				},
				"duration": {
					Type:        "string",
					Description: "Timeframe: one_week, one_month, one_semester, or one_year (default: one_month)",
				},
				"objective_count": {
					Type:        "number",
					Description: "Number of learning objectives in the path (default: 5)",
				},
			},
			Required: []string{"topic", "context"},
		},
	}
}

func (t *GenerateLearningPath) Execute(ctx context.Context, args Args) Result {
	topic := args.String("topic", "")
	if topic == "" {
		return Failuref("topic is required")
	}
	context_ := args.String("context", "")
	startLevel := args.String("start_level", "beginner")
	endLevel := args.String("end_level", "intermediate")
	duration := args.String("duration", "one_month")
	objectiveCount := args.Int("objective_count", 5)

	prompt := buildLearningPathPrompt(topic, context_, startLevel, endLevel, duration, objectiveCount)

	resp, err := t.generator.Generate(ctx, &gemini.GenerateRequest{
		Contents: []gemini.Content{gemini.TextContent(gemini.RoleUser, prompt)},
	})
	if err != nil {
		return Failure(err)
	}

	return Success(map[string]any{
		"topic":           topic,
		"start_level":     startLevel,
		"end_level":       endLevel,
		"duration":        duration,
		"objective_count": objectiveCount,
		"learning_path":   resp.Text(),
		"had_context":     context_ != "",
	})
}

func buildLearningPathPrompt(topic, context, startLevel, endLevel, duration string, objectiveCount int) string {
	contextBlock := ""
	if context != "" {
		contextBlock = fmt.Sprintf("Use this context from the knowledge base:\n\n%s\n\n", context)
	}

	return fmt.Sprintf(`You are an expert curriculum designer creating a complete learning path.

Topic: %q
Starting Level: %s
Target Level: %s
Duration: %s
Number of Objectives: %d

%s
Create a sequenced learning path with %d learning objectives that progress from %s to %s level.

Requirements:
- Order objectives by prerequisite knowledge (foundational concepts first)
- Each objective should build on previous ones
- Use Bloom's Taxonomy action verbs appropriate for progression
- Make objectives specific, measurable, and achievable
- Consider the %s timeframe

Format as a numbered list with this structure:
1. [Objective 1 - Foundation] (Week 1)
   **Prerequisite:** None
   **Builds toward:** [next skill]

2. [Objective 2] (Week 2)
   **Prerequisite:** [previous objective]
   **Builds toward:** [next skill]

... and so on.

Return ONLY the learning path, nothing else.`,
		topic, startLevel, endLevel, duration, objectiveCount,
		contextBlock, objectiveCount, startLevel, endLevel, duration)
}
