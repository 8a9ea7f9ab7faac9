package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/eduassist/eduassist/internal/gemini"
	"github.com/eduassist/eduassist/internal/knowledge"
)

// misconceptionQueryTemplate is the search query used to surface
// error-related passages before the analysis prompt runs.
const misconceptionQueryTemplate = "common misconceptions errors mistakes misunderstandings students %s"

// IdentifyMisconceptions analyzes typical student errors for a topic.
// It searches the knowledge base itself before prompting, so the model
// does not need a prior search call.
type IdentifyMisconceptions struct {
	searcher  Searcher
	generator Generator
}

// NewIdentifyMisconceptions creates the identify_common_misconceptions tool.
func NewIdentifyMisconceptions(searcher Searcher, generator Generator) *IdentifyMisconceptions {
	return &IdentifyMisconceptions{searcher: searcher, generator: generator}
}

func (t *IdentifyMisconceptions) Name() string { return "identify_common_misconceptions" }

func (t *IdentifyMisconceptions) Declaration() gemini.FunctionDeclaration {
	return gemini.FunctionDeclaration{
		Name:        t.Name(),
		Description: "Identifies common student misconceptions and errors for one or more topics by searching the knowledge base. Use this proactively BEFORE generating learning objectives to help educators anticipate and address typical student confusion points. IMPORTANT: If the user asks about multiple related topics in one query, combine them into a single call by listing all topics together.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"topic": {
					Type:        "string",
					Description: "The topic or concept(s) to analyze for common misconceptions. Can include multiple topics if user asks about several at once. List all topics together separated by commas.",
				},
				"student_level": {
					Type:        "string",
					Description: "Educational level: elementary, middle_school, high_school, university, or professional",
				},
			},
			Required: []string{"topic"},
		},
	}
}

func (t *IdentifyMisconceptions) Execute(ctx context.Context, args Args) Result {
	topic := args.String("topic", "")
	if topic == "" {
		return Failuref("topic is required")
	}
	studentLevel := args.String("student_level", "university")

	searchQuery := fmt.Sprintf(misconceptionQueryTemplate, topic)
	docs, err := t.searcher.Search(ctx, searchQuery, knowledge.DefaultTopK)
	if err != nil {
		// Analysis can still proceed without grounding context.
		docs = nil
	}

	passages := make([]string, 0, len(docs))
	for _, d := range docs {
		passages = append(passages, d.Content)
	}
	context_ := strings.Join(passages, "\n\n")

	prompt := buildMisconceptionsPrompt(topic, studentLevel, context_)

	resp, err := t.generator.Generate(ctx, &gemini.GenerateRequest{
		Contents: []gemini.Content{gemini.TextContent(gemini.RoleUser, prompt)},
	})
	if err != nil {
		return Failure(err)
	}

	return Success(map[string]any{
		"topic":          topic,
		"student_level":  studentLevel,
		"misconceptions": resp.Text(),
		"had_context":    context_ != "",
		"sources_used":   len(docs),
	})
}

func buildMisconceptionsPrompt(topic, studentLevel, context string) string {
	contextBlock := ""
	if context != "" {
		contextBlock = fmt.Sprintf("Use this context from the knowledge base about common errors:\n\n%s\n\n", context)
	}

	return fmt.Sprintf(`You are an expert educator analyzing common student misconceptions.

Topic: %q
Student Level: %s

%s
Identify 3-5 common misconceptions or errors that students typically have when learning about %s.

For each misconception:
1. State the misconception clearly
2. Explain why students develop this misunderstanding
3. Suggest a teaching strategy to address it proactively

Format as a numbered list with this structure:
1. **Misconception:** [clear statement]
   **Why it happens:** [explanation]
   **Teaching strategy:** [how to prevent/correct it]`,
		topic, studentLevel, contextBlock, topic)
}
