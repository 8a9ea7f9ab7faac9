// Package chat runs the tool-calling conversation loop.
//
// Each turn the model either answers in prose, which is streamed to the
// client word by word, or requests function calls. Only the first
// requested call per turn is executed; the model turn is appended to
// the conversation verbatim, so unexecuted calls remain visible and the
// model re-issues them on the next turn if it still wants them.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eduassist/eduassist/internal/gemini"
	"github.com/eduassist/eduassist/internal/tools"
)

// ErrNoMessages indicates the request carried no conversation messages.
var ErrNoMessages = errors.New("chat: messages array is required")

// Message is one client-side conversation entry. Role is "user" or
// "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EmitFunc delivers one event to the client. Returning an error aborts
// the loop; it means the client is gone.
type EmitFunc func(event string, data any) error

// Generator produces model completions.
type Generator interface {
	Generate(ctx context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// ExecutedCall records one function call and its result for the done
// event ledger.
type ExecutedCall struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
	Result map[string]any `json:"result"`
}

// Loop orchestrates generation and tool execution for one request.
type Loop struct {
	generator     Generator
	registry      *tools.Registry
	maxIterations int
	logger        *slog.Logger
}

// New creates a loop. maxIterations bounds the number of generation
// turns per request so a model stuck on tool calls cannot spin forever.
func New(generator Generator, registry *tools.Registry, maxIterations int, logger *slog.Logger) *Loop {
	return &Loop{
		generator:     generator,
		registry:      registry,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Run executes the conversation until the model answers in prose, the
// iteration cap is hit, or emit fails. Upstream failures are reported
// as an error event and returned.
func (l *Loop) Run(ctx context.Context, messages []Message, emit EmitFunc) error {
	if len(messages) == 0 {
		return ErrNoMessages
	}

	if err := emit(EventStatus, Status{Stage: "analyzing", Message: "Analyzing your request..."}); err != nil {
		return err
	}

	contents := buildContents(messages)
	var ledger []ExecutedCall

	for iter := 0; iter < l.maxIterations; iter++ {
		resp, err := l.generator.Generate(ctx, &gemini.GenerateRequest{
			Contents:          contents,
			SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: SystemPrompt}}},
			Tools:             []gemini.Tool{{FunctionDeclarations: l.registry.Declarations()}},
		})
		if err != nil {
			l.logger.Error("generation failed", "iteration", iter, "error", err)
			_ = emit(EventError, map[string]string{"message": err.Error()})
			return fmt.Errorf("generating response: %w", err)
		}

		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			l.logger.Warn("empty candidate in response", "iteration", iter)
			break
		}
		parts := resp.Candidates[0].Content.Parts

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			return l.streamFinal(parts, ledger, emit)
		}

		// Execute only the first requested call this turn.
		call := calls[0]
		if len(calls) > 1 {
			l.logger.Debug("deferring extra function calls",
				"executed", call.Name,
				"deferred", len(calls)-1)
		}

		if err := emit(EventStatus, statusFor(call.Name)); err != nil {
			return err
		}
		if err := emit(EventFunctionStart, map[string]any{
			"name": call.Name,
			"args": call.Args,
		}); err != nil {
			return err
		}

		result := l.registry.Execute(ctx, call)

		if err := emit(EventFunctionComplete, map[string]any{
			"name":   call.Name,
			"result": result,
		}); err != nil {
			return err
		}

		ledger = append(ledger, ExecutedCall{
			Name:   call.Name,
			Args:   call.Args,
			Result: result,
		})

		// The model turn goes back verbatim, unexecuted calls included,
		// followed by a synthetic user turn carrying the result.
		contents = append(contents,
			gemini.Content{Role: gemini.RoleModel, Parts: parts},
			gemini.Content{Role: gemini.RoleUser, Parts: []gemini.Part{{
				FunctionResponse: &gemini.FunctionResponse{
					Name:     call.Name,
					Response: result,
				},
			}}},
		)
	}

	return emit(EventError, map[string]string{"message": "No response generated"})
}

// streamFinal sends the prose answer word by word, then the done event
// with the full parts and the function call ledger.
func (l *Loop) streamFinal(parts []gemini.Part, ledger []ExecutedCall, emit EmitFunc) error {
	if err := emit(EventStatus, Status{Stage: "generating", Message: "Generating response..."}); err != nil {
		return err
	}

	var text strings.Builder
	for _, p := range parts {
		text.WriteString(p.Text)
	}

	words := strings.Split(text.String(), " ")
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		if err := emit(EventContent, map[string]string{"text": word}); err != nil {
			return err
		}
	}

	if ledger == nil {
		ledger = []ExecutedCall{}
	}
	return emit(EventDone, map[string]any{
		"parts":          parts,
		"function_calls": ledger,
	})
}

// buildContents converts the client conversation into model turns. The
// latest message becomes the active user turn; earlier ones form the
// history with assistant mapped to the model role. A leading model turn
// is dropped, the history must start with the user.
func buildContents(messages []Message) []gemini.Content {
	var history []gemini.Content
	for _, msg := range messages[:len(messages)-1] {
		role := gemini.RoleModel
		if msg.Role == "user" {
			role = gemini.RoleUser
		}
		history = append(history, gemini.TextContent(role, msg.Content))
	}

	if len(history) > 0 && history[0].Role == gemini.RoleModel {
		history = history[1:]
	}

	latest := messages[len(messages)-1].Content
	return append(history, gemini.TextContent(gemini.RoleUser, latest))
}
