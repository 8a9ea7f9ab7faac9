package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eduassist/eduassist/internal/gemini"
)

// Registry holds the tools available to the model and dispatches
// function calls to them.
type Registry struct {
	tools  map[string]Tool
	order  []string
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. Registering a duplicate name panics; tool sets
// are assembled once at startup.
func (r *Registry) Register(t Tool) {
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool %q registered twice", name))
	}
	r.tools[name] = t
	r.order = append(r.order, name)
}

// Declarations returns the function declarations in registration order.
func (r *Registry) Declarations() []gemini.FunctionDeclaration {
	decls := make([]gemini.FunctionDeclaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].Declaration())
	}
	return decls
}

// Execute dispatches one function call. An unknown function name yields
// an error result so the model can recover.
func (r *Registry) Execute(ctx context.Context, call *gemini.FunctionCall) Result {
	tool, ok := r.tools[call.Name]
	if !ok {
		r.logger.Warn("unknown function requested", "function", call.Name)
		return Failuref(fmt.Sprintf("Unknown function: %s", call.Name))
	}

	start := time.Now()
	result := tool.Execute(ctx, Args(call.Args))

	success, _ := result["success"].(bool)
	r.logger.Info("function executed",
		"function", call.Name,
		"success", success,
		"duration", time.Since(start))

	return result
}
