// Package tools implements the functions the model can call during a
// conversation: knowledge base search, pedagogy generators, and
// persistence.
//
// Tool failures are reported inside the result map with success=false
// so the model can react to them; Execute never surfaces a Go error to
// the orchestration loop.
package tools

import (
	"context"

	"github.com/eduassist/eduassist/internal/gemini"
)

// Tool is one callable function exposed to the model.
type Tool interface {
	// Name returns the function name used in declarations and calls.
	Name() string

	// Declaration describes the tool to the model.
	Declaration() gemini.FunctionDeclaration

	// Execute runs the tool. The returned map is sent back to the model
	// verbatim as the function response.
	Execute(ctx context.Context, args Args) Result
}

// Result is a function response payload. Every result carries a
// "success" boolean; failures add an "error" message.
type Result map[string]any

// Success builds a successful result from the given fields.
func Success(fields map[string]any) Result {
	r := Result{"success": true}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

// Failure builds an error result.
func Failure(err error) Result {
	return Result{"success": false, "error": err.Error()}
}

// Failuref builds an error result from a message.
func Failuref(msg string) Result {
	return Result{"success": false, "error": msg}
}

// Generator produces model completions. Tools that delegate prose
// generation back to the model depend on this.
type Generator interface {
	Generate(ctx context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// Args wraps the loosely typed arguments of a function call with
// defaulting accessors. Missing or mistyped values fall back to the
// provided default, mirroring how the declarations document defaults.
type Args map[string]any

// String returns the named argument as a string.
func (a Args) String(key, def string) string {
	if v, ok := a[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int returns the named argument as an int. JSON numbers arrive as
// float64 and are truncated.
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case float64:
		if v != 0 {
			return int(v)
		}
	case int:
		if v != 0 {
			return v
		}
	}
	return def
}

// Map returns the named argument as a nested object.
func (a Args) Map(key string) map[string]any {
	if v, ok := a[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}
