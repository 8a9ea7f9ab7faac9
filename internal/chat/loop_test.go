package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduassist/eduassist/internal/gemini"
	"github.com/eduassist/eduassist/internal/knowledge"
	"github.com/eduassist/eduassist/internal/log"
	"github.com/eduassist/eduassist/internal/tools"
)

// scriptedGenerator returns canned responses in order and records every
// request it receives.
type scriptedGenerator struct {
	responses []*gemini.GenerateResponse
	err       error
	requests  []*gemini.GenerateRequest
}

func (g *scriptedGenerator) Generate(_ context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.requests) > len(g.responses) {
		return &gemini.GenerateResponse{}, nil
	}
	return g.responses[len(g.requests)-1], nil
}

func proseResponse(text string) *gemini.GenerateResponse {
	return &gemini.GenerateResponse{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Role: gemini.RoleModel, Parts: []gemini.Part{{Text: text}}},
	}}}
}

func callResponse(parts ...gemini.Part) *gemini.GenerateResponse {
	return &gemini.GenerateResponse{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Role: gemini.RoleModel, Parts: parts},
	}}}
}

type emitted struct {
	event string
	data  any
}

// collector records emitted events; failAfter > 0 makes emit fail once
// that many events have been delivered.
type collector struct {
	events    []emitted
	failAfter int
}

func (c *collector) emit(event string, data any) error {
	if c.failAfter > 0 && len(c.events) >= c.failAfter {
		return errors.New("client disconnected")
	}
	c.events = append(c.events, emitted{event: event, data: data})
	return nil
}

func (c *collector) names() []string {
	names := make([]string, len(c.events))
	for i, e := range c.events {
		names[i] = e.event
	}
	return names
}

type countingSearcher struct {
	calls int
}

func (s *countingSearcher) Search(context.Context, string, int) ([]knowledge.Document, error) {
	s.calls++
	return []knowledge.Document{{ID: 1, Content: "relevant passage"}}, nil
}

func newTestRegistry(searcher tools.Searcher) *tools.Registry {
	r := tools.NewRegistry(log.NewNop())
	r.Register(tools.NewSearchKnowledgeBase(searcher))
	return r
}

func userMessages(texts ...string) []Message {
	msgs := make([]Message, len(texts))
	for i, t := range texts {
		msgs[i] = Message{Role: "user", Content: t}
	}
	return msgs
}

func TestRun_ProseOnly(t *testing.T) {
	gen := &scriptedGenerator{responses: []*gemini.GenerateResponse{
		proseResponse("Hello brave new world"),
	}}
	loop := New(gen, newTestRegistry(&countingSearcher{}), 25, log.NewNop())
	c := &collector{}

	err := loop.Run(context.Background(), userMessages("hi"), c.emit)
	require.NoError(t, err)

	assert.Equal(t, []string{
		EventStatus, EventStatus,
		EventContent, EventContent, EventContent, EventContent,
		EventDone,
	}, c.names())

	// Words carry their trailing space except the last one.
	texts := []string{}
	for _, e := range c.events {
		if e.event == EventContent {
			texts = append(texts, e.data.(map[string]string)["text"])
		}
	}
	assert.Equal(t, []string{"Hello ", "brave ", "new ", "world"}, texts)

	done := c.events[len(c.events)-1].data.(map[string]any)
	assert.Empty(t, done["function_calls"])
}

func TestRun_SingleToolCallThenAnswer(t *testing.T) {
	searcher := &countingSearcher{}
	gen := &scriptedGenerator{responses: []*gemini.GenerateResponse{
		callResponse(gemini.Part{FunctionCall: &gemini.FunctionCall{
			Name: "search_knowledge_base",
			Args: map[string]any{"query": "mitosis"},
		}}),
		proseResponse("Here is your answer"),
	}}
	loop := New(gen, newTestRegistry(searcher), 25, log.NewNop())
	c := &collector{}

	err := loop.Run(context.Background(), userMessages("teach me mitosis"), c.emit)
	require.NoError(t, err)

	assert.Equal(t, []string{
		EventStatus,           // analyzing
		EventStatus,           // searching
		EventFunctionStart,    // search_knowledge_base
		EventFunctionComplete, // result
		EventStatus,           // generating
		EventContent, EventContent, EventContent, EventContent,
		EventDone,
	}, c.names())
	assert.Equal(t, 1, searcher.calls)

	// The searching status came from the name mapping.
	status := c.events[1].data.(Status)
	assert.Equal(t, "searching", status.Stage)
	assert.Equal(t, "Searching knowledge base...", status.Message)

	// Second request carries the model turn verbatim plus the function
	// response as a synthetic user turn.
	require.Len(t, gen.requests, 2)
	contents := gen.requests[1].Contents
	require.Len(t, contents, 3)
	assert.Equal(t, gemini.RoleUser, contents[0].Role)
	assert.Equal(t, gemini.RoleModel, contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, gemini.RoleUser, contents[2].Role)
	fr := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, "search_knowledge_base", fr.Name)
	assert.Equal(t, true, fr.Response["success"])

	// Ledger in the done event records the executed call.
	done := c.events[len(c.events)-1].data.(map[string]any)
	ledger := done["function_calls"].([]ExecutedCall)
	require.Len(t, ledger, 1)
	assert.Equal(t, "search_knowledge_base", ledger[0].Name)
}

func TestRun_OnlyFirstCallExecuted(t *testing.T) {
	searcher := &countingSearcher{}
	gen := &scriptedGenerator{responses: []*gemini.GenerateResponse{
		callResponse(
			gemini.Part{FunctionCall: &gemini.FunctionCall{
				Name: "search_knowledge_base",
				Args: map[string]any{"query": "first"},
			}},
			gemini.Part{FunctionCall: &gemini.FunctionCall{
				Name: "search_knowledge_base",
				Args: map[string]any{"query": "second"},
			}},
		),
		proseResponse("done"),
	}}
	loop := New(gen, newTestRegistry(searcher), 25, log.NewNop())
	c := &collector{}

	err := loop.Run(context.Background(), userMessages("hi"), c.emit)
	require.NoError(t, err)

	// One execution, but both calls re-sent verbatim in the model turn.
	assert.Equal(t, 1, searcher.calls)
	modelTurn := gen.requests[1].Contents[1]
	require.Len(t, modelTurn.Parts, 2)
	assert.Equal(t, "first", modelTurn.Parts[0].FunctionCall.Args["query"])
	assert.Equal(t, "second", modelTurn.Parts[1].FunctionCall.Args["query"])
}

func TestRun_HistoryMapping(t *testing.T) {
	gen := &scriptedGenerator{responses: []*gemini.GenerateResponse{proseResponse("ok")}}
	loop := New(gen, newTestRegistry(&countingSearcher{}), 25, log.NewNop())

	messages := []Message{
		{Role: "assistant", Content: "Welcome! How can I help?"},
		{Role: "user", Content: "list topics"},
		{Role: "assistant", Content: "Here are the topics"},
		{Role: "user", Content: "now objectives please"},
	}
	require.NoError(t, loop.Run(context.Background(), messages, (&collector{}).emit))

	contents := gen.requests[0].Contents
	// Leading assistant greeting dropped; remaining mapped user/model/user.
	require.Len(t, contents, 3)
	assert.Equal(t, gemini.RoleUser, contents[0].Role)
	assert.Equal(t, "list topics", contents[0].Parts[0].Text)
	assert.Equal(t, gemini.RoleModel, contents[1].Role)
	assert.Equal(t, gemini.RoleUser, contents[2].Role)
	assert.Equal(t, "now objectives please", contents[2].Parts[0].Text)
}

func TestRun_SystemInstructionAndTools(t *testing.T) {
	gen := &scriptedGenerator{responses: []*gemini.GenerateResponse{proseResponse("ok")}}
	loop := New(gen, newTestRegistry(&countingSearcher{}), 25, log.NewNop())

	require.NoError(t, loop.Run(context.Background(), userMessages("hi"), (&collector{}).emit))

	req := gen.requests[0]
	require.NotNil(t, req.SystemInstruction)
	assert.Contains(t, req.SystemInstruction.Parts[0].Text, "You are EduAssist")
	require.Len(t, req.Tools, 1)
	require.Len(t, req.Tools[0].FunctionDeclarations, 1)
	assert.Equal(t, "search_knowledge_base", req.Tools[0].FunctionDeclarations[0].Name)
}

func TestRun_IterationCap(t *testing.T) {
	// Generator that always asks for another tool call.
	searcher := &countingSearcher{}
	resp := callResponse(gemini.Part{FunctionCall: &gemini.FunctionCall{
		Name: "search_knowledge_base",
		Args: map[string]any{"query": "again"},
	}})
	gen := &scriptedGenerator{responses: []*gemini.GenerateResponse{
		resp, resp, resp, resp, resp,
	}}
	loop := New(gen, newTestRegistry(searcher), 3, log.NewNop())
	c := &collector{}

	err := loop.Run(context.Background(), userMessages("hi"), c.emit)
	require.NoError(t, err)

	assert.Equal(t, 3, searcher.calls)
	last := c.events[len(c.events)-1]
	assert.Equal(t, EventError, last.event)
	assert.Equal(t, map[string]string{"message": "No response generated"}, last.data)
}

func TestRun_EmptyMessages(t *testing.T) {
	loop := New(&scriptedGenerator{}, newTestRegistry(&countingSearcher{}), 25, log.NewNop())

	err := loop.Run(context.Background(), nil, (&collector{}).emit)
	assert.ErrorIs(t, err, ErrNoMessages)
}

func TestRun_GeneratorError(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("upstream 500")}
	loop := New(gen, newTestRegistry(&countingSearcher{}), 25, log.NewNop())
	c := &collector{}

	err := loop.Run(context.Background(), userMessages("hi"), c.emit)
	require.Error(t, err)

	last := c.events[len(c.events)-1]
	assert.Equal(t, EventError, last.event)
	assert.Contains(t, last.data.(map[string]string)["message"], "upstream 500")
}

func TestRun_EmptyCandidate(t *testing.T) {
	gen := &scriptedGenerator{responses: []*gemini.GenerateResponse{{}}}
	loop := New(gen, newTestRegistry(&countingSearcher{}), 25, log.NewNop())
	c := &collector{}

	err := loop.Run(context.Background(), userMessages("hi"), c.emit)
	require.NoError(t, err)

	last := c.events[len(c.events)-1]
	assert.Equal(t, EventError, last.event)
}

func TestRun_EmitFailureAborts(t *testing.T) {
	gen := &scriptedGenerator{responses: []*gemini.GenerateResponse{
		proseResponse("a b c d e f g"),
	}}
	loop := New(gen, newTestRegistry(&countingSearcher{}), 25, log.NewNop())
	c := &collector{failAfter: 3}

	err := loop.Run(context.Background(), userMessages("hi"), c.emit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client disconnected")
	assert.Len(t, c.events, 3)
}
