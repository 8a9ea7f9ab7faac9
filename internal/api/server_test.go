package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduassist/eduassist/internal/api"
	"github.com/eduassist/eduassist/internal/chat"
	"github.com/eduassist/eduassist/internal/knowledge"
	"github.com/eduassist/eduassist/internal/library"
	"github.com/eduassist/eduassist/internal/log"
	"github.com/eduassist/eduassist/internal/session"
	"github.com/eduassist/eduassist/internal/testutil"
)

// fakeRunner replays a scripted event sequence through emit.
type fakeRunner struct {
	gotMessages []chat.Message
	err         error
}

func (f *fakeRunner) Run(_ context.Context, messages []chat.Message, emit chat.EmitFunc) error {
	f.gotMessages = messages
	if f.err != nil {
		_ = emit(chat.EventError, map[string]string{"message": f.err.Error()})
		return f.err
	}
	if err := emit(chat.EventStatus, chat.Status{Stage: "analyzing", Message: "Analyzing your request..."}); err != nil {
		return err
	}
	if err := emit(chat.EventContent, map[string]string{"text": "Hello"}); err != nil {
		return err
	}
	return emit(chat.EventDone, map[string]any{"function_calls": []any{}})
}

type fakeSessions struct {
	byID map[uuid.UUID]*session.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: make(map[uuid.UUID]*session.Session)}
}

func (f *fakeSessions) List(context.Context) ([]session.Session, error) {
	var out []session.Session
	for _, s := range f.byID {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSessions) Get(_ context.Context, id uuid.UUID) (*session.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) Create(_ context.Context, title string, messages []session.Message) (*session.Session, error) {
	s := &session.Session{ID: uuid.New(), Title: title, Messages: messages}
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeSessions) Update(_ context.Context, id uuid.UUID, title string, messages []session.Message) (*session.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	s.Title = title
	s.Messages = messages
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return session.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeLibrary struct {
	sets []library.ObjectiveSet
}

func (f *fakeLibrary) ListContent(context.Context) ([]library.Content, error) { return nil, nil }

func (f *fakeLibrary) SaveObjectives(_ context.Context, p library.SaveObjectivesParams) (*library.ObjectiveSet, error) {
	if p.Topic == "" || p.ObjectivesText == "" || p.ObjectiveCount == 0 {
		return nil, library.ErrMissingFields
	}
	set := library.ObjectiveSet{
		ID:             uuid.New(),
		Topic:          p.Topic,
		ObjectivesText: p.ObjectivesText,
		ObjectiveCount: p.ObjectiveCount,
		Sources:        p.Sources,
	}
	f.sets = append(f.sets, set)
	return &set, nil
}

func (f *fakeLibrary) ListObjectives(context.Context) ([]library.ObjectiveSet, error) {
	return f.sets, nil
}

func (f *fakeLibrary) DeleteObjectives(_ context.Context, id uuid.UUID) error {
	for i, set := range f.sets {
		if set.ID == id {
			f.sets = append(f.sets[:i], f.sets[i+1:]...)
			return nil
		}
	}
	return library.ErrNotFound
}

type fakeIngestor struct {
	existing map[string]bool
}

func (f *fakeIngestor) IngestAll(_ context.Context, docs []knowledge.SourceDocument) []knowledge.IngestResult {
	results := make([]knowledge.IngestResult, 0, len(docs))
	for _, doc := range docs {
		if f.existing[doc.SourceFile] {
			results = append(results, knowledge.IngestResult{
				SourceFile: doc.SourceFile,
				Skipped:    true,
				Err:        knowledge.ErrSourceExists,
			})
			continue
		}
		results = append(results, knowledge.IngestResult{
			SourceFile:     doc.SourceFile,
			ChunksInserted: 2,
		})
	}
	return results
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

type serverDeps struct {
	runner   *fakeRunner
	sessions *fakeSessions
	library  *fakeLibrary
	ingestor *fakeIngestor
	pinger   *fakePinger
}

func newTestServer(t *testing.T, mutate func(*serverDeps)) (*httptest.Server, *serverDeps) {
	t.Helper()
	deps := &serverDeps{
		runner:   &fakeRunner{},
		sessions: newFakeSessions(),
		library:  &fakeLibrary{},
		ingestor: &fakeIngestor{existing: map[string]bool{}},
		pinger:   &fakePinger{},
	}
	if mutate != nil {
		mutate(deps)
	}

	srv := api.New(api.Config{
		Addr:          ":0",
		CORSOrigins:   []string{"http://localhost:3000"},
		RatePerMinute: 600,
		RateBurst:     600,
	}, deps.runner, deps.sessions, deps.library, deps.ingestor, deps.pinger, log.NewNop())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, deps
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestChat_StreamsEvents(t *testing.T) {
	ts, deps := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/v1/chat",
		`{"messages":[{"role":"user","content":"hello"}]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	events := testutil.ParseSSEEvents(string(raw))
	assert.Equal(t, []string{chat.EventStatus, chat.EventContent, chat.EventDone},
		testutil.EventNames(events))
	require.Len(t, deps.runner.gotMessages, 1)
	assert.Equal(t, "hello", deps.runner.gotMessages[0].Content)
}

func TestChat_EmptyMessages(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/v1/chat", `{"messages":[]}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Messages array is required", body["error"])
}

func TestChat_MalformedBody(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/v1/chat", `{not json`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "invalid request body")
}

func TestSessions_CRUD(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	// Create
	resp := postJSON(t, ts.URL+"/api/v1/sessions",
		`{"title":"Planning mitosis","messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["session"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "Planning mitosis", created["title"])

	// Get
	resp, err := http.Get(ts.URL + "/api/v1/sessions/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// List
	resp, err = http.Get(ts.URL + "/api/v1/sessions")
	require.NoError(t, err)
	listed := decodeBody(t, resp)
	assert.Len(t, listed["sessions"], 1)

	// Delete
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/sessions/"+id, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Get after delete
	resp, err = http.Get(ts.URL + "/api/v1/sessions/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSessions_InvalidID(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/v1/sessions/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestObjectives_SaveValidation(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/v1/objectives", `{"topic":"ethics"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "Missing required fields")
}

func TestObjectives_SaveAndList(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/v1/objectives",
		`{"topic":"ethics","objectives_text":"1. Analyze...","objective_count":3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved := decodeBody(t, resp)
	assert.Equal(t, true, saved["success"])

	resp, err := http.Get(ts.URL + "/api/v1/objectives")
	require.NoError(t, err)
	listed := decodeBody(t, resp)
	assert.Len(t, listed["objectives"], 1)
}

func TestObjectives_SaveWithSearchResultSources(t *testing.T) {
	ts, deps := newTestServer(t, nil)

	// Sources arrive as search result snapshots, not plain strings.
	resp := postJSON(t, ts.URL+"/api/v1/objectives", `{
		"topic": "cell biology",
		"objectives_text": "1. Describe mitosis",
		"objective_count": 1,
		"sources": [
			{"id": "1", "title": "Cell Biology", "content": "Mitosis is...", "source": "cell_biology.md", "similarity": 0.92}
		]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	require.Len(t, deps.library.sets, 1)
	sources := deps.library.sets[0].Sources
	require.Len(t, sources, 1)
	assert.Equal(t, "cell_biology.md", sources[0]["source"])
	assert.InDelta(t, 0.92, sources[0]["similarity"], 0.001)
}

func TestIngest_SingleAndDuplicate(t *testing.T) {
	ts, _ := newTestServer(t, func(d *serverDeps) {
		d.ingestor.existing["old.md"] = true
	})

	resp := postJSON(t, ts.URL+"/api/v1/ingest",
		`{"documents":[{"source_file":"new.md","content":"text"},{"source_file":"old.md","content":"text"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	results := body["results"].([]any)
	require.Len(t, results, 2)

	first := results[0].(map[string]any)
	assert.Equal(t, true, first["success"])
	assert.InDelta(t, 2, first["chunks_created"], 0)

	second := results[1].(map[string]any)
	assert.Equal(t, false, second["success"])
	assert.Contains(t, second["message"], "already exists")
}

func TestIngest_MissingDocuments(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/v1/ingest", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthAndReady(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestReady_DatabaseDown(t *testing.T) {
	ts, _ := newTestServer(t, func(d *serverDeps) {
		d.pinger.err = errors.New("connection refused")
	})

	resp, err := http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "unavailable", body["status"])
}

func TestCORS_Preflight(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	srv := api.New(api.Config{
		Addr:          ":0",
		RatePerMinute: 1,
		RateBurst:     1,
	}, &fakeRunner{}, newFakeSessions(), &fakeLibrary{}, nil, &fakePinger{}, log.NewNop())
	tight := httptest.NewServer(srv.Handler())
	defer tight.Close()

	resp, err := http.Get(tight.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(tight.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	id := resp.Header.Get("X-Request-ID")
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
}
