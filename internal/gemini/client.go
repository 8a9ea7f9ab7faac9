// Package gemini is a thin REST client for the Gemini API.
//
// It covers the two endpoints the application uses, generateContent for
// the tool-calling conversation loop and embedContent for vector search.
// Consumers declare their own narrow interfaces over *Client.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Gemini REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrNoAPIKey indicates the client was constructed without an API key.
var ErrNoAPIKey = errors.New("gemini: API key is required")

// ErrEmptyEmbedding indicates the embedder returned no vector values.
var ErrEmptyEmbedding = errors.New("gemini: empty embedding in response")

// UpstreamError reports a non-2xx response from the Gemini API. The body
// is truncated for logging safety.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

const maxErrorBody = 2048

// ClientConfig configures a Client.
type ClientConfig struct {
	// APIKey authenticates requests via the x-goog-api-key header. Required.
	APIKey string

	// GenerationModel is the model for Generate calls, e.g. "gemini-2.5-flash".
	GenerationModel string

	// EmbedderModel is the model for Embed calls, e.g. "gemini-embedding-001".
	EmbedderModel string

	// EmbeddingDim truncates embeddings via outputDimensionality. Must
	// match the vector column width of the documents table.
	EmbeddingDim int

	// BaseURL overrides the API endpoint. Test use only.
	BaseURL string

	// HTTPClient overrides the underlying HTTP client. Defaults to a
	// client with a 120s timeout to accommodate long generations.
	HTTPClient *http.Client
}

// Client calls the Gemini REST API.
type Client struct {
	apiKey          string
	generationModel string
	embedderModel   string
	embeddingDim    int
	baseURL         string
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewClient creates a Client. The logger must not be nil.
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		apiKey:          cfg.APIKey,
		generationModel: cfg.GenerationModel,
		embedderModel:   cfg.EmbedderModel,
		embeddingDim:    cfg.EmbeddingDim,
		baseURL:         cfg.BaseURL,
		httpClient:      cfg.HTTPClient,
		logger:          logger,
	}, nil
}

// Generate sends a generateContent request for the configured model.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.generationModel)

	start := time.Now()
	var resp GenerateResponse
	if err := c.post(ctx, endpoint, req, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("generation completed",
		"model", c.generationModel,
		"candidates", len(resp.Candidates),
		"duration", time.Since(start))

	return &resp, nil
}

// Embed returns the embedding vector for the given text, truncated to
// the configured dimensionality.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	endpoint := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, c.embedderModel)

	req := embedRequest{
		Model:                "models/" + c.embedderModel,
		Content:              Content{Parts: []Part{{Text: text}}},
		OutputDimensionality: c.embeddingDim,
	}

	var resp embedResponse
	if err := c.post(ctx, endpoint, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return resp.Embedding.Values, nil
}

// post sends a JSON request and decodes a JSON response.
func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling %s: %w", endpoint, err)
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Warn("closing response body", "error", err)
		}
	}()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: httpResp.StatusCode,
			Body:       string(raw),
		}
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
