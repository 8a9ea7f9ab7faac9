package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eduassist/eduassist/internal/knowledge"
)

// ingestRequest accepts either one document or a batch.
type ingestRequest struct {
	Document  *knowledge.SourceDocument  `json:"document"`
	Documents []knowledge.SourceDocument `json:"documents"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.ingestor == nil {
		writeError(w, s.logger, http.StatusNotImplemented, "ingestion is not enabled")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	docs := req.Documents
	if req.Document != nil {
		docs = append(docs, *req.Document)
	}
	if len(docs) == 0 {
		writeError(w, s.logger, http.StatusBadRequest,
			`Either "document" or "documents" array is required`)
		return
	}

	results := make([]map[string]any, 0, len(docs))
	for _, res := range s.ingestor.IngestAll(r.Context(), docs) {
		switch {
		case errors.Is(res.Err, knowledge.ErrSourceExists):
			results = append(results, map[string]any{
				"success":     false,
				"source_file": res.SourceFile,
				"message":     "Document " + res.SourceFile + " already exists. Delete it first if you want to re-ingest.",
			})
		case res.Err != nil:
			results = append(results, map[string]any{
				"success":     false,
				"source_file": res.SourceFile,
				"error":       res.Err.Error(),
			})
		default:
			results = append(results, map[string]any{
				"success":        true,
				"source_file":    res.SourceFile,
				"chunks_created": res.ChunksInserted,
			})
		}
	}

	writeJSON(w, s.logger, http.StatusOK, map[string]any{
		"success": true,
		"results": results,
	})
}
