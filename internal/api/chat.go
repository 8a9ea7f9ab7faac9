package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eduassist/eduassist/internal/chat"
	"github.com/eduassist/eduassist/internal/sse"
)

// chatRequest is the POST /api/v1/chat body.
type chatRequest struct {
	Messages []chat.Message `json:"messages"`
}

// handleChat validates the request, switches the response to SSE, and
// hands the conversation to the loop. Validation failures are returned
// as synchronous JSON errors; once streaming starts, failures arrive as
// error events instead.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, "invalid request body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, s.logger, http.StatusInternalServerError, "Messages array is required")
		return
	}

	stream, err := sse.NewWriter(w)
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}

	err = s.runner.Run(r.Context(), req.Messages, stream.Send)
	if err != nil && !errors.Is(err, chat.ErrNoMessages) {
		// Already surfaced to the client as an error event where
		// possible; log for the operator.
		s.logger.Error("chat run failed",
			"error", err,
			"request_id", RequestID(r.Context()))
	}
}
