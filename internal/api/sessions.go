package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eduassist/eduassist/internal/session"
)

type sessionRequest struct {
	Title    string            `json:"title"`
	Messages []session.Message `json:"messages"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid session id")
		return
	}

	sess, err := s.sessions.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, s.logger, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"session": sess})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.sessions.Create(r.Context(), req.Title, req.Messages)
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, map[string]any{"session": sess})
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid session id")
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.sessions.Update(r.Context(), id, req.Title, req.Messages)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, s.logger, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"session": sess})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid session id")
		return
	}

	err = s.sessions.Delete(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, s.logger, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"success": true})
}
