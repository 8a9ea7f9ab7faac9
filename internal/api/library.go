package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eduassist/eduassist/internal/library"
)

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	items, err := s.library.ListContent(r.Context())
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []library.Content{}
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"content": items})
}

func (s *Server) handleSaveObjectives(w http.ResponseWriter, r *http.Request) {
	var params library.SaveObjectivesParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	set, err := s.library.SaveObjectives(r.Context(), params)
	if errors.Is(err, library.ErrMissingFields) {
		writeError(w, s.logger, http.StatusBadRequest,
			"Missing required fields: topic, objectives_text, objective_count")
		return
	}
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, map[string]any{
		"success": true,
		"data":    set,
	})
}

func (s *Server) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	sets, err := s.library.ListObjectives(r.Context())
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	if sets == nil {
		sets = []library.ObjectiveSet{}
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"objectives": sets})
}

func (s *Server) handleDeleteObjectives(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid objective set id")
		return
	}

	err = s.library.DeleteObjectives(r.Context(), id)
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, s.logger, http.StatusNotFound, "objective set not found")
		return
	}
	if err != nil {
		writeError(w, s.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{"success": true})
}
