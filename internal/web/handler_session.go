package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/fridgechef/internal/domain"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.service.CreateSession(r.Context()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := s.service.GetSession(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err, "get session", id)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteSession(r.Context(), id); err != nil {
		s.writeServiceError(w, err, "delete session", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type textRequest struct {
	Text string `json:"text"`
}

type ingredientsResponse struct {
	Added       []string `json:"added"`
	Ingredients []string `json:"ingredients"`
}

func (s *Server) handleAddIngredients(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added, err := s.service.AddIngredients(r.Context(), id, req.Text)
	if err != nil {
		s.writeServiceError(w, err, "add ingredients", id)
		return
	}
	s.writeIngredients(w, r, id, added)
}

func (s *Server) handleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.RemoveIngredient(r.Context(), id, r.PathValue("name")); err != nil {
		s.writeServiceError(w, err, "remove ingredient", id)
		return
	}
	s.writeIngredients(w, r, id, []string{})
}

func (s *Server) writeIngredients(w http.ResponseWriter, r *http.Request, id string, added []string) {
	snap, err := s.service.GetSession(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err, "get session", id)
		return
	}
	if added == nil {
		added = []string{}
	}
	writeJSON(w, http.StatusOK, ingredientsResponse{Added: added, Ingredients: snap.Ingredients})
}

func (s *Server) handleSetOptions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Fields left out of the body keep their default value.
	opts := domain.DefaultOptions()
	if err := decodeJSON(w, r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := s.service.SetOptions(r.Context(), id, opts)
	if err != nil {
		s.writeServiceError(w, err, "set options", id)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

type messageResponse struct {
	Turn  domain.Turn `json:"turn"`
	Error string      `json:"error,omitempty"`
}

// handleSendMessage runs one generation round. A failed generation still
// carries the fallback turn that was appended to the transcript.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := s.service.SendMessage(r.Context(), id, req.Text)
	var genErr *domain.GenerationError
	switch {
	case errors.As(err, &genErr):
		writeJSON(w, http.StatusBadGateway, messageResponse{Turn: turn, Error: genErr.Error()})
	case err != nil:
		s.writeServiceError(w, err, "send message", id)
	default:
		writeJSON(w, http.StatusOK, messageResponse{Turn: turn})
	}
}
