package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pdfchat/internal/localstore"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.History()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []localstore.FileHistory{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": entries})
}

type setPageRequest struct {
	Page int `json:"page" validate:"min=1"`
}

func (s *Server) handleSetLastPage(w http.ResponseWriter, r *http.Request) {
	fileName := sanitizeFilename(chi.URLParam(r, "fileName"))

	var req setPageRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.store.SetLastVisitedPage(fileName, req.Page); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setOutlineStateRequest struct {
	State []string `json:"state" validate:"required"`
}

func (s *Server) handleSetOutlineState(w http.ResponseWriter, r *http.Request) {
	fileName := sanitizeFilename(chi.URLParam(r, "fileName"))

	var req setOutlineStateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.store.SetOutlineState(fileName, req.State); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
