package api

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/pdfchat/internal/outline"
)

type addSelectionRequest struct {
	ItemID        string `json:"item_id" validate:"required"`
	NextSiblingID string `json:"next_sibling_id"`
}

func (s *Server) handleAddSelection(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req addSelectionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	item, err := sess.ItemAt(req.ItemID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	sel := outline.Selection{Current: item, Leaf: item.Leaf()}
	if req.NextSiblingID != "" {
		sibling, err := sess.ItemAt(req.NextSiblingID)
		if err != nil {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		sel.NextSibling = sibling
	}

	if err := sess.Selections.Add(sel); err != nil {
		if errors.Is(err, outline.ErrDuplicateSelection) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"count": sess.Selections.Len()})
}

type selectionView struct {
	Title            string `json:"title"`
	NextSiblingTitle string `json:"next_sibling_title,omitempty"`
	Leaf             bool   `json:"leaf"`
}

func (s *Server) handleListSelections(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	sels := sess.Selections.All()
	views := make([]selectionView, 0, len(sels))
	for _, sel := range sels {
		v := selectionView{Title: sel.Current.Title, Leaf: sel.Leaf}
		if sel.NextSibling != nil {
			v.NextSiblingTitle = sel.NextSibling.Title
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"selections": views})
}

func (s *Server) handleRemoveSelection(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	title := chi.URLParam(r, "title")
	if !sess.RemoveSelection(title) {
		jsonError(w, "selection not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSelections(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.ClearSelections()
	w.WriteHeader(http.StatusNoContent)
}

type buildContextRequest struct {
	CurrentPage int `json:"current_page" validate:"min=1"`
}

// handleBuildContext converts the dropped selections into a page set,
// assembles the not-yet-sent text and returns it.
func (s *Server) handleBuildContext(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req buildContextRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	sess.SetCurrentPage(req.CurrentPage)

	text, pages, err := s.assembleContext(r, req.CurrentPage)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"context": text,
		"pages":   pages,
	})
}

// assembleContext runs the selections → page set → accumulator chain
// for the request's session. Returns the context text and the sorted
// candidate page indices.
func (s *Server) assembleContext(r *http.Request, currentPage int) (string, []int, error) {
	sess := sessionFrom(r)
	ctx := r.Context()

	pageSet, err := sess.Resolver.PagesForSelections(ctx, sess.Selections.All())
	if err != nil {
		return "", nil, err
	}

	// The reader position is 1-based; page sets hold 0-based indices.
	currentIndex := currentPage - 1
	if currentIndex < 0 {
		currentIndex = 0
	}

	text, err := sess.Accumulator.BuildContext(ctx, pageSet, currentIndex)
	if err != nil {
		return "", nil, err
	}

	pages := make([]int, 0, len(pageSet))
	for p := range pageSet {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return text, pages, nil
}
