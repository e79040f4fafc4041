package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/pdfchat/internal/localstore"
	"github.com/dgallion1/pdfchat/internal/outline"
	"github.com/dgallion1/pdfchat/internal/pdfdoc"
)

// outlineNode is the wire form of one outline entry. ID is a dotted
// index path the UI hands back to reference the item.
type outlineNode struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Leaf           bool          `json:"leaf"`
	HasDestination bool          `json:"has_destination"`
	Children       []outlineNode `json:"children,omitempty"`
}

func outlineNodes(items []*pdfdoc.OutlineItem, prefix string) []outlineNode {
	nodes := make([]outlineNode, 0, len(items))
	for i, it := range items {
		id := prefix + strconv.Itoa(i)
		nodes = append(nodes, outlineNode{
			ID:             id,
			Title:          it.Title,
			Leaf:           it.Leaf(),
			HasDestination: it.Dest.Kind != pdfdoc.DestAbsent,
			Children:       outlineNodes(it.Children, id+"."),
		})
	}
	return nodes
}

func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileName := sanitizeFilename(header.Filename)
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		jsonError(w, "only PDF files are supported", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, "file exceeds max size", http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := pdfdoc.Open(data)
	if err != nil {
		s.log.Error("open document failed", "file", fileName, "error", err)
		jsonError(w, "could not open document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	title := doc.Title()
	if title == "" {
		title = cleanFileName(fileName)
	}

	sess, err := s.sessions.Open(doc, fileName, title, doc.Author())
	if err != nil {
		doc.Close()
		s.log.Error("open session failed", "file", fileName, "error", err)
		jsonError(w, "could not open session", http.StatusInternalServerError)
		return
	}

	lastPage := s.store.LastVisitedPage(fileName)
	sess.SetCurrentPage(lastPage)

	entry := localstore.FileHistory{
		Title:           title,
		FileName:        fileName,
		Author:          doc.Author(),
		Thumbnail:       r.FormValue("thumbnail"),
		LastVisitedPage: lastPage,
		LastOpenedDate:  time.Now().UnixMilli(),
	}
	if err := s.store.TouchHistory(entry); err != nil {
		s.log.Warn("recording history failed", "file", fileName, "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":        sess.ID,
		"title":             title,
		"author":            doc.Author(),
		"page_count":        doc.PageCount(),
		"last_visited_page": lastPage,
		"outline":           outlineNodes(sess.Outline(), ""),
	})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"outline": outlineNodes(sess.Outline(), ""),
	})
}

type resolveRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req resolveRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	item, err := sess.ItemAt(req.ItemID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	idx, err := sess.Resolver.PageIndex(item)
	if err != nil {
		switch {
		case errors.Is(err, outline.ErrDestinationNotFound),
			errors.Is(err, outline.ErrPageIndexUnresolved):
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"page_index": idx})
}

func (s *Server) handleCloseDocument(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	// Persist the reading position before the session goes away.
	if err := s.store.SetLastVisitedPage(sess.FileName, sess.CurrentPage()); err != nil {
		s.log.Warn("saving reading position failed", "file", sess.FileName, "error", err)
	}

	s.sessions.Close(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}
