// Package session ties one open document to the state that belongs to
// it: the visited-page accumulator, the dropped selections and the
// reading position. Nothing here is shared across documents.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/pdfchat/internal/assemble"
	"github.com/dgallion1/pdfchat/internal/outline"
	"github.com/dgallion1/pdfchat/internal/pdfdoc"
)

// Document is the full capability surface a session needs from an open
// document. *pdfdoc.FileDocument satisfies it.
type Document interface {
	PageCount() int
	NamedDestination(name string) ([]any, error)
	PageIndexForRef(key string) (int, bool)
	PageText(pageIndex int) ([]string, error)
	Outline() ([]*pdfdoc.OutlineItem, error)
	Close() error
}

// Session is one open document plus its conversation-scoped state.
type Session struct {
	ID       string
	FileName string
	Title    string
	Author   string

	doc         Document
	Resolver    *outline.Resolver
	Accumulator *assemble.Accumulator
	Selections  *outline.SelectionList

	outlineTree []*pdfdoc.OutlineItem

	mu          sync.Mutex
	currentPage int
	lastAccess  time.Time
}

func newSession(doc Document, fileName, title, author string, maxConcurrentExtract int, log *slog.Logger) (*Session, error) {
	tree, err := doc.Outline()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:          uuid.NewString(),
		FileName:    fileName,
		Title:       title,
		Author:      author,
		doc:         doc,
		Resolver:    outline.NewResolver(doc, log),
		Accumulator: assemble.New(doc, maxConcurrentExtract, log),
		Selections:  outline.NewSelectionList(),
		outlineTree: tree,
		currentPage: 1,
		lastAccess:  time.Now(),
	}, nil
}

// Outline returns the cached outline tree.
func (s *Session) Outline() []*pdfdoc.OutlineItem {
	return s.outlineTree
}

// Document returns the open document handle.
func (s *Session) Document() Document {
	return s.doc
}

// ItemAt resolves a dotted outline path against the cached tree.
func (s *Session) ItemAt(path string) (*pdfdoc.OutlineItem, error) {
	return outline.ItemAt(s.outlineTree, path)
}

// Touch records activity, deferring TTL eviction.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

// SetCurrentPage records the 1-based page the reader is on.
func (s *Session) SetCurrentPage(page int) {
	s.mu.Lock()
	s.currentPage = page
	s.mu.Unlock()
}

// CurrentPage returns the 1-based page the reader is on.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// RemoveSelection drops a selection by its current item's title. When
// the last selection goes, the visited set goes with it: with no
// dropped context left, the next prompt starts a fresh episode.
func (s *Session) RemoveSelection(title string) bool {
	removed := s.Selections.Remove(title)
	if removed && s.Selections.Len() == 0 {
		s.Accumulator.Clear()
	}
	return removed
}

// ClearSelections removes all dropped context and resets the visited
// set.
func (s *Session) ClearSelections() {
	s.Selections.Clear()
	s.Accumulator.Clear()
}

// ClearChat resets the visited set when the user clears chat history.
func (s *Session) ClearChat() {
	s.Accumulator.Clear()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Close releases the underlying document.
func (s *Session) Close() error {
	return s.doc.Close()
}
