package outline

import (
	"errors"
	"sync"

	"github.com/dgallion1/pdfchat/internal/pdfdoc"
)

// ErrDuplicateSelection is returned when a selection with the same
// (current title, next-sibling title) pair is already present.
var ErrDuplicateSelection = errors.New("selection already present")

// Selection is one outline subtree the user dropped into the context
// tray. NextSibling, when present, bounds the page range the subtree
// spans; without it the range runs to the end of the document.
type Selection struct {
	Current     *pdfdoc.OutlineItem
	NextSibling *pdfdoc.OutlineItem
	Leaf        bool
}

func (s Selection) key() string {
	k := s.Current.Title + "\x00"
	if s.NextSibling != nil {
		k += s.NextSibling.Title
	}
	return k
}

// SelectionList holds the dropped selections for one session, rejecting
// duplicates.
type SelectionList struct {
	mu      sync.Mutex
	entries []Selection
	keys    map[string]struct{}
}

func NewSelectionList() *SelectionList {
	return &SelectionList{keys: make(map[string]struct{})}
}

// Add appends a selection, or returns ErrDuplicateSelection.
func (l *SelectionList) Add(sel Selection) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := sel.key()
	if _, ok := l.keys[k]; ok {
		return ErrDuplicateSelection
	}
	l.keys[k] = struct{}{}
	l.entries = append(l.entries, sel)
	return nil
}

// Remove drops every selection whose current item carries the given
// title and reports whether anything was removed.
func (l *SelectionList) Remove(title string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := false
	kept := l.entries[:0]
	for _, sel := range l.entries {
		if sel.Current.Title == title {
			delete(l.keys, sel.key())
			removed = true
			continue
		}
		kept = append(kept, sel)
	}
	l.entries = kept
	return removed
}

// Clear empties the list.
func (l *SelectionList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.keys = make(map[string]struct{})
}

// All returns a copy of the current selections in insertion order.
func (l *SelectionList) All() []Selection {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Selection, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of selections.
func (l *SelectionList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
