package outline

import (
	"errors"
	"testing"

	"github.com/dgallion1/pdfchat/internal/pdfdoc"
)

func TestSelectionList_RejectsDuplicate(t *testing.T) {
	l := NewSelectionList()
	sel := Selection{
		Current:     &pdfdoc.OutlineItem{Title: "Chapter 1"},
		NextSibling: &pdfdoc.OutlineItem{Title: "Chapter 2"},
	}

	if err := l.Add(sel); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := l.Add(sel); !errors.Is(err, ErrDuplicateSelection) {
		t.Errorf("expected ErrDuplicateSelection, got %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", l.Len())
	}
}

func TestSelectionList_SameTitleDifferentSibling(t *testing.T) {
	l := NewSelectionList()
	a := Selection{
		Current:     &pdfdoc.OutlineItem{Title: "Chapter 1"},
		NextSibling: &pdfdoc.OutlineItem{Title: "Chapter 2"},
	}
	b := Selection{Current: &pdfdoc.OutlineItem{Title: "Chapter 1"}}

	if err := l.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// The sibling is part of the identity, so this is a new selection.
	if err := l.Add(b); err != nil {
		t.Fatalf("Add with no sibling: %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", l.Len())
	}
}

func TestSelectionList_RemoveByTitle(t *testing.T) {
	l := NewSelectionList()
	l.Add(Selection{Current: &pdfdoc.OutlineItem{Title: "Keep"}})
	l.Add(Selection{Current: &pdfdoc.OutlineItem{Title: "Drop"}})

	if !l.Remove("Drop") {
		t.Error("expected Remove to report a removal")
	}
	if l.Remove("Drop") {
		t.Error("second Remove should find nothing")
	}

	all := l.All()
	if len(all) != 1 || all[0].Current.Title != "Keep" {
		t.Errorf("unexpected remaining entries: %+v", all)
	}

	// The key is freed, so the same selection can be dropped again.
	if err := l.Add(Selection{Current: &pdfdoc.OutlineItem{Title: "Drop"}}); err != nil {
		t.Errorf("re-adding removed selection: %v", err)
	}
}

func TestSelectionList_Clear(t *testing.T) {
	l := NewSelectionList()
	sel := Selection{Current: &pdfdoc.OutlineItem{Title: "Chapter 1"}}
	l.Add(sel)
	l.Clear()

	if l.Len() != 0 {
		t.Errorf("expected empty list, got %d entries", l.Len())
	}
	if err := l.Add(sel); err != nil {
		t.Errorf("Add after Clear: %v", err)
	}
}

func TestSelectionList_AllReturnsCopy(t *testing.T) {
	l := NewSelectionList()
	l.Add(Selection{Current: &pdfdoc.OutlineItem{Title: "A"}})

	all := l.All()
	all[0] = Selection{Current: &pdfdoc.OutlineItem{Title: "mutated"}}

	if l.All()[0].Current.Title != "A" {
		t.Error("All must return a copy, not the backing slice")
	}
}
