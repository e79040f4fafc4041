package outline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/pdfchat/internal/pdfdoc"
)

// fakeDoc is an in-memory document: named destinations registered by
// name, page indices registered by canonical ref key.
type fakeDoc struct {
	pageCount int
	named     map[string][]any
	pages     map[string]int
}

func (d *fakeDoc) PageCount() int { return d.pageCount }

func (d *fakeDoc) NamedDestination(name string) ([]any, error) {
	return d.named[name], nil
}

func (d *fakeDoc) PageIndexForRef(key string) (int, bool) {
	idx, ok := d.pages[key]
	return idx, ok
}

func testDoc() *fakeDoc {
	return &fakeDoc{
		pageCount: 20,
		named: map[string][]any{
			"ch1": {pdfdoc.Ref{Num: 100}, "XYZ"},
		},
		pages: map[string]int{
			"100R": 3,
			"101R": 7,
			"102R": 5,
			"103R": 9,
		},
	}
}

func item(title string, dest pdfdoc.Destination) *pdfdoc.OutlineItem {
	return &pdfdoc.OutlineItem{Title: title, Dest: dest}
}

func resolved(num int) pdfdoc.Destination {
	return pdfdoc.ResolvedDestination([]any{pdfdoc.Ref{Num: num}, "XYZ"})
}

func testResolver(doc Document) *Resolver {
	return NewResolver(doc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPageIndex_NamedMatchesResolved(t *testing.T) {
	r := testResolver(testDoc())

	// The same target reached by name and by expanded array must agree.
	byName, err := r.PageIndex(item("Chapter 1", pdfdoc.NamedDestination("ch1")))
	if err != nil {
		t.Fatalf("named: %v", err)
	}
	byArray, err := r.PageIndex(item("Chapter 1", resolved(100)))
	if err != nil {
		t.Fatalf("resolved: %v", err)
	}
	if byName != byArray {
		t.Errorf("named resolved to %d, array to %d", byName, byArray)
	}
	if byName != 3 {
		t.Errorf("expected page index 3, got %d", byName)
	}
}

func TestPageIndex_AbsentDestination(t *testing.T) {
	r := testResolver(testDoc())
	_, err := r.PageIndex(item("No target", pdfdoc.Destination{}))
	if !errors.Is(err, ErrDestinationNotFound) {
		t.Errorf("expected ErrDestinationNotFound, got %v", err)
	}
}

func TestPageIndex_UnknownName(t *testing.T) {
	r := testResolver(testDoc())
	_, err := r.PageIndex(item("Ghost", pdfdoc.NamedDestination("nope")))
	if !errors.Is(err, ErrDestinationNotFound) {
		t.Errorf("expected ErrDestinationNotFound, got %v", err)
	}
}

func TestPageIndex_DanglingReference(t *testing.T) {
	r := testResolver(testDoc())
	_, err := r.PageIndex(item("Dangling", resolved(999)))
	if !errors.Is(err, ErrPageIndexUnresolved) {
		t.Errorf("expected ErrPageIndexUnresolved, got %v", err)
	}
}

func TestPageIndex_NonReferenceFirstElement(t *testing.T) {
	r := testResolver(testDoc())
	dest := pdfdoc.ResolvedDestination([]any{5, "XYZ"})
	_, err := r.PageIndex(item("Remote", dest))
	if !errors.Is(err, ErrPageIndexUnresolved) {
		t.Errorf("expected ErrPageIndexUnresolved, got %v", err)
	}
}

func TestPagesForSelections_Empty(t *testing.T) {
	r := testResolver(testDoc())
	pages, err := r.PagesForSelections(context.Background(), nil)
	if err != nil {
		t.Fatalf("PagesForSelections: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected empty set, got %v", pages)
	}
}

func TestPagesForSelections_InclusiveRange(t *testing.T) {
	r := testResolver(testDoc())
	sels := []Selection{{
		Current:     item("A", resolved(100)), // page 3
		NextSibling: item("B", resolved(101)), // page 7
	}}

	pages, err := r.PagesForSelections(context.Background(), sels)
	if err != nil {
		t.Fatalf("PagesForSelections: %v", err)
	}

	want := []int{3, 4, 5, 6, 7}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %v", len(want), pages)
	}
	for _, p := range want {
		if _, ok := pages[p]; !ok {
			t.Errorf("missing page %d", p)
		}
	}
}

func TestPagesForSelections_OverlapUnion(t *testing.T) {
	r := testResolver(testDoc())
	sels := []Selection{
		{Current: item("A", resolved(100)), NextSibling: item("B", resolved(101))}, // [3,7]
		{Current: item("C", resolved(102)), NextSibling: item("D", resolved(103))}, // [5,9]
	}

	pages, err := r.PagesForSelections(context.Background(), sels)
	if err != nil {
		t.Fatalf("PagesForSelections: %v", err)
	}

	if len(pages) != 7 { // {3..9}
		t.Fatalf("expected 7 unique pages, got %d: %v", len(pages), pages)
	}
	for p := 3; p <= 9; p++ {
		if _, ok := pages[p]; !ok {
			t.Errorf("missing page %d", p)
		}
	}
}

func TestPagesForSelections_NoSiblingRunsToLastPage(t *testing.T) {
	doc := testDoc()
	doc.pageCount = 12
	doc.pages["110R"] = 10
	r := testResolver(doc)

	sels := []Selection{{Current: item("Tail", resolved(110))}}
	pages, err := r.PagesForSelections(context.Background(), sels)
	if err != nil {
		t.Fatalf("PagesForSelections: %v", err)
	}

	want := []int{10, 11}
	if len(pages) != len(want) {
		t.Fatalf("expected %v, got %v", want, pages)
	}
	for _, p := range want {
		if _, ok := pages[p]; !ok {
			t.Errorf("missing page %d", p)
		}
	}
}

func TestPagesForSelections_SkipsUnresolvable(t *testing.T) {
	r := testResolver(testDoc())
	sels := []Selection{
		{Current: item("Broken", resolved(999)), NextSibling: item("B", resolved(101))},
		{Current: item("A", resolved(100)), NextSibling: item("B", resolved(101))},
	}

	pages, err := r.PagesForSelections(context.Background(), sels)
	if err != nil {
		t.Fatalf("PagesForSelections: %v", err)
	}

	// The broken selection is skipped, the valid one survives.
	if len(pages) != 5 {
		t.Errorf("expected 5 pages from the valid selection, got %v", pages)
	}
}

func TestPagesForSelections_SkipsInvertedRange(t *testing.T) {
	r := testResolver(testDoc())
	sels := []Selection{{
		Current:     item("B", resolved(101)), // page 7
		NextSibling: item("A", resolved(100)), // page 3
	}}

	pages, err := r.PagesForSelections(context.Background(), sels)
	if err != nil {
		t.Fatalf("PagesForSelections: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected inverted range to contribute no pages, got %v", pages)
	}
}
