package outline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/pdfchat/internal/pdfdoc"
)

var (
	// ErrDestinationNotFound marks an outline entry with no resolvable
	// destination.
	ErrDestinationNotFound = errors.New("destination not found")

	// ErrPageIndexUnresolved marks a destination whose reference cannot
	// be mapped to a page (dangling reference in a malformed document).
	ErrPageIndexUnresolved = errors.New("page index unresolved")
)

// Document is the slice of the host document the resolver consumes.
// *pdfdoc.FileDocument satisfies it.
type Document interface {
	PageCount() int
	NamedDestination(name string) ([]any, error)
	PageIndexForRef(key string) (int, bool)
}

// Resolver maps outline items to page indices and selections to page
// sets.
type Resolver struct {
	doc Document
	log *slog.Logger
}

func NewResolver(doc Document, log *slog.Logger) *Resolver {
	return &Resolver{doc: doc, log: log}
}

// destination returns the item's destination array, resolving named
// destinations through the document.
func (r *Resolver) destination(item *pdfdoc.OutlineItem) ([]any, error) {
	switch item.Dest.Kind {
	case pdfdoc.DestNamed:
		arr, err := r.doc.NamedDestination(item.Dest.Name)
		if err != nil {
			return nil, fmt.Errorf("named destination %q: %w", item.Dest.Name, err)
		}
		if arr == nil {
			return nil, fmt.Errorf("named destination %q: %w", item.Dest.Name, ErrDestinationNotFound)
		}
		return arr, nil
	case pdfdoc.DestResolved:
		return item.Dest.Array, nil
	default:
		return nil, fmt.Errorf("outline item %q: %w", item.Title, ErrDestinationNotFound)
	}
}

// PageIndex resolves an outline item to its zero-based page index. The
// destination array's first element is taken as the page reference and
// looked up via its canonical key.
func (r *Resolver) PageIndex(item *pdfdoc.OutlineItem) (int, error) {
	dest, err := r.destination(item)
	if err != nil {
		return 0, err
	}
	if len(dest) == 0 {
		return 0, fmt.Errorf("outline item %q: empty destination: %w", item.Title, ErrPageIndexUnresolved)
	}
	ref, ok := dest[0].(pdfdoc.Ref)
	if !ok {
		return 0, fmt.Errorf("outline item %q: destination does not start with a reference: %w", item.Title, ErrPageIndexUnresolved)
	}
	idx, ok := r.doc.PageIndexForRef(ref.Key())
	if !ok {
		return 0, fmt.Errorf("outline item %q: reference %s: %w", item.Title, ref.Key(), ErrPageIndexUnresolved)
	}
	return idx, nil
}

// PagesForSelections converts selections into the deduplicated set of
// page indices they span. Each selection covers its own heading's page
// through the next sibling's page inclusive, or the document's last
// page when no sibling exists. Selections are resolved concurrently;
// unresolvable or inverted ranges are skipped with a warning rather
// than aborting the remaining selections.
func (r *Resolver) PagesForSelections(ctx context.Context, sels []Selection) (map[int]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type pageRange struct {
		start, end int
		ok         bool
	}
	ranges := make([]pageRange, len(sels))

	g, _ := errgroup.WithContext(ctx)
	for i, sel := range sels {
		i, sel := i, sel
		g.Go(func() error {
			start, err := r.PageIndex(sel.Current)
			if err != nil {
				r.log.Warn("skipping selection", "title", sel.Current.Title, "error", err)
				return nil
			}
			end := r.doc.PageCount() - 1
			if sel.NextSibling != nil {
				end, err = r.PageIndex(sel.NextSibling)
				if err != nil {
					r.log.Warn("skipping selection", "title", sel.Current.Title,
						"next_sibling", sel.NextSibling.Title, "error", err)
					return nil
				}
			}
			if start > end {
				r.log.Warn("selection spans inverted range", "title", sel.Current.Title,
					"start", start, "end", end)
				return nil
			}
			ranges[i] = pageRange{start: start, end: end, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pages := make(map[int]struct{})
	for _, pr := range ranges {
		if !pr.ok {
			continue
		}
		for p := pr.start; p <= pr.end; p++ {
			pages[p] = struct{}{}
		}
	}
	return pages, nil
}
