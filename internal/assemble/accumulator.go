// Package assemble turns candidate page sets into the text context
// handed to the chat model, memoizing which pages were already sent.
package assemble

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TextSource is the page-text capability of the host document.
type TextSource interface {
	PageText(pageIndex int) ([]string, error)
}

// Accumulator owns the visited-page set for one open document. Pages
// already supplied to the model in the current conversation episode are
// never extracted or sent again.
type Accumulator struct {
	src           TextSource
	maxConcurrent int
	log           *slog.Logger

	mu      sync.Mutex
	visited map[int]struct{}
}

func New(src TextSource, maxConcurrent int, log *slog.Logger) *Accumulator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Accumulator{
		src:           src,
		maxConcurrent: maxConcurrent,
		log:           log,
		visited:       make(map[int]struct{}),
	}
}

// BuildContext extracts text for every not-yet-visited page among the
// candidates plus the current page and returns it joined in ascending
// page order, fragments and pages separated by single spaces.
//
// The fresh pages are claimed into the visited set up front, under the
// lock, so two overlapping calls sharing the accumulator cannot extract
// the same page twice. A page whose extraction fails contributes empty
// text but stays claimed; retrying a broken page on every prompt is
// worse than missing it, and Clear is the recovery path.
func (a *Accumulator) BuildContext(ctx context.Context, candidates map[int]struct{}, currentPage int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a.mu.Lock()
	var pages []int
	claim := func(p int) {
		if _, seen := a.visited[p]; !seen {
			a.visited[p] = struct{}{}
			pages = append(pages, p)
		}
	}
	for p := range candidates {
		claim(p)
	}
	claim(currentPage)
	a.mu.Unlock()

	// Deterministic output order regardless of set iteration or
	// extraction completion order.
	sort.Ints(pages)

	texts := make([]string, len(pages))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)
	for i, p := range pages {
		i, p := i, p
		g.Go(func() error {
			frags, err := a.src.PageText(p)
			if err != nil {
				a.log.Warn("page text extraction failed", "page", p, "error", err)
				return nil
			}
			texts[i] = strings.Join(frags, " ")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	nonEmpty := texts[:0]
	for _, t := range texts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, " "), nil
}

// Clear empties the visited set. Called when the user clears the chat
// history or removes all dropped context.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visited = make(map[int]struct{})
}

// Visited reports whether a page has already been sent this episode.
func (a *Accumulator) Visited(page int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.visited[page]
	return ok
}
