package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FileDocument is an opened PDF. pdfcpu provides the object graph
// (outline, named destinations, page references); ledongthuc/pdf
// provides per-page text content.
type FileDocument struct {
	ctx  *model.Context
	text *pdflib.Reader

	// pageRefs maps a canonical Ref key to its zero-based page index.
	pageRefs map[string]int

	outline []*OutlineItem
	title   string
	author  string
}

// Open parses the given PDF bytes and indexes its page references.
func Open(data []byte) (*FileDocument, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	text, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf text reader: %w", err)
	}

	d := &FileDocument{
		ctx:      ctx,
		text:     text,
		pageRefs: make(map[string]int, ctx.PageCount),
	}

	for i := 1; i <= ctx.PageCount; i++ {
		ir, err := ctx.PageDictIndRef(i)
		if err != nil || ir == nil {
			continue
		}
		ref := Ref{Num: ir.ObjectNumber.Value(), Gen: ir.GenerationNumber.Value()}
		d.pageRefs[ref.Key()] = i - 1
	}

	d.title, d.author = d.metadata()

	d.outline, err = d.readOutline()
	if err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}

	return d, nil
}

// PageCount returns the number of pages in the document.
func (d *FileDocument) PageCount() int {
	return d.ctx.PageCount
}

// Title returns the document title from the info dictionary, or "".
func (d *FileDocument) Title() string { return d.title }

// Author returns the document author from the info dictionary, or "".
func (d *FileDocument) Author() string { return d.author }

// Outline returns the parsed table of contents. Nil when the document
// carries none.
func (d *FileDocument) Outline() ([]*OutlineItem, error) {
	return d.outline, nil
}

// PageIndexForRef maps a canonical reference key to a zero-based page
// index. The second return value is false when the reference does not
// point at a page dictionary.
func (d *FileDocument) PageIndexForRef(key string) (int, bool) {
	idx, ok := d.pageRefs[key]
	return idx, ok
}

// PageText extracts the text fragments of the given zero-based page in
// content order. The underlying text reader panics on some malformed
// content streams, so extraction is recover-guarded.
func (d *FileDocument) PageText(pageIndex int) (frags []string, err error) {
	if pageIndex < 0 || pageIndex >= d.PageCount() {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", pageIndex, d.PageCount())
	}

	defer func() {
		if r := recover(); r != nil {
			frags = nil
			err = fmt.Errorf("extract page %d: %v", pageIndex, r)
		}
	}()

	p := d.text.Page(pageIndex + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d has no content", pageIndex)
	}

	content := p.Content()
	frags = make([]string, 0, len(content.Text))
	for _, t := range content.Text {
		if s := strings.TrimSpace(t.S); s != "" {
			frags = append(frags, s)
		}
	}
	return frags, nil
}

// Close releases the document. The readers are backed by in-memory
// buffers, so this only drops references.
func (d *FileDocument) Close() error {
	d.ctx = nil
	d.text = nil
	d.pageRefs = nil
	d.outline = nil
	return nil
}

func (d *FileDocument) metadata() (title, author string) {
	if d.ctx.Info == nil {
		return "", ""
	}
	obj, err := d.ctx.Dereference(*d.ctx.Info)
	if err != nil {
		return "", ""
	}
	dict, ok := obj.(types.Dict)
	if !ok {
		return "", ""
	}
	deref := func(o types.Object) (types.Object, error) { return d.ctx.Dereference(o) }
	if o, found := dict.Find("Title"); found {
		title, _ = decodeString(o, deref)
	}
	if o, found := dict.Find("Author"); found {
		author, _ = decodeString(o, deref)
	}
	return title, author
}
