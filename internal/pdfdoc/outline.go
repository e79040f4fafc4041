package pdfdoc

// DestKind discriminates the destination variants an outline entry can
// carry. Destinations are classified once at parse time, never inferred
// from runtime shape later.
type DestKind int

const (
	// DestAbsent marks an entry with no navigable target.
	DestAbsent DestKind = iota
	// DestNamed references a destination registered elsewhere in the
	// document under a name.
	DestNamed
	// DestResolved carries an already-expanded destination array whose
	// first element is the target page reference.
	DestResolved
)

// Destination is the tagged union of outline destination variants.
type Destination struct {
	Kind  DestKind
	Name  string // set when Kind == DestNamed
	Array []any  // set when Kind == DestResolved
}

func NamedDestination(name string) Destination {
	return Destination{Kind: DestNamed, Name: name}
}

func ResolvedDestination(arr []any) Destination {
	return Destination{Kind: DestResolved, Array: arr}
}

// OutlineItem is one node of the document's table of contents. The tree
// is parsed once when a document opens and is immutable afterwards.
type OutlineItem struct {
	Title    string
	Dest     Destination
	Children []*OutlineItem
}

// Leaf reports whether the item has no children.
func (it *OutlineItem) Leaf() bool {
	return len(it.Children) == 0
}
