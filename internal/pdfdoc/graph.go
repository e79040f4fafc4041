package pdfdoc

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// derefFn resolves an object, following indirect references. The
// file-backed document supplies pdfcpu's Dereference; tests supply a
// map-backed fake.
type derefFn func(types.Object) (types.Object, error)

// maxOutlineDepth caps recursion into outline children. Well-formed
// documents never get close; a cyclic First/Next graph must not hang us.
const maxOutlineDepth = 64

func (d *FileDocument) readOutline() ([]*OutlineItem, error) {
	rootDict, err := d.ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	deref := func(o types.Object) (types.Object, error) { return d.ctx.Dereference(o) }
	return parseOutline(rootDict, deref)
}

// parseOutline walks the outline dictionary chain under the catalog.
// Returns nil when the document has no outline.
func parseOutline(catalog types.Dict, deref derefFn) ([]*OutlineItem, error) {
	obj, found := catalog.Find("Outlines")
	if !found {
		return nil, nil
	}
	o, err := deref(obj)
	if err != nil {
		return nil, err
	}
	dict, ok := o.(types.Dict)
	if !ok {
		return nil, nil
	}
	first, found := dict.Find("First")
	if !found {
		return nil, nil
	}
	seen := make(map[int]bool)
	return walkSiblings(first, deref, seen, 0), nil
}

// walkSiblings follows a First/Next chain, guarding against reference
// cycles via the seen set and against runaway nesting via depth.
func walkSiblings(obj types.Object, deref derefFn, seen map[int]bool, depth int) []*OutlineItem {
	if depth > maxOutlineDepth {
		return nil
	}

	var items []*OutlineItem
	for obj != nil {
		if ir, ok := obj.(types.IndirectRef); ok {
			num := ir.ObjectNumber.Value()
			if seen[num] {
				break
			}
			seen[num] = true
		}

		o, err := deref(obj)
		if err != nil {
			break
		}
		dict, ok := o.(types.Dict)
		if !ok {
			break
		}

		item := &OutlineItem{Dest: itemDestination(dict, deref)}
		if t, found := dict.Find("Title"); found {
			item.Title, _ = decodeString(t, deref)
		}
		if first, found := dict.Find("First"); found {
			item.Children = walkSiblings(first, deref, seen, depth+1)
		}
		items = append(items, item)

		next, found := dict.Find("Next")
		if !found {
			break
		}
		obj = next
	}
	return items
}

// itemDestination classifies an outline entry's target. /Dest wins;
// otherwise a GoTo action's /D is used. Name and string forms become
// named destinations, arrays are taken as already resolved.
func itemDestination(dict types.Dict, deref derefFn) Destination {
	target, found := dict.Find("Dest")
	if !found {
		if a, ok := dict.Find("A"); ok {
			o, err := deref(a)
			if err != nil {
				return Destination{}
			}
			action, ok := o.(types.Dict)
			if !ok {
				return Destination{}
			}
			if s, found := action.Find("S"); found {
				if name, ok := s.(types.Name); !ok || name.Value() != "GoTo" {
					return Destination{}
				}
			}
			target, found = action.Find("D")
			if !found {
				return Destination{}
			}
		} else {
			return Destination{}
		}
	}

	o, err := deref(target)
	if err != nil {
		return Destination{}
	}
	switch v := o.(type) {
	case types.Name:
		return NamedDestination(v.Value())
	case types.StringLiteral, types.HexLiteral:
		name, err := decodeString(v, deref)
		if err != nil {
			return Destination{}
		}
		return NamedDestination(name)
	case types.Array:
		return ResolvedDestination(convertDestArray(v))
	}
	return Destination{}
}

// NamedDestination resolves a destination name through the document.
// Both the PDF 1.1 /Dests dictionary and the /Names name tree are
// consulted. Returns nil when the name is not registered.
func (d *FileDocument) NamedDestination(name string) ([]any, error) {
	rootDict, err := d.ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	deref := func(o types.Object) (types.Object, error) { return d.ctx.Dereference(o) }
	return lookupNamedDest(rootDict, name, deref)
}

func lookupNamedDest(catalog types.Dict, name string, deref derefFn) ([]any, error) {
	// Legacy /Dests dictionary.
	if obj, found := catalog.Find("Dests"); found {
		o, err := deref(obj)
		if err != nil {
			return nil, err
		}
		if dict, ok := o.(types.Dict); ok {
			if target, found := dict.Find(name); found {
				return destArrayFor(target, deref)
			}
		}
	}

	// /Names name tree.
	obj, found := catalog.Find("Names")
	if !found {
		return nil, nil
	}
	o, err := deref(obj)
	if err != nil {
		return nil, err
	}
	namesDict, ok := o.(types.Dict)
	if !ok {
		return nil, nil
	}
	dests, found := namesDict.Find("Dests")
	if !found {
		return nil, nil
	}
	return searchNameTree(dests, name, deref, 0)
}

// searchNameTree descends a name-tree node. Leaf nodes carry a /Names
// array of alternating keys and values; intermediate nodes carry /Kids
// with /Limits for pruning.
func searchNameTree(node types.Object, name string, deref derefFn, depth int) ([]any, error) {
	if depth > maxOutlineDepth {
		return nil, nil
	}
	o, err := deref(node)
	if err != nil {
		return nil, err
	}
	dict, ok := o.(types.Dict)
	if !ok {
		return nil, nil
	}

	if namesObj, found := dict.Find("Names"); found {
		no, err := deref(namesObj)
		if err != nil {
			return nil, err
		}
		arr, ok := no.(types.Array)
		if !ok {
			return nil, nil
		}
		for i := 0; i+1 < len(arr); i += 2 {
			key, err := decodeString(arr[i], deref)
			if err != nil {
				continue
			}
			if key == name {
				return destArrayFor(arr[i+1], deref)
			}
		}
		return nil, nil
	}

	if kidsObj, found := dict.Find("Kids"); found {
		ko, err := deref(kidsObj)
		if err != nil {
			return nil, err
		}
		kids, ok := ko.(types.Array)
		if !ok {
			return nil, nil
		}
		for _, kid := range kids {
			if !nameWithinLimits(kid, name, deref) {
				continue
			}
			dest, err := searchNameTree(kid, name, deref, depth+1)
			if err != nil || dest != nil {
				return dest, err
			}
		}
	}
	return nil, nil
}

// nameWithinLimits checks a kid node's /Limits bounds. Nodes without
// limits are always searched.
func nameWithinLimits(kid types.Object, name string, deref derefFn) bool {
	o, err := deref(kid)
	if err != nil {
		return false
	}
	dict, ok := o.(types.Dict)
	if !ok {
		return false
	}
	limitsObj, found := dict.Find("Limits")
	if !found {
		return true
	}
	lo, err := deref(limitsObj)
	if err != nil {
		return true
	}
	limits, ok := lo.(types.Array)
	if !ok || len(limits) < 2 {
		return true
	}
	low, err1 := decodeString(limits[0], deref)
	high, err2 := decodeString(limits[1], deref)
	if err1 != nil || err2 != nil {
		return true
	}
	return name >= low && name <= high
}

// destArrayFor normalizes a destination target: a bare array is used
// directly, a dictionary contributes its /D entry.
func destArrayFor(target types.Object, deref derefFn) ([]any, error) {
	o, err := deref(target)
	if err != nil {
		return nil, err
	}
	switch v := o.(type) {
	case types.Array:
		return convertDestArray(v), nil
	case types.Dict:
		if dObj, found := v.Find("D"); found {
			do, err := deref(dObj)
			if err != nil {
				return nil, err
			}
			if arr, ok := do.(types.Array); ok {
				return convertDestArray(arr), nil
			}
		}
	}
	return nil, nil
}

// convertDestArray maps pdfcpu destination elements onto the neutral
// representation the resolver consumes. Indirect references become Refs
// (deliberately not dereferenced: the resolver needs the reference
// itself, not the page dictionary behind it).
func convertDestArray(arr types.Array) []any {
	out := make([]any, 0, len(arr))
	for _, el := range arr {
		switch v := el.(type) {
		case types.IndirectRef:
			out = append(out, Ref{Num: v.ObjectNumber.Value(), Gen: v.GenerationNumber.Value()})
		case types.Integer:
			out = append(out, v.Value())
		case types.Name:
			out = append(out, v.Value())
		case types.Float:
			out = append(out, v.Value())
		default:
			out = append(out, v)
		}
	}
	return out
}

// decodeString decodes a (possibly indirect) PDF string or name object.
func decodeString(obj types.Object, deref derefFn) (string, error) {
	o, err := deref(obj)
	if err != nil {
		return "", err
	}
	switch v := o.(type) {
	case types.StringLiteral:
		return types.StringLiteralToString(v)
	case types.HexLiteral:
		return types.HexLiteralToString(v)
	case types.Name:
		return v.Value(), nil
	}
	return "", fmt.Errorf("not a string object: %T", o)
}
