package pdfdoc

import (
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// fakeDeref resolves indirect references against an object map, like a
// document's cross-reference table would.
func fakeDeref(objects map[int]types.Object) derefFn {
	return func(o types.Object) (types.Object, error) {
		for {
			ir, ok := o.(types.IndirectRef)
			if !ok {
				return o, nil
			}
			resolved, ok := objects[ir.ObjectNumber.Value()]
			if !ok {
				return nil, fmt.Errorf("dangling reference %d", ir.ObjectNumber.Value())
			}
			o = resolved
		}
	}
}

func ref(num int) types.IndirectRef {
	return types.IndirectRef{ObjectNumber: types.Integer(num)}
}

func TestParseOutline_FlatChain(t *testing.T) {
	objects := map[int]types.Object{
		10: types.Dict{"First": ref(11)},
		11: types.Dict{
			"Title": types.StringLiteral("Introduction"),
			"Dest":  types.Array{ref(100), types.Name("XYZ")},
			"Next":  ref(12),
		},
		12: types.Dict{
			"Title": types.StringLiteral("Conclusion"),
			"Dest":  types.Name("conclusion"),
		},
	}
	catalog := types.Dict{"Outlines": ref(10)}

	items, err := parseOutline(catalog, fakeDeref(objects))
	if err != nil {
		t.Fatalf("parseOutline: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].Title != "Introduction" {
		t.Errorf("expected title Introduction, got %q", items[0].Title)
	}
	if items[0].Dest.Kind != DestResolved {
		t.Fatalf("expected resolved destination, got kind %d", items[0].Dest.Kind)
	}
	if r, ok := items[0].Dest.Array[0].(Ref); !ok || r.Num != 100 {
		t.Errorf("expected destination ref 100, got %#v", items[0].Dest.Array[0])
	}

	if items[1].Dest.Kind != DestNamed || items[1].Dest.Name != "conclusion" {
		t.Errorf("expected named destination conclusion, got %#v", items[1].Dest)
	}
}

func TestParseOutline_NestedChildren(t *testing.T) {
	objects := map[int]types.Object{
		10: types.Dict{"First": ref(11)},
		11: types.Dict{
			"Title": types.StringLiteral("Chapter 1"),
			"First": ref(20),
		},
		20: types.Dict{
			"Title": types.StringLiteral("Section 1.1"),
			"Next":  ref(21),
		},
		21: types.Dict{
			"Title": types.StringLiteral("Section 1.2"),
		},
	}
	catalog := types.Dict{"Outlines": ref(10)}

	items, err := parseOutline(catalog, fakeDeref(objects))
	if err != nil {
		t.Fatalf("parseOutline: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 root item, got %d", len(items))
	}
	if len(items[0].Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(items[0].Children))
	}
	if items[0].Children[1].Title != "Section 1.2" {
		t.Errorf("unexpected child title %q", items[0].Children[1].Title)
	}
	if !items[0].Children[0].Leaf() {
		t.Error("expected section to be a leaf")
	}
	if items[0].Children[0].Dest.Kind != DestAbsent {
		t.Error("expected absent destination for item without Dest or A")
	}
}

func TestParseOutline_CyclicNextChainTerminates(t *testing.T) {
	objects := map[int]types.Object{
		10: types.Dict{"First": ref(11)},
		11: types.Dict{
			"Title": types.StringLiteral("A"),
			"Next":  ref(12),
		},
		12: types.Dict{
			"Title": types.StringLiteral("B"),
			"Next":  ref(11), // cycle back to A
		},
	}
	catalog := types.Dict{"Outlines": ref(10)}

	items, err := parseOutline(catalog, fakeDeref(objects))
	if err != nil {
		t.Fatalf("parseOutline: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected cycle to terminate after 2 items, got %d", len(items))
	}
}

func TestParseOutline_GoToAction(t *testing.T) {
	objects := map[int]types.Object{
		10: types.Dict{"First": ref(11)},
		11: types.Dict{
			"Title": types.StringLiteral("Jump"),
			"A": types.Dict{
				"S": types.Name("GoTo"),
				"D": types.Array{ref(100)},
			},
		},
	}
	catalog := types.Dict{"Outlines": ref(10)}

	items, err := parseOutline(catalog, fakeDeref(objects))
	if err != nil {
		t.Fatalf("parseOutline: %v", err)
	}
	if items[0].Dest.Kind != DestResolved {
		t.Fatalf("expected resolved destination from GoTo action, got %#v", items[0].Dest)
	}
}

func TestParseOutline_NonGoToActionIgnored(t *testing.T) {
	objects := map[int]types.Object{
		10: types.Dict{"First": ref(11)},
		11: types.Dict{
			"Title": types.StringLiteral("Website"),
			"A": types.Dict{
				"S":   types.Name("URI"),
				"URI": types.StringLiteral("https://example.com"),
			},
		},
	}
	catalog := types.Dict{"Outlines": ref(10)}

	items, err := parseOutline(catalog, fakeDeref(objects))
	if err != nil {
		t.Fatalf("parseOutline: %v", err)
	}
	if items[0].Dest.Kind != DestAbsent {
		t.Errorf("expected absent destination for URI action, got %#v", items[0].Dest)
	}
}

func TestParseOutline_NoOutline(t *testing.T) {
	items, err := parseOutline(types.Dict{}, fakeDeref(nil))
	if err != nil {
		t.Fatalf("parseOutline: %v", err)
	}
	if items != nil {
		t.Errorf("expected nil outline, got %v", items)
	}
}

func TestLookupNamedDest_LegacyDestsDict(t *testing.T) {
	objects := map[int]types.Object{
		30: types.Dict{
			"intro": types.Array{ref(100), types.Name("Fit")},
		},
	}
	catalog := types.Dict{"Dests": ref(30)}

	dest, err := lookupNamedDest(catalog, "intro", fakeDeref(objects))
	if err != nil {
		t.Fatalf("lookupNamedDest: %v", err)
	}
	if dest == nil {
		t.Fatal("expected destination, got nil")
	}
	if r, ok := dest[0].(Ref); !ok || r.Num != 100 {
		t.Errorf("expected ref 100, got %#v", dest[0])
	}
}

func TestLookupNamedDest_NameTreeLeaf(t *testing.T) {
	objects := map[int]types.Object{
		40: types.Dict{"Dests": ref(41)},
		41: types.Dict{
			"Names": types.Array{
				types.StringLiteral("alpha"), types.Array{ref(100)},
				types.StringLiteral("beta"), types.Dict{"D": types.Array{ref(101)}},
			},
		},
	}
	catalog := types.Dict{"Names": ref(40)}
	deref := fakeDeref(objects)

	dest, err := lookupNamedDest(catalog, "beta", deref)
	if err != nil {
		t.Fatalf("lookupNamedDest: %v", err)
	}
	if dest == nil {
		t.Fatal("expected destination, got nil")
	}
	if r, ok := dest[0].(Ref); !ok || r.Num != 101 {
		t.Errorf("expected ref 101 via /D dict, got %#v", dest[0])
	}

	missing, err := lookupNamedDest(catalog, "gamma", deref)
	if err != nil {
		t.Fatalf("lookupNamedDest: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unregistered name, got %v", missing)
	}
}

func TestLookupNamedDest_NameTreeKidsWithLimits(t *testing.T) {
	objects := map[int]types.Object{
		40: types.Dict{"Dests": ref(41)},
		41: types.Dict{"Kids": types.Array{ref(42), ref(43)}},
		42: types.Dict{
			"Limits": types.Array{types.StringLiteral("aardvark"), types.StringLiteral("lemur")},
			"Names": types.Array{
				types.StringLiteral("aardvark"), types.Array{ref(100)},
			},
		},
		43: types.Dict{
			"Limits": types.Array{types.StringLiteral("mole"), types.StringLiteral("zebra")},
			"Names": types.Array{
				types.StringLiteral("zebra"), types.Array{ref(101)},
			},
		},
	}
	catalog := types.Dict{"Names": ref(40)}

	dest, err := lookupNamedDest(catalog, "zebra", fakeDeref(objects))
	if err != nil {
		t.Fatalf("lookupNamedDest: %v", err)
	}
	if dest == nil {
		t.Fatal("expected destination from second kid, got nil")
	}
	if r, ok := dest[0].(Ref); !ok || r.Num != 101 {
		t.Errorf("expected ref 101, got %#v", dest[0])
	}
}

func TestConvertDestArray_PreservesReference(t *testing.T) {
	arr := types.Array{
		types.IndirectRef{ObjectNumber: types.Integer(7), GenerationNumber: types.Integer(2)},
		types.Name("XYZ"),
		types.Integer(0),
	}
	out := convertDestArray(arr)
	r, ok := out[0].(Ref)
	if !ok {
		t.Fatalf("expected Ref first element, got %#v", out[0])
	}
	if r.Key() != "7R2" {
		t.Errorf("expected key 7R2, got %q", r.Key())
	}
}
