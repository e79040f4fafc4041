package pdfdoc

import "strconv"

// Ref identifies an object in the document's cross-reference graph by
// object number and generation number.
type Ref struct {
	Num int
	Gen int
}

// Key returns the canonical lookup key for the reference: "12R" for
// generation 0, "12R3" otherwise. Page-index lookups are keyed on this
// form, so it must stay stable.
func (r Ref) Key() string {
	if r.Gen != 0 {
		return strconv.Itoa(r.Num) + "R" + strconv.Itoa(r.Gen)
	}
	return strconv.Itoa(r.Num) + "R"
}
