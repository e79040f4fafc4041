package outline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfchat/internal/pdfdoc"
)

// ItemAt looks up an outline item by its dotted index path, e.g. "0.2.1"
// for the second child of the third child of the first root entry. The
// API layer hands these paths to the UI so items can be referenced over
// the wire without shipping the tree back.
func ItemAt(items []*pdfdoc.OutlineItem, path string) (*pdfdoc.OutlineItem, error) {
	if path == "" {
		return nil, fmt.Errorf("empty outline path")
	}
	var item *pdfdoc.OutlineItem
	level := items
	for _, part := range strings.Split(path, ".") {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("invalid outline path %q", path)
		}
		if i >= len(level) {
			return nil, fmt.Errorf("outline path %q out of range", path)
		}
		item = level[i]
		level = item.Children
	}
	return item, nil
}
