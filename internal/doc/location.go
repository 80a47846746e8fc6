package doc

import (
	"strconv"
	"strings"
)

// Location is an immutable, root-to-node linked path within a document,
// used to annotate errors with the location at which they occurred. A nil
// *Location is the document root. Locations are built down the stack during
// recursive descent and never retained after a call returns.
type Location struct {
	parent   *Location
	property string
	index    int
	isItem   bool
}

// PushProperty returns the location of the named property under l.
func (l *Location) PushProperty(property string) *Location {
	return &Location{parent: l, property: property}
}

// PushItem returns the location of the indexed array item under l.
func (l *Location) PushItem(index int) *Location {
	return &Location{parent: l, index: index, isItem: true}
}

// Pointer renders the location as an encoded JSON pointer string.
func (l *Location) Pointer() string {
	if l == nil {
		return ""
	}
	var steps []string
	for at := l; at != nil; at = at.parent {
		if at.isItem {
			steps = append(steps, strconv.Itoa(at.index))
		} else {
			s := strings.ReplaceAll(at.property, "~", "~0")
			steps = append(steps, strings.ReplaceAll(s, "/", "~1"))
		}
	}
	var b strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(steps[i])
	}
	return b.String()
}
