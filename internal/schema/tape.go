package schema

import (
	"github.com/estuary/flow-sub005/internal/doc"
	"github.com/estuary/flow-sub005/internal/reduce"
)

// ExtractTape walks a document in pre-order against the schema's root Shape,
// producing one strategy annotation per document node. Nodes at unannotated
// locations yield nil entries, to which the engine's default applies.
func (s *Schema) ExtractTape(n doc.Node) *reduce.Tape {
	out := make([]*reduce.Strategy, 0, doc.CountNodes(n))
	walkTape(s.root, n, &out)
	return reduce.NewTape(out)
}

func walkTape(shape *Shape, n doc.Node, out *[]*reduce.Strategy) {
	var strategy *reduce.Strategy
	if shape != nil {
		strategy = shape.Strategy
	}
	*out = append(*out, strategy)

	switch n := n.(type) {
	case doc.Object:
		for _, field := range n {
			walkTape(shape.propertyShape(field.Property), field.Value, out)
		}
	case doc.Array:
		for i, item := range n {
			walkTape(shape.itemShape(i), item, out)
		}
	}
}

// Reduce combines rhs into lhs using annotations extracted for rhs.
// A nil lhs means no prior document exists. See the reduce package for the
// meaning of full.
func (s *Schema) Reduce(lhs, rhs doc.Node, full bool) (doc.Node, error) {
	return reduce.Reduce(lhs, rhs, s.ExtractTape(rhs), full)
}
