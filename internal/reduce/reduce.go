// Package reduce combines two documents into one, guided by per-location
// merge strategies.
//
// The right-hand document arrives with a Tape: one strategy annotation per
// document node, in pre-order. Reduction walks the left and right documents
// together, consuming exactly one annotation for every right-hand node it
// visits or discards. A fully consumed tape is the invariant that proves the
// walk and the annotations agreed about the document's shape.
package reduce

import (
	"github.com/estuary/flow-sub005/internal/doc"
)

// DefaultStrategy applies at locations carrying no annotation.
var DefaultStrategy = &Strategy{Kind: LastWriteWins}

// Tape is the flat pre-order annotation sequence of a right-hand document.
// Entries may be nil, in which case DefaultStrategy applies.
type Tape struct {
	strategies []*Strategy
	pos        int
}

// NewTape returns a Tape over the given pre-order annotations.
func NewTape(strategies []*Strategy) *Tape {
	return &Tape{strategies: strategies}
}

// peek returns the strategy at the tape position without consuming it.
func (t *Tape) peek() *Strategy {
	if t.pos < len(t.strategies) && t.strategies[t.pos] != nil {
		return t.strategies[t.pos]
	}
	return DefaultStrategy
}

// Strategies returns the tape's annotations.
func (t *Tape) Strategies() []*Strategy {
	return t.strategies
}

// advance consumes n annotations.
func (t *Tape) advance(n int) {
	t.pos += n
}

// remaining returns the count of unconsumed annotations.
func (t *Tape) remaining() int {
	return len(t.strategies) - t.pos
}

// Reduce combines a right-hand document into a preceding left-hand document.
// A nil lhs means no left-hand document exists yet; strategies then apply
// their identity behavior (a sum treats the left side as zero, a merge takes
// the right side, and so on).
//
// If full, the left-hand document is the root-most document of the reduction
// sequence. Some strategies prune state in this case (removing set tombstones)
// that must be retained across partial reductions.
//
// The tape must hold exactly one annotation per rhs node, in pre-order.
// On error the reduction is abandoned and lhs remains the reduced value.
func Reduce(lhs, rhs doc.Node, tape *Tape, full bool) (doc.Node, error) {
	out, err := cursor{tape: tape, full: full, lhs: lhs, rhs: rhs}.reduce()
	if err != nil {
		return nil, err
	}
	if n := tape.remaining(); n != 0 {
		return nil, &Error{
			Code:    ErrCodeTapeMisaligned,
			Message: "annotation tape was not fully consumed",
		}
	}
	return out, nil
}

// cursor models a joint document location which is being reduced.
// lhs is nil when the location exists only in the right-hand document.
type cursor struct {
	tape *Tape
	loc  *doc.Location
	full bool
	lhs  doc.Node
	rhs  doc.Node
}

func (c cursor) reduce() (doc.Node, error) {
	return c.tape.peek().apply(c)
}

// takeRHS consumes the annotations of the right-hand value and returns it.
func (c cursor) takeRHS() (doc.Node, error) {
	c.tape.advance(doc.CountNodes(c.rhs))
	return c.rhs, nil
}

// reduceProp reduces one property of a joint object location. Either side
// may be nil when the property exists on only one side. A property present
// only on the left passes through without consuming annotations; one present
// only on the right is taken while consuming its node count.
func reduceProp(tape *Tape, loc *doc.Location, full bool, lhs, rhs *doc.Field) (doc.Field, error) {
	switch {
	case rhs == nil:
		return *lhs, nil
	case lhs == nil:
		tape.advance(doc.CountNodes(rhs.Value))
		return *rhs, nil
	default:
		value, err := cursor{
			tape: tape,
			loc:  loc.PushProperty(rhs.Property),
			full: full,
			lhs:  lhs.Value,
			rhs:  rhs.Value,
		}.reduce()
		if err != nil {
			return doc.Field{}, err
		}
		return doc.Field{Property: rhs.Property, Value: value}, nil
	}
}

// reduceItem reduces one item of a joint array location, following the same
// one-sided rules as reduceProp. index is the right-hand item's position,
// used only for error locations.
func reduceItem(tape *Tape, loc *doc.Location, full bool, lhs, rhs doc.Node, index int) (doc.Node, error) {
	switch {
	case rhs == nil:
		return lhs, nil
	case lhs == nil:
		tape.advance(doc.CountNodes(rhs))
		return rhs, nil
	default:
		return cursor{
			tape: tape,
			loc:  loc.PushItem(index),
			full: full,
			lhs:  lhs,
			rhs:  rhs,
		}.reduce()
	}
}
