package reduce

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/estuary/flow-sub005/internal/doc"
)

// Kind names a reduction strategy.
type Kind string

const (
	// Append adds each item of the RHS array to the end of the LHS array.
	// A null LHS makes the reduction a no-op that remains null.
	Append Kind = "append"

	// FirstWriteWins keeps the LHS value.
	FirstWriteWins Kind = "firstWriteWins"

	// LastWriteWins takes the RHS value.
	LastWriteWins Kind = "lastWriteWins"

	// Maximize keeps the greater of LHS and RHS, ordered by the strategy key
	// when one is given. Values equal on the key are deeply merged.
	Maximize Kind = "maximize"

	// Merge recursively reduces the shared locations of two objects, or of
	// two arrays. Arrays merge by the strategy key when one is given, and
	// item-by-item otherwise. Keyed arrays must arrive pre-sorted and
	// de-duplicated on that key.
	Merge Kind = "merge"

	// Minimize keeps the lesser of LHS and RHS, ordered by the strategy key
	// when one is given. Values equal on the key are deeply merged.
	Minimize Kind = "minimize"

	// Set interprets the location as an update of a set: an object holding
	// only "add", "intersect", and "remove" terms. Additions deeply merge,
	// so a set behaves as an associative map keyed by property (object
	// terms) or by the strategy key (array terms).
	Set Kind = "set"

	// Sum adds the LHS and RHS, which must both be numbers. A missing LHS
	// sums as zero.
	Sum Kind = "sum"
)

// Strategy is the parsed annotation of a document location, directing how
// values at that location combine during reduction.
type Strategy struct {
	Kind Kind

	// Key orders the values of Maximize, Merge, Minimize, and Set.
	// Each pointer is relative to the value at this location.
	Key []doc.Pointer
}

// strategyEnvelope is the strategy's JSON wire form, as written within
// schema annotations: {"strategy": "minimize", "key": ["/foo"]}.
type strategyEnvelope struct {
	Strategy string   `json:"strategy"`
	Key      []string `json:"key"`
}

// keyedKinds are the strategies which accept a "key" property.
var keyedKinds = map[Kind]bool{
	Maximize: true,
	Merge:    true,
	Minimize: true,
	Set:      true,
}

// ParseStrategy parses the JSON annotation form of a Strategy.
// Unknown strategies and unexpected properties are rejected.
func ParseStrategy(raw json.RawMessage) (*Strategy, error) {
	var env strategyEnvelope

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("parsing reduce annotation: %w", err)
	}

	kind := Kind(env.Strategy)
	switch kind {
	case Append, FirstWriteWins, LastWriteWins, Maximize, Merge, Minimize, Set, Sum:
	default:
		return nil, fmt.Errorf("unknown reduction strategy %q", env.Strategy)
	}
	if len(env.Key) != 0 && !keyedKinds[kind] {
		return nil, fmt.Errorf("strategy %q does not accept a key", env.Strategy)
	}

	s := &Strategy{Kind: kind}
	for _, k := range env.Key {
		s.Key = append(s.Key, doc.ParsePointer(k))
	}
	return s, nil
}

// String returns the wire name of the strategy.
func (s *Strategy) String() string { return string(s.Kind) }

func (s *Strategy) apply(cur cursor) (doc.Node, error) {
	switch s.Kind {
	case Append:
		return applyAppend(cur)
	case FirstWriteWins:
		return applyFirstWriteWins(cur)
	case LastWriteWins:
		return cur.takeRHS()
	case Maximize:
		return applyMinMax(cur, s.Key, true)
	case Merge:
		return applyMerge(cur, s.Key)
	case Minimize:
		return applyMinMax(cur, s.Key, false)
	case Set:
		return applySet(cur, s.Key)
	case Sum:
		return applySum(cur)
	default:
		panic(fmt.Sprintf("invalid strategy kind %q", s.Kind))
	}
}

func applyAppend(cur cursor) (doc.Node, error) {
	rhsArr, rhsOK := cur.rhs.(doc.Array)

	switch lhs := cur.lhs.(type) {
	case nil:
		if !rhsOK {
			break
		}
		return cur.takeRHS()

	case doc.Null:
		// Append onto null remains null.
		if !rhsOK {
			break
		}
		cur.tape.advance(doc.CountNodes(cur.rhs))
		return doc.Null{}, nil

	case doc.Array:
		if !rhsOK {
			break
		}
		cur.tape.advance(1) // Consume self.

		out := make(doc.Array, 0, len(lhs)+len(rhsArr))
		out = append(out, lhs...)
		for _, item := range rhsArr {
			cur.tape.advance(doc.CountNodes(item))
			out = append(out, item)
		}
		return out, nil
	}

	return nil, newErrorWithValues(ErrCodeAppendWrongType, cur.loc, cur.lhs, cur.rhs)
}

func applyFirstWriteWins(cur cursor) (doc.Node, error) {
	if cur.lhs == nil {
		return cur.takeRHS()
	}
	cur.tape.advance(doc.CountNodes(cur.rhs))
	return cur.lhs, nil
}

func applyMinMax(cur cursor, key []doc.Pointer, reverse bool) (doc.Node, error) {
	if cur.lhs == nil {
		return cur.takeRHS()
	}

	var ord int
	if len(key) != 0 {
		ord = doc.CompareAt(key, cur.lhs, cur.rhs)
	} else {
		ord = doc.Compare(cur.lhs, cur.rhs)
	}
	if reverse {
		ord = -ord
	}

	switch {
	case ord < 0:
		// Retain the LHS.
		cur.tape.advance(doc.CountNodes(cur.rhs))
		return cur.lhs, nil
	case ord > 0 || len(key) == 0:
		// Take the RHS. Without a key each value is an opaque blob, so
		// equal values also resolve by taking the RHS.
		return cur.takeRHS()
	default:
		// LHS and RHS are equal on the chosen key. Deeply merge them.
		return mergeWithKey(cur, nil)
	}
}

func applySum(cur cursor) (doc.Node, error) {
	// A missing LHS sums as zero.
	lhs := cur.lhs
	if lhs == nil {
		lhs = doc.Uint(0)
	}
	if !doc.IsNumber(lhs) || !doc.IsNumber(cur.rhs) {
		return nil, newErrorWithValues(ErrCodeSumWrongType, cur.loc, cur.lhs, cur.rhs)
	}

	cur.tape.advance(1)

	sum, ok := doc.CheckedAdd(lhs, cur.rhs)
	if !ok {
		return nil, newErrorWithValues(ErrCodeSumNumericOverflow, cur.loc, cur.lhs, cur.rhs)
	}
	return sum, nil
}

func applyMerge(cur cursor, key []doc.Pointer) (doc.Node, error) {
	return mergeWithKey(cur, key)
}

func mergeWithKey(cur cursor, key []doc.Pointer) (doc.Node, error) {
	if cur.lhs == nil {
		return cur.takeRHS()
	}

	switch lhs := cur.lhs.(type) {
	case doc.Object:
		rhs, ok := cur.rhs.(doc.Object)
		if !ok {
			break
		}
		cur.tape.advance(1) // Consume self.
		return mergeObjects(cur.tape, cur.loc, cur.full, lhs, rhs)

	case doc.Array:
		rhs, ok := cur.rhs.(doc.Array)
		if !ok {
			break
		}
		cur.tape.advance(1) // Consume self.
		return mergeArrays(cur.tape, cur.loc, cur.full, lhs, rhs, key)

	case doc.Null:
		// Merge onto null remains null, so that a reduced null sticks.
		switch cur.rhs.(type) {
		case doc.Object, doc.Array:
			cur.tape.advance(doc.CountNodes(cur.rhs))
			return doc.Null{}, nil
		}
	}

	return nil, newErrorWithValues(ErrCodeMergeWrongType, cur.loc, cur.lhs, cur.rhs)
}

// mergeObjects joins sorted fields of both sides, reducing shared properties.
func mergeObjects(tape *Tape, loc *doc.Location, full bool, lhs, rhs doc.Object) (doc.Node, error) {
	out := make(doc.Object, 0, max(len(lhs), len(rhs)))

	var li, ri int
	for li < len(lhs) || ri < len(rhs) {
		var lf, rf *doc.Field
		switch {
		case ri == len(rhs) || (li < len(lhs) && lhs[li].Property < rhs[ri].Property):
			lf, li = &lhs[li], li+1
		case li == len(lhs) || lhs[li].Property > rhs[ri].Property:
			rf, ri = &rhs[ri], ri+1
		default:
			lf, li = &lhs[li], li+1
			rf, ri = &rhs[ri], ri+1
		}

		field, err := reduceProp(tape, loc, full, lf, rf)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

// mergeArrays joins items of both sides: by index when key is empty, and by
// a sorted merge-join on the key extracted from each item otherwise. Keyed
// inputs are trusted to be sorted and de-duplicated on that key.
func mergeArrays(tape *Tape, loc *doc.Location, full bool, lhs, rhs doc.Array, key []doc.Pointer) (doc.Node, error) {
	out := make(doc.Array, 0, max(len(lhs), len(rhs)))

	var li, ri int
	for li < len(lhs) || ri < len(rhs) {
		var ord int
		switch {
		case ri == len(rhs):
			ord = -1
		case li == len(lhs):
			ord = 1
		case len(key) == 0:
			ord = cmpInts(li, ri)
		default:
			ord = doc.CompareAt(key, lhs[li], rhs[ri])
		}

		var ln, rn doc.Node
		index := ri
		switch {
		case ord < 0:
			ln, li = lhs[li], li+1
		case ord > 0:
			rn, ri = rhs[ri], ri+1
		default:
			ln, li = lhs[li], li+1
			rn, ri = rhs[ri], ri+1
		}

		item, err := reduceItem(tape, loc, full, ln, rn, index)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func cmpInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
