package reduce

import (
	"github.com/estuary/flow-sub005/internal/doc"
)

// Set term indices, in sorted property order. This is the order in which
// right-hand terms are reduced, and the order in which their annotations
// are consumed from the tape.
const (
	termAdd = iota
	termIntersect
	termRemove
)

var termNames = [3]string{"add", "intersect", "remove"}

// destructureSet unpacks a set instance into its "add", "intersect", and
// "remove" terms. Both sides must be objects holding only those properties,
// a side may not hold both "intersect" and "remove", and term values must be
// consistently arrays or consistently objects across all terms of both sides.
// A nil side behaves as an empty object.
func destructureSet(loc *doc.Location, lhs, rhs doc.Node) (lt, rt [3]doc.Node, isArray bool, err error) {
	unpack := func(side doc.Node, into *[3]doc.Node, anyArr, anyObj *bool) error {
		if side == nil {
			return nil
		}
		obj, ok := side.(doc.Object)
		if !ok {
			return newErrorWithValues(ErrCodeSetWrongType, loc, lhs, rhs)
		}
		for _, field := range obj {
			var slot int
			switch field.Property {
			case "add":
				slot = termAdd
			case "intersect":
				slot = termIntersect
			case "remove":
				slot = termRemove
			default:
				return newError(ErrCodeSetWrongType, loc.PushProperty(field.Property))
			}
			// Sorted fields guarantee "intersect" is seen before "remove".
			if slot == termRemove && into[termIntersect] != nil {
				return newError(ErrCodeSetWrongType, loc.PushProperty(field.Property))
			}

			switch field.Value.(type) {
			case doc.Array:
				*anyArr = true
			case doc.Object:
				*anyObj = true
			default:
				return newError(ErrCodeSetWrongType, loc.PushProperty(field.Property))
			}
			into[slot] = field.Value
		}
		return nil
	}

	var anyArr, anyObj bool
	if err = unpack(lhs, &lt, &anyArr, &anyObj); err != nil {
		return
	}
	if err = unpack(rhs, &rt, &anyArr, &anyObj); err != nil {
		return
	}
	if anyArr && anyObj {
		// Cannot mix array and object terms.
		err = newError(ErrCodeSetWrongType, loc)
		return
	}
	isArray = !anyObj
	return
}

// Masks for defining merge outcomes and desired outcome filters.
const (
	maskNone  uint8 = 0
	maskLeft  uint8 = 1
	maskRight uint8 = 2
	maskBoth  uint8 = 4
	maskUnion uint8 = 7
)

// setBuilder assists in building a set's constituent terms.
type setBuilder struct {
	tape    *Tape
	loc     *doc.Location
	full    bool
	key     []doc.Pointer
	isArray bool
}

// term builds one output term as (LHS op1 SUB) op2 RHS.
// If !naught, op1 is LHS - SUB ("remove all in SUB").
// If naught, op1 is LHS - SUB' ("remove all *not* in SUB").
// mask determines op2, which may be an intersection, union, or difference.
//
// A present RHS term consumes one annotation for its container, and one per
// node of every right-hand element, whether or not the element is kept.
// Returns nil when neither side holds the term.
func (b *setBuilder) term(lhs, sub doc.Node, naught bool, mask uint8, rhs doc.Node) (doc.Node, error) {
	if rhs != nil {
		b.tape.advance(1) // Consume the rhs term container.
	} else if lhs == nil {
		return nil, nil
	}

	if b.isArray {
		return b.arrayTerm(asArray(lhs), asArray(sub), naught, mask, asArray(rhs))
	}
	return b.objectTerm(asObject(lhs), asObject(sub), naught, mask, asObject(rhs))
}

func (b *setBuilder) arrayTerm(lhs, sub doc.Array, naught bool, mask uint8, rhs doc.Array) (doc.Node, error) {
	cmp := func(l, r doc.Node) int { return doc.CompareAt(b.key, l, r) }

	// Filter lhs to (LHS op1 SUB).
	if sub != nil {
		kept := make(doc.Array, 0, len(lhs))
		forEachJoined(len(lhs), len(sub), func(li, si int) int { return cmp(lhs[li], sub[si]) },
			func(li, si int) {
				if li >= 0 && (si < 0) != naught {
					kept = append(kept, lhs[li])
				}
			})
		lhs = kept
	}

	out := make(doc.Array, 0, len(lhs)+len(rhs))
	var err error
	forEachJoined(len(lhs), len(rhs), func(li, ri int) int { return cmp(lhs[li], rhs[ri]) },
		func(li, ri int) {
			if err != nil {
				return
			}
			switch {
			case ri < 0: // Left.
				if mask&maskLeft != 0 {
					out = append(out, lhs[li])
				}
			case li < 0: // Right.
				b.tape.advance(doc.CountNodes(rhs[ri]))
				if mask&maskRight != 0 {
					out = append(out, rhs[ri])
				}
			case mask&maskBoth != 0: // Both, reduced deeply.
				var item doc.Node
				if item, err = reduceItem(b.tape, b.loc, b.full, lhs[li], rhs[ri], ri); err == nil {
					out = append(out, item)
				}
			default: // Both, discarded. Annotations are still consumed.
				b.tape.advance(doc.CountNodes(rhs[ri]))
			}
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *setBuilder) objectTerm(lhs, sub doc.Object, naught bool, mask uint8, rhs doc.Object) (doc.Node, error) {
	// Filter lhs to (LHS op1 SUB).
	if sub != nil {
		kept := make(doc.Object, 0, len(lhs))
		forEachJoined(len(lhs), len(sub),
			func(li, si int) int { return cmpStrings(lhs[li].Property, sub[si].Property) },
			func(li, si int) {
				if li >= 0 && (si < 0) != naught {
					kept = append(kept, lhs[li])
				}
			})
		lhs = kept
	}

	out := make(doc.Object, 0, len(lhs)+len(rhs))
	var err error
	forEachJoined(len(lhs), len(rhs),
		func(li, ri int) int { return cmpStrings(lhs[li].Property, rhs[ri].Property) },
		func(li, ri int) {
			if err != nil {
				return
			}
			switch {
			case ri < 0: // Left.
				if mask&maskLeft != 0 {
					out = append(out, lhs[li])
				}
			case li < 0: // Right.
				b.tape.advance(doc.CountNodes(rhs[ri].Value))
				if mask&maskRight != 0 {
					out = append(out, rhs[ri])
				}
			case mask&maskBoth != 0: // Both, reduced deeply.
				var field doc.Field
				if field, err = reduceProp(b.tape, b.loc, b.full, &lhs[li], &rhs[ri]); err == nil {
					out = append(out, field)
				}
			default: // Both, discarded. Annotations are still consumed.
				b.tape.advance(doc.CountNodes(rhs[ri].Value))
			}
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applySet(cur cursor, key []doc.Pointer) (doc.Node, error) {
	lt, rt, isArray, err := destructureSet(cur.loc, cur.lhs, cur.rhs)
	if err != nil {
		return nil, err
	}

	cur.tape.advance(1) // Consume the object holding the set.

	bld := setBuilder{
		tape:    cur.tape,
		loc:     cur.loc,
		full:    cur.full,
		key:     key,
		isArray: isArray,
	}

	// A term with mask none is built only to account for its annotations:
	// full reductions prune "intersect" and "remove" tombstones.
	prune := func(mask uint8) uint8 {
		if cur.full {
			return maskNone
		}
		return mask
	}

	var out doc.Object
	emit := func(slot int, term doc.Node) {
		if term != nil && !(cur.full && slot != termAdd) {
			out = append(out, doc.Field{Property: termNames[slot], Value: term})
		}
	}

	switch {
	case lt[termIntersect] != nil && rt[termIntersect] != nil:
		// Reduce "add" as: (LA - RI') U RA.
		add, err := bld.term(lt[termAdd], rt[termIntersect], true, maskUnion, rt[termAdd])
		if err != nil {
			return nil, err
		}
		// Reduce "intersect" as: LI & RI.
		intersect, err := bld.term(lt[termIntersect], nil, false, prune(maskBoth), rt[termIntersect])
		if err != nil {
			return nil, err
		}
		emit(termAdd, add)
		emit(termIntersect, intersect)

	case lt[termIntersect] != nil:
		// Reduce "add" as: (LA - RR) U RA.
		add, err := bld.term(lt[termAdd], rt[termRemove], false, maskUnion, rt[termAdd])
		if err != nil {
			return nil, err
		}
		// Reduce "intersect" as: LI - RR.
		intersect, err := bld.term(lt[termIntersect], nil, false, prune(maskLeft), rt[termRemove])
		if err != nil {
			return nil, err
		}
		emit(termAdd, add)
		emit(termIntersect, intersect)

	case rt[termIntersect] != nil:
		// Reduce "add" as: (LA - RI') U RA.
		add, err := bld.term(lt[termAdd], rt[termIntersect], true, maskUnion, rt[termAdd])
		if err != nil {
			return nil, err
		}
		// Reduce "intersect" as: RI - LR.
		intersect, err := bld.term(lt[termRemove], nil, false, prune(maskRight), rt[termIntersect])
		if err != nil {
			return nil, err
		}
		emit(termAdd, add)
		emit(termIntersect, intersect)

	default:
		// Reduce "add" as: (LA - RR) U RA.
		add, err := bld.term(lt[termAdd], rt[termRemove], false, maskUnion, rt[termAdd])
		if err != nil {
			return nil, err
		}
		// Reduce "remove" as: LR U RR.
		remove, err := bld.term(lt[termRemove], nil, false, prune(maskUnion), rt[termRemove])
		if err != nil {
			return nil, err
		}
		emit(termAdd, add)
		emit(termRemove, remove)
	}

	return out, nil
}

// forEachJoined runs a sorted merge-join over two sequences of the given
// lengths, invoking visit with the joined indexes. A negative index means
// the element exists on only one side.
func forEachJoined(lLen, rLen int, cmp func(li, ri int) int, visit func(li, ri int)) {
	var li, ri int
	for li < lLen || ri < rLen {
		var ord int
		switch {
		case ri == rLen:
			ord = -1
		case li == lLen:
			ord = 1
		default:
			ord = cmp(li, ri)
		}
		switch {
		case ord < 0:
			visit(li, -1)
			li++
		case ord > 0:
			visit(-1, ri)
			ri++
		default:
			visit(li, ri)
			li++
			ri++
		}
	}
}

func asArray(n doc.Node) doc.Array {
	if n == nil {
		return nil
	}
	return n.(doc.Array)
}

func asObject(n doc.Node) doc.Object {
	if n == nil {
		return nil
	}
	return n.(doc.Object)
}

func cmpStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
