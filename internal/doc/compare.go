package doc

// Compare evaluates the deep ordering of lhs and rhs. It establishes an
// arbitrary but total ordering over all document values, so that any two
// documents can be merge-joined. Arrays and objects compare lexicographically
// by walking their ordered items or sorted properties.
//
// When kinds differ the ordering is:
// Null < Bool < Number < String < Array < Object.
// The three numeric kinds compare numerically against one another.
func Compare(lhs, rhs Node) int {
	lr, rr := kindRank(lhs), kindRank(rhs)
	if lr != rr {
		return cmpInt(int64(lr), int64(rr))
	}

	switch l := lhs.(type) {
	case Null:
		return 0
	case Bool:
		r := rhs.(Bool)
		switch {
		case !bool(l) && bool(r):
			return -1
		case bool(l) && !bool(r):
			return 1
		}
		return 0
	case Uint, Int, Float:
		return compareNumbers(lhs, rhs)
	case String:
		r := rhs.(String)
		switch {
		case l < r:
			return -1
		case l > r:
			return 1
		}
		return 0
	case Array:
		r := rhs.(Array)
		for i := 0; i < len(l) && i < len(r); i++ {
			if c := Compare(l[i], r[i]); c != 0 {
				return c
			}
		}
		return cmpInt(int64(len(l)), int64(len(r)))
	case Object:
		r := rhs.(Object)
		for i := 0; i < len(l) && i < len(r); i++ {
			lf, rf := l[i], r[i]
			switch {
			case lf.Property < rf.Property:
				return -1
			case lf.Property > rf.Property:
				return 1
			}
			if c := Compare(lf.Value, rf.Value); c != 0 {
				return c
			}
		}
		return cmpInt(int64(len(l)), int64(len(r)))
	}
	panic("unreachable node kind")
}

// kindRank assigns the cross-kind ordering rank. The three numeric kinds
// share a rank and are compared numerically.
func kindRank(n Node) int {
	switch n.(type) {
	case Null:
		return 0
	case Bool:
		return 1
	case Uint, Int, Float:
		return 2
	case String:
		return 3
	case Array:
		return 4
	case Object:
		return 5
	}
	panic("unreachable node kind")
}
