package doc

import "math"

// compareNumbers orders two numeric Nodes. Callers must pass numeric kinds
// only (Uint, Int, or Float).
func compareNumbers(lhs, rhs Node) int {
	switch l := lhs.(type) {
	case Uint:
		switch r := rhs.(type) {
		case Uint:
			return cmpUint(uint64(l), uint64(r))
		case Int:
			// An Int is negative, or at least fits int64; a Uint is never less
			// than any int64 greater than it can represent.
			if uint64(l) > math.MaxInt64 {
				return 1
			}
			return cmpInt(int64(l), int64(r))
		case Float:
			return cmpFloat(float64(l), float64(r))
		}
	case Int:
		switch r := rhs.(type) {
		case Uint:
			if uint64(r) > math.MaxInt64 {
				return -1
			}
			return cmpInt(int64(l), int64(r))
		case Int:
			return cmpInt(int64(l), int64(r))
		case Float:
			return cmpFloat(float64(l), float64(r))
		}
	case Float:
		switch r := rhs.(type) {
		case Uint:
			return cmpFloat(float64(l), float64(r))
		case Int:
			return cmpFloat(float64(l), float64(r))
		case Float:
			return cmpFloat(float64(l), float64(r))
		}
	}
	panic("compareNumbers called with non-numeric node")
}

func cmpUint(l, r uint64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func cmpInt(l, r int64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func cmpFloat(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

// CheckedAdd computes the exact sum of two numeric Nodes, or reports overflow.
// Integer operands stay integral: Uint+Uint remains Uint, mixed signs yield
// Uint when the result is non-negative and Int otherwise. Any Float operand
// yields a Float sum, with overflow reported when the result is not finite.
func CheckedAdd(lhs, rhs Node) (Node, bool) {
	if lf, ok := lhs.(Float); ok {
		return addFloat(float64(lf), toFloat(rhs))
	}
	if rf, ok := rhs.(Float); ok {
		return addFloat(toFloat(lhs), float64(rf))
	}

	switch l := lhs.(type) {
	case Uint:
		switch r := rhs.(type) {
		case Uint:
			sum := uint64(l) + uint64(r)
			if sum < uint64(l) {
				return nil, false
			}
			return Uint(sum), true
		case Int:
			return addUintInt(uint64(l), int64(r))
		}
	case Int:
		switch r := rhs.(type) {
		case Uint:
			return addUintInt(uint64(r), int64(l))
		case Int:
			sum := int64(l) + int64(r)
			// Same-signed operands whose sum flips sign have overflowed.
			if (int64(l) > 0 && int64(r) > 0 && sum < 0) ||
				(int64(l) < 0 && int64(r) < 0 && sum >= 0) {
				return nil, false
			}
			if sum >= 0 {
				return Uint(uint64(sum)), true
			}
			return Int(sum), true
		}
	}
	return nil, false
}

// addUintInt adds a signed value to an unsigned one without losing range.
func addUintInt(u uint64, i int64) (Node, bool) {
	if i >= 0 {
		sum := u + uint64(i)
		if sum < u {
			return nil, false
		}
		return Uint(sum), true
	}

	// magnitude of i, computed without overflowing at math.MinInt64.
	mag := uint64(-(i + 1)) + 1
	if u >= mag {
		return Uint(u - mag), true
	}
	d := mag - u // In (0, 2^63]; -d always fits int64.
	if d == uint64(math.MaxInt64)+1 {
		return Int(math.MinInt64), true
	}
	return Int(-int64(d)), true
}

func addFloat(l, r float64) (Node, bool) {
	sum := l + r
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return nil, false
	}
	return Float(sum), true
}

func toFloat(n Node) float64 {
	switch n := n.(type) {
	case Uint:
		return float64(n)
	case Int:
		return float64(n)
	case Float:
		return float64(n)
	}
	panic("toFloat called with non-numeric node")
}
