package doc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAdd_Integers(t *testing.T) {
	cases := []struct {
		name     string
		lhs, rhs Node
		expect   Node
	}{
		{"uint plus uint", Uint(123), Uint(45), Uint(168)},
		{"zero identity", Uint(0), Uint(42), Uint(42)},
		{"uint plus negative", Uint(168), Int(-70), Uint(98)},
		{"negative plus uint", Int(-70), Uint(168), Uint(98)},
		{"uint below magnitude", Uint(5), Int(-8), Int(-3)},
		{"int plus int", Int(-3), Int(-4), Int(-7)},
		{"negatives cancel to uint", Int(-3), Uint(3), Uint(0)},
		{"min int magnitude", Uint(0), Int(math.MinInt64), Int(math.MinInt64)},
		{"max uint identity", Uint(math.MaxUint64), Uint(0), Uint(math.MaxUint64)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CheckedAdd(tc.lhs, tc.rhs)
			require.True(t, ok)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestCheckedAdd_Floats(t *testing.T) {
	got, ok := CheckedAdd(Uint(98), Float(0.1))
	require.True(t, ok)
	assert.InDelta(t, 98.1, float64(got.(Float)), 1e-9)

	got, ok = CheckedAdd(Float(98.1), Float(-98.1))
	require.True(t, ok)
	assert.Equal(t, Float(0), got)

	// The full f64 range is usable.
	got, ok = CheckedAdd(Float(0), Float(math.MaxFloat64))
	require.True(t, ok)
	assert.Equal(t, Float(math.MaxFloat64), got)

	// Changes too small to represent quietly vanish.
	got, ok = CheckedAdd(Float(math.MaxFloat64), Float(-1))
	require.True(t, ok)
	assert.Equal(t, Float(math.MaxFloat64), got)
}

func TestCheckedAdd_Overflow(t *testing.T) {
	cases := []struct {
		name     string
		lhs, rhs Node
	}{
		{"uint overflow", Uint(168), Uint(math.MaxUint64 - 32)},
		{"uint overflow by one", Uint(math.MaxUint64), Uint(1)},
		{"int underflow", Int(math.MinInt64), Int(-1)},
		{"float overflow", Float(math.MaxFloat64), Float(math.MaxFloat64 / 10)},
		{"float negative overflow", Float(-math.MaxFloat64), Float(-math.MaxFloat64)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := CheckedAdd(tc.lhs, tc.rhs)
			assert.False(t, ok)
		})
	}
}

func TestCheckedAdd_Associativity(t *testing.T) {
	// Sequential integer sums agree regardless of grouping while no
	// intermediate result overflows.
	a, b, c := Uint(100), Int(-30), Uint(7)

	ab, ok := CheckedAdd(a, b)
	require.True(t, ok)
	left, ok := CheckedAdd(ab, c)
	require.True(t, ok)

	bc, ok := CheckedAdd(b, c)
	require.True(t, ok)
	right, ok := CheckedAdd(a, bc)
	require.True(t, ok)

	assert.Equal(t, left, right)
	assert.Equal(t, Uint(77), left)
}
