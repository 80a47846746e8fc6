package doc

import "sort"

// Node is a sealed interface representing one value of a document.
// Only Null, Bool, Uint, Int, Float, String, Array, and Object implement it.
//
// Unsigned and signed integers are distinct kinds: a JSON number decodes as
// Uint when it fits uint64, then Int, then Float. The distinction matters for
// exact summation, where overflow must be detected instead of wrapped.
type Node interface {
	node() // Sealed - only these types implement it.
}

// Null represents a JSON null value.
type Null struct{}

func (Null) node() {}

// Bool represents a JSON boolean value.
type Bool bool

func (Bool) node() {}

// Uint represents a non-negative JSON integer.
type Uint uint64

func (Uint) node() {}

// Int represents a negative JSON integer, or one produced by signed
// arithmetic. Non-negative literals decode as Uint.
type Int int64

func (Int) node() {}

// Float represents a JSON number that is not representable as an integer.
type Float float64

func (Float) node() {}

// String represents a JSON string value.
type String string

func (String) node() {}

// Array represents a JSON array of Nodes.
type Array []Node

func (Array) node() {}

// Field is a single property of an Object.
type Field struct {
	Property string
	Value    Node
}

// Object represents a JSON object as fields sorted by property name.
// Properties are unique. Use NewObject to establish the invariant from
// unordered input; code that builds objects through sorted merge-joins may
// append fields directly.
type Object []Field

func (Object) node() {}

// NewObject builds an Object from fields in any order, sorting by property
// name. Duplicate properties keep the last occurrence.
func NewObject(fields ...Field) Object {
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Property < fields[j].Property
	})
	out := fields[:0]
	for _, f := range fields {
		if n := len(out); n > 0 && out[n-1].Property == f.Property {
			out[n-1] = f
		} else {
			out = append(out, f)
		}
	}
	return Object(out)
}

// Get returns the value of the named property, if present.
func (o Object) Get(property string) (Node, bool) {
	i := sort.Search(len(o), func(i int) bool { return o[i].Property >= property })
	if i < len(o) && o[i].Property == property {
		return o[i].Value, true
	}
	return nil, false
}

// Set inserts or replaces the named property, preserving sorted order.
func (o Object) Set(property string, value Node) Object {
	i := sort.Search(len(o), func(i int) bool { return o[i].Property >= property })
	if i < len(o) && o[i].Property == property {
		o[i].Value = value
		return o
	}
	o = append(o, Field{})
	copy(o[i+1:], o[i:])
	o[i] = Field{Property: property, Value: value}
	return o
}

// IsNumber reports whether n is one of the numeric kinds.
func IsNumber(n Node) bool {
	switch n.(type) {
	case Uint, Int, Float:
		return true
	}
	return false
}

// CountNodes returns the structural node count of n: every scalar counts as
// one, and containers count as one plus their children. This is the number of
// pre-order annotation slots the value occupies on a reduction tape.
func CountNodes(n Node) int {
	switch n := n.(type) {
	case Array:
		c := 1
		for _, item := range n {
			c += CountNodes(item)
		}
		return c
	case Object:
		c := 1
		for _, field := range n {
			c += CountNodes(field.Value)
		}
		return c
	default:
		return 1
	}
}
