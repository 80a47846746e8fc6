package doc

import (
	"strconv"
	"strings"
)

// TokenKind discriminates the parsed forms a pointer token may take.
type TokenKind uint8

const (
	// TokenProperty names an object property. Never an integer literal.
	TokenProperty TokenKind = iota
	// TokenIndex is an integer index of an array. Applied to an object, the
	// decimal form of the index serves as the property name.
	TokenIndex
	// TokenNextIndex is the "-" token, one beyond the current array extent.
	// Applied to an object, the literal property "-" is used.
	TokenNextIndex
)

// Token is one parsed step of a JSON pointer.
type Token struct {
	Kind     TokenKind
	Index    int
	Property string
}

// Pointer is a parsed JSON pointer (RFC 6901). The zero Pointer references
// the document root.
type Pointer []Token

// ParsePointer parses an encoded JSON pointer. The empty string is the
// document root. Escapes ~0 and ~1 decode to "~" and "/".
func ParsePointer(s string) Pointer {
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "/")

	var ptr Pointer
	for _, part := range strings.Split(s, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		ptr = append(ptr, parseToken(part))
	}
	return ptr
}

// parseToken maps a pointer segment onto its Token form. Segments with a
// leading zero or plus keep their property interpretation, so that parsing
// then printing a pointer round-trips.
func parseToken(s string) Token {
	if s == "-" {
		return Token{Kind: TokenNextIndex}
	}
	if strings.HasPrefix(s, "+") || (strings.HasPrefix(s, "0") && len(s) > 1) {
		return Token{Kind: TokenProperty, Property: s}
	}
	if ind, err := strconv.Atoi(s); err == nil && ind >= 0 {
		return Token{Kind: TokenIndex, Index: ind}
	}
	return Token{Kind: TokenProperty, Property: s}
}

// String re-encodes the pointer.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range p {
		b.WriteByte('/')
		switch tok.Kind {
		case TokenIndex:
			b.WriteString(strconv.Itoa(tok.Index))
		case TokenNextIndex:
			b.WriteByte('-')
		default:
			s := strings.ReplaceAll(tok.Property, "~", "~0")
			s = strings.ReplaceAll(s, "/", "~1")
			b.WriteString(s)
		}
	}
	return b.String()
}

// Query returns the value at the pointer location within node, or false if
// the location (or a parent of it) does not exist.
func (p Pointer) Query(node Node) (Node, bool) {
	for _, tok := range p {
		switch cur := node.(type) {
		case Object:
			var property string
			switch tok.Kind {
			case TokenIndex:
				property = strconv.Itoa(tok.Index)
			case TokenNextIndex:
				property = "-"
			default:
				property = tok.Property
			}
			next, ok := cur.Get(property)
			if !ok {
				return nil, false
			}
			node = next
		case Array:
			if tok.Kind != TokenIndex || tok.Index >= len(cur) {
				return nil, false
			}
			node = cur[tok.Index]
		default:
			return nil, false
		}
	}
	return node, true
}

// CompareAt evaluates the deep ordering of lhs and rhs with respect to a
// composite key of Pointers, each relative to the respective document roots.
// A pointer naming a location that does not exist behaves exactly as if the
// location existed with an explicit null value.
func CompareAt(key []Pointer, lhs, rhs Node) int {
	for _, ptr := range key {
		lv, lok := ptr.Query(lhs)
		rv, rok := ptr.Query(rhs)
		if !lok {
			lv = Null{}
		}
		if !rok {
			rv = Null{}
		}
		if c := Compare(lv, rv); c != 0 {
			return c
		}
	}
	return 0
}
