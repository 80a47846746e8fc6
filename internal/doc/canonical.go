package doc

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON, used for
// content-addressed fingerprints of reduced documents.
//
// Key differences from MarshalJSON:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//
// One deviation from RFC 8785: floats serialize with Go's shortest
// round-trip formatting rather than the ECMAScript algorithm. Fingerprints
// only require that equal documents serialize identically, which holds.
func MarshalCanonical(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendCanonical(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendCanonical(buf *bytes.Buffer, n Node) error {
	switch n := n.(type) {
	case Null:
		buf.WriteString("null")
	case Bool:
		if n {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Uint:
		buf.WriteString(strconv.FormatUint(uint64(n), 10))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(n), 10))
	case Float:
		f := float64(n)
		if f == float64(int64(f)) && f > -1e15 && f < 1e15 {
			// Integral floats render without exponent or fraction.
			buf.WriteString(strconv.FormatInt(int64(f), 10))
		} else {
			buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		}
	case String:
		appendCanonicalString(buf, string(n))
	case Array:
		buf.WriteByte('[')
		for i, item := range n {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		// Fields are stored in UTF-8 byte order; canonical form requires
		// UTF-16 code unit order, which differs for some astral characters.
		fields := append([]Field(nil), n...)
		sortFieldsUTF16(fields)

		buf.WriteByte('{')
		for i, field := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendCanonicalString(buf, field.Property)
			buf.WriteByte(':')
			if err := appendCanonical(buf, field.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported node of type %T", n)
	}
	return nil
}

// appendCanonicalString writes an NFC-normalized string, escaping only the
// quote, backslash, and control characters. HTML characters and U+2028 /
// U+2029 pass through literally, as RFC 8785 requires.
func appendCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// sortFieldsUTF16 sorts fields by UTF-16 code unit order of their property
// names. UTF-8 byte order agrees with UTF-16 order except when astral-plane
// characters (surrogate pairs) are involved, so the conversion is done only
// when a property leaves the ASCII range.
func sortFieldsUTF16(fields []Field) {
	ascii := true
	for _, f := range fields {
		for i := 0; i < len(f.Property); i++ {
			if f.Property[i] >= utf8.RuneSelf {
				ascii = false
				break
			}
		}
	}
	if ascii {
		return // Already sorted bytewise, which equals UTF-16 order for ASCII.
	}

	keys := make(map[string][]uint16, len(fields))
	for _, f := range fields {
		keys[f.Property] = utf16.Encode([]rune(f.Property))
	}
	// Insertion sort: field sets are small and nearly sorted already.
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && compareUTF16(keys[fields[j-1].Property], keys[fields[j].Property]) > 0; j-- {
			fields[j-1], fields[j] = fields[j], fields[j-1]
		}
	}
}

func compareUTF16(a, b []uint16) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}
