package doc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseJSON decodes a single JSON document into a Node.
// Numbers decode as Uint when non-negative and integral, then Int, then
// Float. Object properties are sorted; duplicates keep the last occurrence.
func ParseJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing content after document")
	}
	return FromInterface(raw)
}

// FromInterface converts a decoded encoding/json value into a Node.
// Numbers must be json.Number or one of Go's native numeric decodings.
func FromInterface(raw any) (Node, error) {
	switch v := raw.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(v), nil
	case json.Number:
		return parseNumber(v.String())
	case float64:
		// Reached when the caller decoded without UseNumber.
		if v == float64(uint64(v)) && v >= 0 {
			return Uint(uint64(v)), nil
		} else if v == float64(int64(v)) {
			return Int(int64(v)), nil
		}
		return Float(v), nil
	case int:
		if v >= 0 {
			return Uint(uint64(v)), nil
		}
		return Int(int64(v)), nil
	case int64:
		if v >= 0 {
			return Uint(uint64(v)), nil
		}
		return Int(v), nil
	case uint64:
		return Uint(v), nil
	case string:
		return String(v), nil
	case []any:
		arr := make(Array, 0, len(v))
		for i, item := range v {
			n, err := FromInterface(item)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr = append(arr, n)
		}
		return arr, nil
	case map[string]any:
		fields := make([]Field, 0, len(v))
		for property, item := range v {
			n, err := FromInterface(item)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", property, err)
			}
			fields = append(fields, Field{Property: property, Value: n})
		}
		return NewObject(fields...), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", raw)
	}
}

// parseNumber maps a JSON number literal onto Uint, Int, or Float.
func parseNumber(s string) (Node, error) {
	if !strings.ContainsAny(s, ".eE") {
		if !strings.HasPrefix(s, "-") {
			if u, err := strconv.ParseUint(s, 10, 64); err == nil {
				return Uint(u), nil
			}
		} else if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Float(f), nil
}

// MarshalJSON serializes a Node as compact JSON, fields in their stored
// (sorted) order. This is the plain serialization: use MarshalCanonical for
// content fingerprints.
func MarshalJSON(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, n Node) error {
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
		return appendJSONFloat(buf, float64(n))
	case String:
		b, err := json.Marshal(string(n))
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, item := range n {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, field := range n {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(field.Property)
			if err != nil {
				return err
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := appendJSON(buf, field.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported node of type %T", n)
	}
	return nil
}

// appendJSONFloat writes a float using the shortest round-trip decimal form.
// Non-finite values are not representable in JSON.
func appendJSONFloat(buf *bytes.Buffer, f float64) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling float: %w", err)
	}
	buf.Write(b)
	return nil
}
