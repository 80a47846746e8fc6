// Package schema compiles the reduction-relevant subset of JSON Schema into
// Shapes, and extracts per-document annotation tapes from them.
//
// Only structural keywords are interpreted: "properties",
// "additionalProperties", "items" (single or tuple form), "$defs" and
// "definitions" via "$ref", and the "reduce" annotation itself. Validation
// keywords pass through unexamined; documents are trusted to conform.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/estuary/flow-sub005/internal/reduce"
)

// Shape is the compiled form of one schema location. A nil *Shape is a
// valid, unannotated location.
type Shape struct {
	// Strategy is the location's reduce annotation, or nil when unannotated.
	Strategy *reduce.Strategy

	// Properties maps named object properties to their shapes.
	Properties map[string]*Shape

	// AdditionalProperties shapes object properties not named in Properties.
	AdditionalProperties *Shape

	// ItemsTuple shapes array items by index, in the tuple form of "items".
	ItemsTuple []*Shape

	// Items shapes array items beyond ItemsTuple.
	Items *Shape
}

// propertyShape returns the shape of a named object property under s.
func (s *Shape) propertyShape(name string) *Shape {
	if s == nil {
		return nil
	}
	if sh, ok := s.Properties[name]; ok {
		return sh
	}
	return s.AdditionalProperties
}

// itemShape returns the shape of the indexed array item under s.
func (s *Shape) itemShape(index int) *Shape {
	if s == nil {
		return nil
	}
	if index < len(s.ItemsTuple) {
		return s.ItemsTuple[index]
	}
	return s.Items
}

// Schema is a parsed schema document with its compiled root Shape.
type Schema struct {
	raw      any
	root     *Shape
	byRef    map[string]*Shape
	visiting map[string]bool
}

// Parse parses and compiles a JSON schema document.
func Parse(data []byte) (*Schema, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing schema document: %w", err)
	}
	return compileDocument(raw)
}

func compileDocument(raw any) (*Schema, error) {
	s := &Schema{
		raw:      raw,
		byRef:    make(map[string]*Shape),
		visiting: make(map[string]bool),
	}
	root, err := s.compileRef("#")
	if err != nil {
		return nil, err
	}
	s.root = root
	return s, nil
}

// Root returns the schema's compiled root Shape.
func (s *Schema) Root() *Shape { return s.root }

// compileRef compiles the schema at a "#"-anchored reference, memoizing the
// result so that recursive references terminate.
func (s *Schema) compileRef(ref string) (*Shape, error) {
	if shape, ok := s.byRef[ref]; ok {
		return shape, nil
	}
	if s.visiting[ref] {
		return nil, fmt.Errorf("schema reference %q is an infinite $ref chain", ref)
	}

	node, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	// A target that is itself a $ref compiles to its (de-duplicated) target.
	if m, ok := node.(map[string]any); ok {
		if next, ok := m["$ref"]; ok {
			nextRef, ok := next.(string)
			if !ok {
				return nil, fmt.Errorf("schema at %q has a non-string $ref", ref)
			}
			s.visiting[ref] = true
			shape, err := s.compileRef(nextRef)
			delete(s.visiting, ref)
			if err != nil {
				return nil, err
			}
			s.byRef[ref] = shape
			return shape, nil
		}
	}

	// Memoize before filling: the shape may reference itself.
	shape := &Shape{}
	s.byRef[ref] = shape
	if err := s.fillShape(shape, node, ref); err != nil {
		return nil, err
	}
	return shape, nil
}

// compileNode compiles an inline (non-referenced) schema node.
func (s *Schema) compileNode(node any, at string) (*Shape, error) {
	if m, ok := node.(map[string]any); ok {
		if next, ok := m["$ref"]; ok {
			nextRef, ok := next.(string)
			if !ok {
				return nil, fmt.Errorf("schema at %q has a non-string $ref", at)
			}
			return s.compileRef(nextRef)
		}
	}
	shape := &Shape{}
	if err := s.fillShape(shape, node, at); err != nil {
		return nil, err
	}
	return shape, nil
}

func (s *Schema) fillShape(shape *Shape, node any, at string) error {
	switch n := node.(type) {
	case bool:
		return nil // true and false schemas carry no annotations.

	case map[string]any:
		if annotation, ok := n["reduce"]; ok {
			raw, err := json.Marshal(annotation)
			if err != nil {
				return fmt.Errorf("schema at %q: %w", at, err)
			}
			strategy, err := reduce.ParseStrategy(raw)
			if err != nil {
				return fmt.Errorf("schema at %q: %w", at, err)
			}
			shape.Strategy = strategy
		}

		if props, ok := n["properties"]; ok {
			m, ok := props.(map[string]any)
			if !ok {
				return fmt.Errorf("schema at %q: properties must be an object", at)
			}
			shape.Properties = make(map[string]*Shape, len(m))
			for name, sub := range m {
				child, err := s.compileNode(sub, at+"/properties/"+escapeToken(name))
				if err != nil {
					return err
				}
				shape.Properties[name] = child
			}
		}

		if ap, ok := n["additionalProperties"]; ok {
			child, err := s.compileNode(ap, at+"/additionalProperties")
			if err != nil {
				return err
			}
			shape.AdditionalProperties = child
		}

		if items, ok := n["items"]; ok {
			if tuple, ok := items.([]any); ok {
				for i, sub := range tuple {
					child, err := s.compileNode(sub, at+"/items/"+strconv.Itoa(i))
					if err != nil {
						return err
					}
					shape.ItemsTuple = append(shape.ItemsTuple, child)
				}
			} else {
				child, err := s.compileNode(items, at+"/items")
				if err != nil {
					return err
				}
				shape.Items = child
			}
		}
		return nil

	default:
		return fmt.Errorf("schema at %q must be an object or boolean", at)
	}
}

// resolve walks a "#"-anchored JSON pointer through the raw schema document.
func (s *Schema) resolve(ref string) (any, error) {
	ptr, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return nil, fmt.Errorf("schema reference %q is not document-anchored", ref)
	}
	node := s.raw
	if ptr == "" {
		return node, nil
	}
	for _, token := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")

		switch n := node.(type) {
		case map[string]any:
			next, ok := n[token]
			if !ok {
				return nil, fmt.Errorf("schema reference %q does not exist", ref)
			}
			node = next
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(n) {
				return nil, fmt.Errorf("schema reference %q does not exist", ref)
			}
			node = n[i]
		default:
			return nil, fmt.Errorf("schema reference %q does not exist", ref)
		}
	}
	return node, nil
}

func escapeToken(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
