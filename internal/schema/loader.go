package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// LoadFile parses and compiles a schema file, dispatching on its extension:
// .json, .yaml or .yml, and .cue are supported.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".json":
		return Parse(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data)
	default:
		return nil, fmt.Errorf("unsupported schema file extension %q", ext)
	}
}

// ParseYAML parses and compiles a YAML schema document.
func ParseYAML(data []byte) (*Schema, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing schema document: %w", err)
	}
	return compileDocument(raw)
}

// ParseCUE evaluates a CUE schema document and compiles its exported form.
func ParseCUE(data []byte) (*Schema, error) {
	ctx := cuecontext.New()

	value := ctx.CompileBytes(data)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling CUE schema: %w", err)
	}
	if err := value.Validate(); err != nil {
		return nil, fmt.Errorf("validating CUE schema: %w", err)
	}

	exported, err := value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("exporting CUE schema: %w", err)
	}
	return Parse(exported)
}
