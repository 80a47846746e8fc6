package harness

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/estuary/flow-sub005/internal/combine"
	"github.com/estuary/flow-sub005/internal/doc"
	"github.com/estuary/flow-sub005/internal/schema"
)

// Scenario defines a combine conformance scenario: a reduction schema, a
// composite key, and a sequence of documents to fold.
type Scenario struct {
	// Name uniquely identifies this scenario, and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Schema is the reduction schema, written inline as YAML.
	Schema map[string]any `yaml:"schema"`

	// Key lists the JSON pointers of the composite key.
	Key []string `yaml:"key"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`
}

// Step folds one document into the combiner.
type Step struct {
	// Doc is the JSON document to fold.
	Doc string `yaml:"doc"`

	// Left folds the document as a fully reduced left-hand side instead of
	// combining it on the right.
	Left bool `yaml:"left,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if scenario.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Result holds the drained register groups of a scenario run.
type Result struct {
	Drained []combine.Drained
}

// Run executes a scenario and drains the combiner.
func Run(scenario *Scenario) (*Result, error) {
	// The inline YAML schema round-trips through JSON into the compiler.
	schemaJSON, err := json.Marshal(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: encode schema: %w", scenario.Name, err)
	}
	sch, err := schema.Parse(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	key, err := combine.ParseKey(scenario.Key)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	combiner, err := combine.New(sch, key)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	for i, step := range scenario.Steps {
		d, err := doc.ParseJSON([]byte(step.Doc))
		if err != nil {
			return nil, fmt.Errorf("scenario %q step %d: %w", scenario.Name, i, err)
		}
		if step.Left {
			err = combiner.ReduceLeft(d)
		} else {
			err = combiner.CombineRight(d)
		}
		if err != nil {
			return nil, fmt.Errorf("scenario %q step %d: %w", scenario.Name, i, err)
		}
	}

	return &Result{Drained: combiner.Drain()}, nil
}
