package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/estuary/flow-sub005/internal/doc"
)

// Snapshot renders a result as canonical JSON for deterministic comparison:
// one object per drained group, ordered by register key hash.
func Snapshot(result *Result) ([]byte, error) {
	groups := make(doc.Array, 0, len(result.Drained))
	for _, d := range result.Drained {
		groups = append(groups, doc.NewObject(
			doc.Field{Property: "document", Value: d.Document},
			doc.Field{Property: "key", Value: d.Key},
			doc.Field{Property: "revision", Value: doc.Int(d.Revision)},
		))
	}
	return doc.MarshalCanonical(groups)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return nil
}
