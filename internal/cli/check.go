package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/estuary/flow-sub005/internal/schema"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <schema>",
		Short: "Validate a reduction schema",
		Long: `Validate a reduction schema and summarize its annotations.

The schema may be JSON, YAML, or CUE, chosen by file extension. Reports the
number of annotated locations per strategy.

Example:
  flow-reduce check catalog.schema.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

// CheckResult summarizes a validated schema.
type CheckResult struct {
	Valid      bool           `json:"valid"`
	Strategies map[string]int `json:"strategies,omitempty"`
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sch, err := schema.LoadFile(path)
	if err != nil {
		if formatter.Format == "json" {
			_ = formatter.Error("INVALID_SCHEMA", err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "schema is invalid", err)
	}

	result := CheckResult{
		Valid:      true,
		Strategies: countStrategies(sch.Root()),
	}

	if formatter.Format == "json" {
		encoded, err := json.Marshal(result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode result", err)
		}
		return formatter.Success(json.RawMessage(encoded))
	}

	kinds := make([]string, 0, len(result.Strategies))
	for kind := range result.Strategies {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: ok", path)
	for _, kind := range kinds {
		fmt.Fprintf(&sb, "\n  %s: %d", kind, result.Strategies[kind])
	}
	return formatter.Success(sb.String())
}

// countStrategies tallies annotated locations per strategy kind.
// Shapes are visited once, so recursive references terminate.
func countStrategies(root *schema.Shape) map[string]int {
	counts := make(map[string]int)
	visited := make(map[*schema.Shape]bool)

	var walk func(s *schema.Shape)
	walk = func(s *schema.Shape) {
		if s == nil || visited[s] {
			return
		}
		visited[s] = true

		if s.Strategy != nil {
			counts[s.Strategy.String()]++
		}
		for _, child := range s.Properties {
			walk(child)
		}
		walk(s.AdditionalProperties)
		for _, child := range s.ItemsTuple {
			walk(child)
		}
		walk(s.Items)
	}
	walk(root)

	return counts
}
