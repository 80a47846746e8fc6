package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/estuary/flow-sub005/internal/doc"
	"github.com/estuary/flow-sub005/internal/reduce"
	"github.com/estuary/flow-sub005/internal/schema"
)

// ReduceOptions holds flags for the reduce command.
type ReduceOptions struct {
	*RootOptions
	Schema string
	Full   bool
}

// NewReduceCommand creates the reduce command.
func NewReduceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReduceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reduce <document>...",
		Short: "Reduce documents pairwise, left to right",
		Long: `Reduce JSON documents pairwise into a single document.

Each document file reduces onto the running result, guided by the reduce
annotations of the schema. The first document initializes the result.

Example:
  flow-reduce reduce --schema catalog.schema.yaml base.json update1.json update2.json
  flow-reduce reduce --schema catalog.schema.cue --full snapshot.json delta.json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to reduction schema (required)")
	_ = cmd.MarkFlagRequired("schema")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "apply full reductions, pruning set tombstones")

	return cmd
}

func runReduce(opts *ReduceOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sch, err := schema.LoadFile(opts.Schema)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load schema", err)
	}

	var lhs doc.Node
	for _, path := range paths {
		rhs, err := readDocument(path, cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read %s", path), err)
		}

		formatter.VerboseLog("reducing %s", path)
		lhs, err = sch.Reduce(lhs, rhs, opts.Full)
		if err != nil {
			return reductionExitError(formatter, err)
		}
	}

	encoded, err := doc.MarshalCanonical(lhs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode result", err)
	}
	if err := formatter.Success(json.RawMessage(encoded)); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	return nil
}

// readDocument parses one JSON document from a file, or from stdin for "-".
func readDocument(path string, stdin io.Reader) (doc.Node, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return doc.ParseJSON(data)
}

// reductionExitError reports a failed reduction and maps it to an exit code.
// Reduction errors also render structurally when the format is JSON.
func reductionExitError(formatter *OutputFormatter, err error) error {
	var re *reduce.Error
	if errors.As(err, &re) {
		if formatter.Format == "json" {
			_ = formatter.Error(string(re.Code), re.Error(), map[string]string{
				"location": re.Pointer,
			})
		}
		return WrapExitError(ExitFailure, "reduction failed", err)
	}
	return WrapExitError(ExitCommandError, "reduction failed", err)
}
