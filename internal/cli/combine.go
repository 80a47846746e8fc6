package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/estuary/flow-sub005/internal/combine"
	"github.com/estuary/flow-sub005/internal/doc"
	"github.com/estuary/flow-sub005/internal/schema"
	"github.com/estuary/flow-sub005/internal/store"
)

// CombineOptions holds flags for the combine command.
type CombineOptions struct {
	*RootOptions
	Schema   string
	Key      []string
	Database string
}

// NewCombineCommand creates the combine command.
func NewCombineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CombineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "combine [<documents.jsonl>...]",
		Short: "Combine documents grouped by a composite key",
		Long: `Combine newline-delimited JSON documents, one group per composite key.

Documents stream from the given files, or from stdin when none are given.
Each group reduces to a single document per the schema's reduce annotations,
emitted in a deterministic order on drain.

With --db, groups fold into durable registers: reductions accumulate across
invocations sharing the database, and each drain applies a full reduction.

Example:
  cat docs.jsonl | flow-reduce combine --schema catalog.schema.yaml --key /id
  flow-reduce combine --schema catalog.schema.cue --key /user --key /region \
      --db ./registers.db docs.jsonl`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCombine(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to reduction schema (required)")
	_ = cmd.MarkFlagRequired("schema")
	cmd.Flags().StringArrayVar(&opts.Key, "key", nil, "composite key JSON pointer, repeatable (required)")
	_ = cmd.MarkFlagRequired("key")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite register database")

	return cmd
}

func runCombine(opts *CombineOptions, paths []string, cmd *cobra.Command) error {
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
	key, err := combine.ParseKey(opts.Key)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid composite key", err)
	}
	combiner, err := combine.New(sch, key)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build combiner", err)
	}

	slog.Info("combining documents", "session", combiner.Session(), "key", opts.Key)

	var docs int64
	stream := func(r io.Reader, name string) error {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			d, err := doc.ParseJSON(line)
			if err != nil {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("%s: invalid document %d", name, docs+1), err)
			}
			if err := combiner.CombineRight(d); err != nil {
				return reductionExitError(formatter, err)
			}
			docs++
		}
		if err := scanner.Err(); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("reading %s", name), err)
		}
		return nil
	}

	if len(paths) == 0 {
		if err := stream(cmd.InOrStdin(), "stdin"); err != nil {
			return err
		}
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to open %s", path), err)
		}
		err = stream(f, path)
		f.Close()
		if err != nil {
			return err
		}
	}

	var drained []combine.Drained
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		drained, err = combiner.Flush(cmd.Context(), st)
		if err != nil {
			return reductionExitError(formatter, err)
		}
	} else {
		drained = combiner.Drain()
	}

	slog.Info("combine finished", "documents", docs, "registers", len(drained))
	return outputDrained(formatter, drained)
}

// drainedEnvelope is the JSON form of one drained register group.
type drainedEnvelope struct {
	Key      json.RawMessage `json:"key"`
	Document json.RawMessage `json:"document"`
	Revision int64           `json:"revision"`
}

// outputDrained writes drained groups: one document per line as text, or a
// single response holding every group as JSON.
func outputDrained(formatter *OutputFormatter, drained []combine.Drained) error {
	if formatter.Format == "json" {
		groups := make([]drainedEnvelope, 0, len(drained))
		for _, d := range drained {
			encoded, err := doc.MarshalCanonical(d.Document)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to encode document", err)
			}
			groups = append(groups, drainedEnvelope{
				Key:      json.RawMessage(d.KeyJSON),
				Document: json.RawMessage(encoded),
				Revision: d.Revision,
			})
		}
		return formatter.Success(groups)
	}

	for _, d := range drained {
		encoded, err := doc.MarshalCanonical(d.Document)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode document", err)
		}
		if err := formatter.Success(json.RawMessage(encoded)); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	}
	return nil
}
