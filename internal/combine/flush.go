package combine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estuary/flow-sub005/internal/doc"
	"github.com/estuary/flow-sub005/internal/store"
)

// Flush drains the combiner into durable registers.
//
// Each drained group is fully reduced onto the register stored for its key,
// so repeated flushes of a long-running stream keep folding into the same
// rows. A group that was already reduced on the left cannot fold onto a
// stored register and is an error. Returns the post-flush state of every
// touched register.
func (c *Combiner) Flush(ctx context.Context, st *store.Store) ([]Drained, error) {
	drained := c.Drain()

	for i := range drained {
		d := &drained[i]

		reg, err := st.GetRegister(ctx, d.KeyHash)
		if err != nil {
			return nil, err
		}

		var reduced doc.Node
		var revision int64
		switch {
		case reg == nil:
			if d.FullyReduced {
				reduced = d.Document
				break
			}
			reduced, err = c.schema.Reduce(nil, d.Document, true)

		case d.FullyReduced:
			return nil, fmt.Errorf(
				"group %s already has a fully reduced document, cannot fold it onto a stored register", d.KeyJSON)

		default:
			var lhs doc.Node
			lhs, err = doc.ParseJSON([]byte(reg.Document))
			if err != nil {
				return nil, fmt.Errorf("parse stored register %s: %w", d.KeyHash, err)
			}
			revision = reg.Revision
			reduced, err = c.schema.Reduce(lhs, d.Document, true)
		}
		if err != nil {
			return nil, err
		}

		encoded, err := doc.MarshalCanonical(reduced)
		if err != nil {
			return nil, fmt.Errorf("encode register %s: %w", d.KeyHash, err)
		}

		c.seq++
		d.Document = reduced
		d.Revision += revision
		d.FullyReduced = true

		if err := st.PutRegister(ctx, store.Register{
			KeyHash:  d.KeyHash,
			KeyJSON:  d.KeyJSON,
			Document: string(encoded),
			Revision: d.Revision,
			Seq:      c.seq,
		}); err != nil {
			return nil, err
		}
	}

	slog.Info("registers flushed",
		"session", c.session,
		"registers", len(drained),
	)
	return drained, nil
}
