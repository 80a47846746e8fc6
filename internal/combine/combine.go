package combine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/estuary/flow-sub005/internal/doc"
	"github.com/estuary/flow-sub005/internal/schema"
)

// Combiner accumulates documents sharing a composite key and reduces each
// group to a single document. It is not safe for concurrent use.
type Combiner struct {
	schema  *schema.Schema
	key     Key
	session string
	seq     int64 // logical clock, monotonic across drains
	entries map[string]*entry
}

// entry is the in-memory state of one register group.
type entry struct {
	keyValues    doc.Array
	keyJSON      string
	document     doc.Node
	revision     int64
	fullyReduced bool
}

// New builds a Combiner over a reduction schema and composite key.
// Each combiner gets a time-ordered session UUID for log correlation.
func New(s *schema.Schema, key Key) (*Combiner, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("composite key requires at least one pointer")
	}
	session, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}
	return &Combiner{
		schema:  s,
		key:     key,
		session: session.String(),
		entries: make(map[string]*entry),
	}, nil
}

// Session returns the combiner's session UUID.
func (c *Combiner) Session() string { return c.session }

// Len returns the number of register groups currently held.
func (c *Combiner) Len() int { return len(c.entries) }

// lookup returns the entry for a document's key, creating it if needed.
func (c *Combiner) lookup(d doc.Node) (string, *entry, error) {
	values := c.key.Extract(d)
	hash, keyJSON, err := Fingerprint(values)
	if err != nil {
		return "", nil, err
	}
	e, ok := c.entries[hash]
	if !ok {
		e = &entry{keyValues: values, keyJSON: string(keyJSON)}
		c.entries[hash] = e
	}
	return hash, e, nil
}

// CombineRight folds a partial right-hand document into its register group
// with an associative reduction. The first document of a group is reduced
// with no left-hand side, which initializes strategies like sum and set from
// their identity values.
//
// Reduction errors are returned unwrapped so callers can inspect their code
// and location; the group's prior state is left unchanged on error.
func (c *Combiner) CombineRight(rhs doc.Node) error {
	hash, e, err := c.lookup(rhs)
	if err != nil {
		return err
	}

	// A group that was fully reduced stays fully reduced: further documents
	// fold in with full reductions as well.
	reduced, err := c.schema.Reduce(e.document, rhs, e.fullyReduced)
	if err != nil {
		c.discardIfEmpty(hash, e)
		return err
	}

	c.seq++
	e.document = reduced
	e.revision++

	slog.Debug("document combined",
		"session", c.session,
		"key", e.keyJSON,
		"revision", e.revision,
		"seq", c.seq,
	)
	return nil
}

// ReduceLeft folds a fully reduced left-hand document, such as a previously
// drained register, with the partial right-hand document accumulated for its
// group. The group becomes fully reduced, which prunes bookkeeping state
// such as set tombstones. It is an error if the group was already reduced on
// the left.
func (c *Combiner) ReduceLeft(lhs doc.Node) error {
	hash, e, err := c.lookup(lhs)
	if err != nil {
		return err
	}
	if e.fullyReduced {
		return fmt.Errorf("group %s already has a fully reduced document", e.keyJSON)
	}

	var reduced doc.Node
	if e.document == nil {
		// No accumulated right-hand side yet.
		reduced, err = c.schema.Reduce(nil, lhs, true)
	} else {
		reduced, err = c.schema.Reduce(lhs, e.document, true)
	}
	if err != nil {
		c.discardIfEmpty(hash, e)
		return err
	}

	c.seq++
	e.document = reduced
	e.revision++
	e.fullyReduced = true

	slog.Debug("document reduced on the left",
		"session", c.session,
		"key", e.keyJSON,
		"revision", e.revision,
		"seq", c.seq,
	)
	return nil
}

// discardIfEmpty drops an entry that never successfully held a document, so
// a failed first reduction does not leave an empty group behind.
func (c *Combiner) discardIfEmpty(hash string, e *entry) {
	if e.revision == 0 {
		delete(c.entries, hash)
	}
}

// Drained is one finished register group.
type Drained struct {
	KeyHash      string    // content-addressed register ID
	Key          doc.Array // extracted key values in pointer order
	KeyJSON      string    // canonical JSON encoding of Key
	Document     doc.Node  // reduced document
	Revision     int64     // number of documents folded in
	FullyReduced bool      // whether a left-hand document was folded in
}

// Drain returns all register groups ordered by key hash and resets the
// combiner. The logical clock is not reset, so seq keeps advancing across
// drains.
func (c *Combiner) Drain() []Drained {
	hashes := make([]string, 0, len(c.entries))
	for hash := range c.entries {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	drained := make([]Drained, 0, len(hashes))
	for _, hash := range hashes {
		e := c.entries[hash]
		drained = append(drained, Drained{
			KeyHash:      hash,
			Key:          e.keyValues,
			KeyJSON:      e.keyJSON,
			Document:     e.document,
			Revision:     e.revision,
			FullyReduced: e.fullyReduced,
		})
	}

	c.entries = make(map[string]*entry)

	slog.Info("combiner drained",
		"session", c.session,
		"registers", len(drained),
	)
	return drained
}
