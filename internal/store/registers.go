package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Register is the durable state of one composite key: the canonical key
// values, the running reduction, and bookkeeping counters.
type Register struct {
	KeyHash  string // SHA-256 fingerprint of the canonical key encoding
	KeyJSON  string // canonical JSON array of extracted key values
	Document string // reduced document as JSON
	Revision int64  // number of documents folded into this register
	Seq      int64  // logical clock of the last update
}

// PutRegister inserts or replaces the register for its key hash.
// The caller owns revision and seq; upserts overwrite both so that replaying
// the same inputs converges to the same stored state.
func (s *Store) PutRegister(ctx context.Context, reg Register) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registers (key_hash, key_json, document, revision, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key_hash) DO UPDATE SET
			key_json = excluded.key_json,
			document = excluded.document,
			revision = excluded.revision,
			seq = excluded.seq
	`,
		reg.KeyHash,
		reg.KeyJSON,
		reg.Document,
		reg.Revision,
		reg.Seq,
	)
	if err != nil {
		return fmt.Errorf("put register: %w", err)
	}
	return nil
}

// GetRegister returns the register for a key hash, or nil if none exists.
func (s *Store) GetRegister(ctx context.Context, keyHash string) (*Register, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key_hash, key_json, document, revision, seq
		FROM registers
		WHERE key_hash = ?
	`, keyHash)

	var reg Register
	err := row.Scan(&reg.KeyHash, &reg.KeyJSON, &reg.Document, &reg.Revision, &reg.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get register: %w", err)
	}
	return &reg, nil
}

// ListRegisters returns all registers with deterministic ordering.
// Results are ordered by key_hash so a drain over the same inputs always
// produces the same sequence.
//
// Returns an empty slice (not nil) if no registers exist.
func (s *Store) ListRegisters(ctx context.Context) ([]Register, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key_hash, key_json, document, revision, seq
		FROM registers
		ORDER BY key_hash COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query registers: %w", err)
	}
	defer rows.Close()

	var registers []Register
	for rows.Next() {
		var reg Register
		if err := rows.Scan(&reg.KeyHash, &reg.KeyJSON, &reg.Document, &reg.Revision, &reg.Seq); err != nil {
			return nil, fmt.Errorf("scan register: %w", err)
		}
		registers = append(registers, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registers: %w", err)
	}

	// Return empty slice instead of nil
	if registers == nil {
		registers = []Register{}
	}

	return registers, nil
}

// PurgeRegisters deletes all registers and returns the number removed.
// Used after a drain that consumes the stored state.
func (s *Store) PurgeRegisters(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM registers`)
	if err != nil {
		return 0, fmt.Errorf("purge registers: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge registers: rows affected: %w", err)
	}
	return n, nil
}
