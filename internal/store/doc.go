// Package store provides SQLite-backed durable storage for reduction registers.
//
// A register holds the running reduction for one composite key: the canonical
// key values, the reduced document, and a revision counter tracking how many
// documents have been folded in.
//
// # Critical Patterns
//
// Content-Addressed Keys
//   - Registers are keyed by a SHA-256 fingerprint of the canonical JSON
//     encoding of the extracted key values (see internal/combine)
//   - RFC 8785 canonicalization makes the fingerprint stable across
//     semantically equal keys
//
// Logical Identity and Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Enables deterministic replay regardless of wall time
//
// Deterministic Query Results
//   - All register scans MUST include: ORDER BY key_hash COLLATE BINARY ASC
//   - Ensures identical drain output across runs
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
