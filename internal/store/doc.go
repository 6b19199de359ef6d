// Package store provides the SQLite-backed journal that persists a ledger
// between CLI invocations.
//
// The journal holds:
//   - Blocks: the fixed-size binary record of every block, plus denormalized
//     columns (digest, prev_hash, merkle_root, timestamp, ...) for lookups
//   - Formula refs: one row per committed formula ID, for provenance lookups
//
// # Patterns
//
// Record is authoritative
//   - Blocks are decoded from the stored record, never from the columns
//   - ReadBlock recomputes the digest and rejects rows whose digest column
//     disagrees with their record
//
// Idempotent writes
//   - Writing a block whose number already exists is a no-op when the digest
//     matches and ErrDivergent otherwise
//
// Verified replay
//   - LoadLedger rebuilds an in-memory ledger by appending every stored block
//     through the verifier, so a tampered journal fails to load
//
// Deterministic ordering
//   - All multi-row queries ORDER BY block number, then position
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
