// Package block defines the ledger's Block record and the primitives that bind it:
// the fixed-field digest, the merkle commitment over formula IDs, Ed25519 author
// signatures and the fixed-size binary record layout.
//
// # Digests
//
// All digests are SHA-256 with domain separation:
//
//	SHA256(domain + 0x00 + data)
//
// The block digest covers the record encoding of every fixed field except the
// signature, so the bytes that are hashed are the bytes that are written to disk.
//
// # Record Layout
//
// Every block encodes to exactly RecordSize bytes regardless of its formula count
// (little-endian integers, unused formula slots zero-filled):
//
//	prev_hash      32
//	merkle_root    32
//	author_pub     32
//	timestamp       8
//	block_number    4
//	formula_ids    MaxFormulasPerBlock × 32
//	formula_count   4
//	signature      64
package block
