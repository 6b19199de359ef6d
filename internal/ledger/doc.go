// Package ledger implements the append-only formula integrity ledger.
//
// A Ledger owns an ordered sequence of blocks that starts with a genesis block
// created at initialization. Every later block commits to a batch of formula
// IDs through its merkle root and links to its parent through PrevHash.
//
// Append Flow:
// 1. Build assembles a candidate from the tip, a batch of IDs and an optional key
// 2. Append runs the verifier (count, merkle, linkage, signature policy)
// 3. The candidate must extend the tip; it is then stored as a private copy
// 4. A Receipt carrying the block number, tip digest and receipt ID is returned
//
// A failed Append leaves the ledger unchanged. Audit re-verifies the whole
// chain after the fact.
//
// POLICIES:
//
// LinkagePolicy decides what happens when a candidate's parent is absent.
// Lenient (default) skips the linkage check and logs a warning, which lets a
// partial export be replayed. Strict rejects the candidate.
//
// SignaturePolicy decides append-time signature enforcement: off, if-present
// (default) or required.
//
// The ledger performs no internal synchronization; callers serialize access.
package ledger
