// Package canon provides RFC 8785 canonical JSON and domain-separated hashing
// for identifiers derived from ledger state (append receipts) and for
// byte-stable trace snapshots.
package canon
