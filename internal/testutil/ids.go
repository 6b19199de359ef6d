package testutil

import (
	"crypto/sha256"

	"github.com/roach88/kledger/internal/block"
)

// FormulaID derives a stable formula ID from a readable label.
//
// Labels of up to 32 bytes are copied verbatim and zero padded, so
// FormulaID("A") shows up as 41000000... in hex dumps. Longer labels are hashed.
func FormulaID(label string) block.FormulaID {
	var id block.FormulaID
	if len(label) <= block.IDSize {
		copy(id[:], label)
		return id
	}
	return block.FormulaID(sha256.Sum256([]byte(label)))
}

// FormulaIDs maps FormulaID over labels, preserving order.
func FormulaIDs(labels ...string) []block.FormulaID {
	ids := make([]block.FormulaID, len(labels))
	for i, l := range labels {
		ids[i] = FormulaID(l)
	}
	return ids
}

// CountingReader is a deterministic io.Reader for key and identifier generation.
//
// It yields seed, seed+1, seed+2, ... wrapping at 255.
type CountingReader struct {
	next byte
}

// NewCountingReader creates a reader whose first byte is seed.
func NewCountingReader(seed byte) *CountingReader {
	return &CountingReader{next: seed}
}

// Read fills p and never fails.
func (r *CountingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

// PrivateKey returns a deterministic signing key seeded from seed.
func PrivateKey(seed byte) block.PrivateKey {
	k, _ := block.NewPrivateKey(NewCountingReader(seed))
	return k
}
