// Package formulaid mints formula IDs for callers that do not bring their own.
//
// An ID is a UUIDv7 (48-bit millisecond timestamp, version and variant bits,
// random tail) followed by 16 more random bytes. IDs minted later sort after
// IDs minted earlier, which keeps ledger dumps readable.
package formulaid

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/kledger/internal/block"
)

// Generator mints formula IDs.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type Generator interface {
	Generate() (block.FormulaID, error)
}

// UUIDv7Generator mints time-sortable formula IDs.
//
// Rand supplies every random byte; nil selects crypto/rand.
//
// Thread-safety: safe for concurrent use if Rand is.
type UUIDv7Generator struct {
	Rand io.Reader
}

// Generate creates a new formula ID.
func (g UUIDv7Generator) Generate() (block.FormulaID, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}

	u, err := uuid.NewV7FromReader(r)
	if err != nil {
		return block.FormulaID{}, fmt.Errorf("generate formula id: %w", err)
	}

	var id block.FormulaID
	copy(id[:16], u[:])
	if _, err := io.ReadFull(r, id[16:]); err != nil {
		return block.FormulaID{}, fmt.Errorf("generate formula id: %w", err)
	}
	return id, nil
}

// GenerateN mints n IDs in order. n may not exceed one block's worth of IDs.
func GenerateN(g Generator, n int) ([]block.FormulaID, error) {
	if n < 0 || n > block.MaxFormulasPerBlock {
		return nil, fmt.Errorf("generate %d ids: count must be between 0 and %d", n, block.MaxFormulasPerBlock)
	}
	ids := make([]block.FormulaID, 0, n)
	for i := 0; i < n; i++ {
		id, err := g.Generate()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Timestamp extracts the mint time of an ID produced by UUIDv7Generator.
// ok is false when the leading 16 bytes are not a UUIDv7.
func Timestamp(id block.FormulaID) (t time.Time, ok bool) {
	var u uuid.UUID
	copy(u[:], id[:16])
	if u.Version() != 7 || u.Variant() != uuid.RFC4122 {
		return time.Time{}, false
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec), true
}

// FixedGenerator returns predetermined formula IDs for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []block.FormulaID
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...block.FormulaID) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID, or an error once all are consumed.
func (g *FixedGenerator) Generate() (block.FormulaID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		return block.FormulaID{}, fmt.Errorf("FixedGenerator: all %d ids exhausted", len(g.ids))
	}
	id := g.ids[g.idx]
	g.idx++
	return id, nil
}
