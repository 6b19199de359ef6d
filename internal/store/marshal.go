package store

import (
	"fmt"

	"github.com/roach88/kledger/internal/block"
)

// blockRow is the column form of a block.
type blockRow struct {
	number       uint32
	digest       string
	prevHash     string
	merkleRoot   string
	authorPub    string
	timestamp    int64
	formulaCount int
	signed       int
	record       []byte
}

// encodeBlockRow converts a block to its column form.
// Timestamps are stored as INTEGER (int64); database/sql rejects uint64 values
// with the high bit set.
func encodeBlockRow(b block.Block) (blockRow, error) {
	rec, err := b.MarshalBinary()
	if err != nil {
		return blockRow{}, fmt.Errorf("encode block %d: %w", b.Number, err)
	}

	signed := 0
	if b.Signed() {
		signed = 1
	}

	return blockRow{
		number:       b.Number,
		digest:       b.Digest().String(),
		prevHash:     b.PrevHash.String(),
		merkleRoot:   b.MerkleRoot.String(),
		authorPub:    b.AuthorPub.String(),
		timestamp:    int64(b.Timestamp),
		formulaCount: b.FormulaCount(),
		signed:       signed,
		record:       rec,
	}, nil
}

// decodeBlockRow rebuilds a block from its stored record and checks it
// against the number and digest columns.
func decodeBlockRow(number int64, digest string, record []byte) (block.Block, error) {
	var b block.Block
	if err := b.UnmarshalBinary(record); err != nil {
		return block.Block{}, fmt.Errorf("decode block %d: %w", number, err)
	}
	if int64(b.Number) != number {
		return block.Block{}, fmt.Errorf("decode block %d: record holds block %d", number, b.Number)
	}
	if got := b.Digest().String(); got != digest {
		return block.Block{}, fmt.Errorf("decode block %d: digest column %s does not match record %s", number, digest, got)
	}
	return b, nil
}
