package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/kledger/internal/block"
)

// ErrBlockNotFound is returned when no block with the requested number is stored.
var ErrBlockNotFound = errors.New("block not found")

// Location is one place a formula ID was committed.
type Location struct {
	BlockNumber uint32
	Position    int
	Timestamp   uint64
	BlockDigest string
	Signed      bool
}

// ReadBlock returns the block with number n.
func (s *Store) ReadBlock(ctx context.Context, n uint32) (block.Block, error) {
	var (
		number int64
		digest string
		record []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT number, digest, record FROM blocks WHERE number = ?
	`, n).Scan(&number, &digest, &record)
	if errors.Is(err, sql.ErrNoRows) {
		return block.Block{}, fmt.Errorf("read block %d: %w", n, ErrBlockNotFound)
	}
	if err != nil {
		return block.Block{}, fmt.Errorf("read block %d: %w", n, err)
	}
	return decodeBlockRow(number, digest, record)
}

// ReadAllBlocks returns every stored block in ascending number order.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadAllBlocks(ctx context.Context) ([]block.Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, digest, record FROM blocks ORDER BY number ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	blocks := []block.Block{}
	for rows.Next() {
		var (
			number int64
			digest string
			record []byte
		)
		if err := rows.Scan(&number, &digest, &record); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		b, err := decodeBlockRow(number, digest, record)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}

	return blocks, nil
}

// CountBlocks returns the number of stored blocks.
func (s *Store) CountBlocks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count blocks: %w", err)
	}
	return n, nil
}

// FindFormula returns every place id was committed, ordered by block number
// then position. Returns an empty slice (not nil) if id was never committed.
func (s *Store) FindFormula(ctx context.Context, id block.FormulaID) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.block_number, r.position, b.timestamp, b.digest, b.signed
		FROM formula_refs r
		JOIN blocks b ON b.number = r.block_number
		WHERE r.formula_id = ?
		ORDER BY r.block_number ASC, r.position ASC
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("find formula %s: %w", id, err)
	}
	defer rows.Close()

	locs := []Location{}
	for rows.Next() {
		var (
			loc    Location
			ts     int64
			signed int
		)
		if err := rows.Scan(&loc.BlockNumber, &loc.Position, &ts, &loc.BlockDigest, &signed); err != nil {
			return nil, fmt.Errorf("scan formula ref: %w", err)
		}
		loc.Timestamp = uint64(ts)
		loc.Signed = signed == 1
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formula refs: %w", err)
	}

	return locs, nil
}
