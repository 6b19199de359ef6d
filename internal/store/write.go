package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/kledger/internal/block"
)

// ErrDivergent is returned when the journal already holds a different block
// under the same number, or more blocks than the ledger being saved.
var ErrDivergent = errors.New("journal diverges from ledger")

// WriteBlock inserts a block and its formula references in one transaction.
//
// Writing a block whose number is already stored is a no-op when the stored
// digest matches (inserted=false) and fails with ErrDivergent otherwise.
func (s *Store) WriteBlock(ctx context.Context, b block.Block) (inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write block: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	inserted, err = writeBlockTx(ctx, tx, b)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write block: commit: %w", err)
	}
	return inserted, nil
}

func writeBlockTx(ctx context.Context, tx *sql.Tx, b block.Block) (bool, error) {
	row, err := encodeBlockRow(b)
	if err != nil {
		return false, fmt.Errorf("write block: %w", err)
	}

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT digest FROM blocks WHERE number = ?`, row.number).Scan(&existing)
	switch {
	case err == nil:
		if existing != row.digest {
			return false, fmt.Errorf("write block %d: %w: stored %s, got %s", row.number, ErrDivergent, existing, row.digest)
		}
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
	default:
		return false, fmt.Errorf("write block %d: lookup: %w", row.number, err)
	}

	if err := insertBlockTx(ctx, tx, row, b.FormulaIDs); err != nil {
		return false, err
	}
	return true, nil
}

func insertBlockTx(ctx context.Context, tx *sql.Tx, row blockRow, ids []block.FormulaID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO blocks
		(number, digest, prev_hash, merkle_root, author_pub, timestamp, formula_count, signed, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		row.number,
		row.digest,
		row.prevHash,
		row.merkleRoot,
		row.authorPub,
		row.timestamp,
		row.formulaCount,
		row.signed,
		row.record,
	)
	if err != nil {
		return fmt.Errorf("write block %d: %w", row.number, err)
	}

	for pos, id := range ids {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO formula_refs (block_number, position, formula_id)
			VALUES (?, ?, ?)
		`, row.number, pos, id.String())
		if err != nil {
			return fmt.Errorf("write block %d: formula ref %d: %w", row.number, pos, err)
		}
	}
	return nil
}

// replaceGenesisTx stores g as block 0, replacing any previous genesis.
func replaceGenesisTx(ctx context.Context, tx *sql.Tx, g block.Block) error {
	row, err := encodeBlockRow(g)
	if err != nil {
		return fmt.Errorf("replace genesis: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE number = 0`); err != nil {
		return fmt.Errorf("replace genesis: %w", err)
	}
	return insertBlockTx(ctx, tx, row, nil)
}
