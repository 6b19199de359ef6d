package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/kledger/internal/ledger"
)

// LoadLedger rebuilds an in-memory ledger from the journal.
//
// The stored genesis is adopted in place of the new ledger's own; every later
// block is appended through the verifier under cfg's policies, so a tampered
// journal fails to load. An empty journal yields a fresh ledger that has not
// been saved yet.
func (s *Store) LoadLedger(ctx context.Context, cfg ledger.Config) (*ledger.Ledger, error) {
	blocks, err := s.ReadAllBlocks(ctx)
	if err != nil {
		return nil, ledger.WrapError(ledger.KindStorage, "load", "read journal", err)
	}

	l, err := ledger.New(cfg)
	if err != nil {
		return nil, err
	}

	rest := blocks
	if len(blocks) > 0 && blocks[0].IsGenesis() {
		if err := l.AdoptGenesis(blocks[0]); err != nil {
			return nil, fmt.Errorf("load genesis: %w", err)
		}
		rest = blocks[1:]
	}

	for _, b := range rest {
		if _, err := l.Append(b); err != nil {
			return nil, fmt.Errorf("load block %d: %w", b.Number, err)
		}
	}

	slog.Debug("ledger loaded from journal",
		"blocks", l.Len(),
	)
	return l, nil
}

// SaveLedger writes every block of l that the journal does not hold yet, in
// one transaction, and returns how many were inserted.
//
// While the journal holds at most a genesis block, l's genesis replaces it.
// This is how an imported ledger's adopted genesis reaches disk. Saving a
// ledger that disagrees with the journal fails with ErrDivergent and writes
// nothing.
func (s *Store) SaveLedger(ctx context.Context, l *ledger.Ledger) (int, error) {
	blocks, err := l.Blocks()
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, ledger.WrapError(ledger.KindStorage, "save", "begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	var stored int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocks`).Scan(&stored); err != nil {
		return 0, ledger.WrapError(ledger.KindStorage, "save", "count blocks", err)
	}
	if stored > len(blocks) {
		return 0, ledger.WrapError(ledger.KindStorage, "save",
			fmt.Sprintf("journal holds %d blocks, ledger %d", stored, len(blocks)), ErrDivergent)
	}

	inserted := 0
	start := 0
	if stored <= 1 {
		if err := replaceGenesisTx(ctx, tx, blocks[0]); err != nil {
			return 0, ledger.WrapError(ledger.KindStorage, "save", "write genesis", err)
		}
		if stored == 0 {
			inserted++
		}
		start = 1
	}

	for _, b := range blocks[start:] {
		ok, err := writeBlockTx(ctx, tx, b)
		if err != nil {
			return 0, ledger.WrapError(ledger.KindStorage, "save", fmt.Sprintf("write block %d", b.Number), err)
		}
		if ok {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, ledger.WrapError(ledger.KindStorage, "save", "commit", err)
	}

	slog.Debug("ledger saved to journal",
		"blocks", len(blocks),
		"inserted", inserted,
	)
	return inserted, nil
}
