package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/kledger/internal/block"
)

func TestWriteBlock_InsertsBlockAndRefs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	blocks := mustBlocks(t, createTestLedger(t, 100, []string{"A", "B", "C"}))

	for _, b := range blocks {
		inserted, err := s.WriteBlock(ctx, b)
		if err != nil {
			t.Fatalf("WriteBlock(%d) failed: %v", b.Number, err)
		}
		if !inserted {
			t.Errorf("WriteBlock(%d) inserted = false, want true", b.Number)
		}
	}

	var refs int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM formula_refs").Scan(&refs); err != nil {
		t.Fatalf("count refs: %v", err)
	}
	if refs != 3 {
		t.Errorf("formula_refs count = %d, want 3", refs)
	}

	var signed int
	if err := s.db.QueryRow("SELECT signed FROM blocks WHERE number = 1").Scan(&signed); err != nil {
		t.Fatalf("query signed: %v", err)
	}
	if signed != 1 {
		t.Errorf("signed = %d, want 1", signed)
	}
}

func TestWriteBlock_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	b := mustBlocks(t, createTestLedger(t, 100, []string{"A"}))[1]

	if _, err := s.WriteBlock(ctx, b); err != nil {
		t.Fatalf("first WriteBlock() failed: %v", err)
	}
	inserted, err := s.WriteBlock(ctx, b)
	if err != nil {
		t.Fatalf("second WriteBlock() failed: %v", err)
	}
	if inserted {
		t.Error("second WriteBlock() inserted = true, want false")
	}

	n, err := s.CountBlocks(ctx)
	if err != nil {
		t.Fatalf("CountBlocks() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountBlocks() = %d, want 1", n)
	}
}

func TestWriteBlock_DivergentNumber(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := mustBlocks(t, createTestLedger(t, 100, []string{"A"}))[1]
	b := mustBlocks(t, createTestLedger(t, 100, []string{"B"}))[1]

	if _, err := s.WriteBlock(ctx, a); err != nil {
		t.Fatalf("WriteBlock() failed: %v", err)
	}
	_, err := s.WriteBlock(ctx, b)
	if !errors.Is(err, ErrDivergent) {
		t.Fatalf("WriteBlock() error = %v, want ErrDivergent", err)
	}
}

func TestWriteBlock_OversizedBatchRejected(t *testing.T) {
	s := createTestStore(t)
	b := block.Block{Number: 1, FormulaIDs: make([]block.FormulaID, block.MaxFormulasPerBlock+1)}

	if _, err := s.WriteBlock(context.Background(), b); err == nil {
		t.Error("expected error for oversized block")
	}
}
