package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/testutil"
)

func writeAll(t *testing.T, s *Store, blocks []block.Block) {
	t.Helper()
	for _, b := range blocks {
		if _, err := s.WriteBlock(context.Background(), b); err != nil {
			t.Fatalf("WriteBlock(%d) failed: %v", b.Number, err)
		}
	}
}

func TestReadBlock_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	blocks := mustBlocks(t, createTestLedger(t, 100, []string{"A", "B"}, nil))
	writeAll(t, s, blocks)

	for _, want := range blocks {
		got, err := s.ReadBlock(context.Background(), want.Number)
		if err != nil {
			t.Fatalf("ReadBlock(%d) failed: %v", want.Number, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ReadBlock(%d) = %+v, want %+v", want.Number, got, want)
		}
	}
}

func TestReadBlock_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadBlock(context.Background(), 7)
	if !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("ReadBlock() error = %v, want ErrBlockNotFound", err)
	}
}

func TestReadBlock_DetectsTamperedRecord(t *testing.T) {
	s := createTestStore(t)
	writeAll(t, s, mustBlocks(t, createTestLedger(t, 100, []string{"A"})))

	// Rewrite the timestamp inside the record; the digest column no longer matches.
	if _, err := s.db.Exec(`UPDATE blocks SET record = CAST(substr(record, 1, 96) || x'FF' || substr(record, 98) AS BLOB) WHERE number = 1`); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	if _, err := s.ReadBlock(context.Background(), 1); err == nil {
		t.Error("expected digest mismatch error for tampered record")
	}
}

func TestReadAllBlocks_Ordered(t *testing.T) {
	s := createTestStore(t)
	blocks := mustBlocks(t, createTestLedger(t, 100, []string{"A"}, []string{"B"}, []string{"C"}))

	// Write out of order.
	writeAll(t, s, []block.Block{blocks[3], blocks[0], blocks[2], blocks[1]})

	got, err := s.ReadAllBlocks(context.Background())
	if err != nil {
		t.Fatalf("ReadAllBlocks() failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("ReadAllBlocks() returned %d blocks, want 4", len(got))
	}
	for i, b := range got {
		if b.Number != uint32(i) {
			t.Errorf("block %d has number %d", i, b.Number)
		}
	}
}

func TestReadAllBlocks_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadAllBlocks(context.Background())
	if err != nil {
		t.Fatalf("ReadAllBlocks() failed: %v", err)
	}
	if got == nil {
		t.Error("ReadAllBlocks() returned nil, want empty slice")
	}
}

func TestFindFormula(t *testing.T) {
	s := createTestStore(t)
	blocks := mustBlocks(t, createTestLedger(t, 100, []string{"A", "B"}, []string{"C", "A"}))
	writeAll(t, s, blocks)

	locs, err := s.FindFormula(context.Background(), testutil.FormulaID("A"))
	if err != nil {
		t.Fatalf("FindFormula() failed: %v", err)
	}

	want := []Location{
		{BlockNumber: 1, Position: 0, Timestamp: blocks[1].Timestamp, BlockDigest: blocks[1].Digest().String(), Signed: true},
		{BlockNumber: 2, Position: 1, Timestamp: blocks[2].Timestamp, BlockDigest: blocks[2].Digest().String(), Signed: false},
	}
	if !reflect.DeepEqual(locs, want) {
		t.Errorf("FindFormula() = %+v, want %+v", locs, want)
	}
}

func TestFindFormula_Unknown(t *testing.T) {
	s := createTestStore(t)
	writeAll(t, s, mustBlocks(t, createTestLedger(t, 100, []string{"A"})))

	locs, err := s.FindFormula(context.Background(), testutil.FormulaID("Z"))
	if err != nil {
		t.Fatalf("FindFormula() failed: %v", err)
	}
	if locs == nil || len(locs) != 0 {
		t.Errorf("FindFormula() = %v, want empty slice", locs)
	}
}
