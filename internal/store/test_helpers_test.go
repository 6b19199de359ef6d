package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/ledger"
	"github.com/roach88/kledger/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestLedger creates a ledger with genesis plus one block per batch.
// The first batch is signed.
func createTestLedger(t *testing.T, start uint64, batches ...[]string) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(ledger.Config{Clock: testutil.NewStepClock(start, 1)})
	if err != nil {
		t.Fatalf("ledger.New() failed: %v", err)
	}

	key := testutil.PrivateKey(1)
	for i, labels := range batches {
		var k *block.PrivateKey
		if i == 0 {
			k = &key
		}
		b, err := l.Build(k, testutil.FormulaIDs(labels...))
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		if _, err := l.Append(b); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}
	return l
}

func mustBlocks(t *testing.T, l *ledger.Ledger) []block.Block {
	t.Helper()
	blocks, err := l.Blocks()
	if err != nil {
		t.Fatalf("Blocks() failed: %v", err)
	}
	return blocks
}
