package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/ledger"
	"github.com/roach88/kledger/internal/testutil"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s block=%d outcome=%s blocks=%d refs=%d\n",
			ev.Step, ev.Op, ev.BlockNumber, ev.Outcome, ev.BlockCount, ev.TotalRefs)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the final ledger and
// trace. Returns one message per failed assertion.
func EvaluateAssertions(l *ledger.Ledger, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(l, result.Trace, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(l *ledger.Ledger, trace []TraceEvent, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: trace}
	}

	switch a.Type {
	case AssertBlockCount, AssertTotalRefs:
		info, err := l.Info()
		if err != nil {
			return err
		}
		got := info.BlockCount
		if a.Type == AssertTotalRefs {
			got = info.TotalFormulaReferences
		}
		if got != a.Count {
			return fail(fmt.Sprintf("%s = %d", a.Type, a.Count), fmt.Sprintf("%s = %d", a.Type, got))
		}

	case AssertOutcomeCount:
		got := 0
		for _, ev := range trace {
			if ev.Outcome == a.Outcome {
				got++
			}
		}
		if got != a.Count {
			return fail(fmt.Sprintf("%d steps with outcome %s", a.Count, a.Outcome), fmt.Sprintf("%d", got))
		}

	case AssertBlockSigned:
		b, err := lookupBlock(l, a.Block, fail)
		if err != nil {
			return err
		}
		if !b.Signed() {
			return fail(fmt.Sprintf("block %d signed", a.Block), "unsigned")
		}
		if err := block.VerifySignature(b); err != nil {
			return fail(fmt.Sprintf("block %d signature valid", a.Block), err.Error())
		}

	case AssertBlockLinks:
		b, err := lookupBlock(l, a.Block, fail)
		if err != nil {
			return err
		}
		if a.Block == 0 {
			if !b.PrevHash.IsZero() {
				return fail("genesis prev_hash zero", b.PrevHash.String())
			}
			return nil
		}
		parent, err := lookupBlock(l, a.Block-1, fail)
		if err != nil {
			return err
		}
		if parent.Digest() != b.PrevHash {
			return fail(fmt.Sprintf("block %d prev_hash %s", a.Block, parent.Digest()), b.PrevHash.String())
		}

	case AssertFormulaInBlock:
		b, err := lookupBlock(l, a.Block, fail)
		if err != nil {
			return err
		}
		want := testutil.FormulaID(a.ID)
		for _, id := range b.FormulaIDs {
			if id == want {
				return nil
			}
		}
		return fail(fmt.Sprintf("formula %s in block %d", a.ID, a.Block), fmt.Sprintf("%d formulas, none match", b.FormulaCount()))

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func lookupBlock(l *ledger.Ledger, n uint32, fail func(string, string) error) (block.Block, error) {
	b, err := l.GetByNumber(n)
	if ledger.IsNotFound(err) {
		return block.Block{}, fail(fmt.Sprintf("block %d present", n), "not found")
	}
	return b, err
}
