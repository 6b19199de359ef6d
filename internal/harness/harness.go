package harness

import (
	"bytes"
	"context"
	"fmt"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/codec"
	"github.com/roach88/kledger/internal/ledger"
	"github.com/roach88/kledger/internal/store"
	"github.com/roach88/kledger/internal/testutil"
)

// DefaultClockStart is the first timestamp handed out when a scenario sets no clock.
const DefaultClockStart = 1_700_000_000

// Harness is the scenario execution engine.
// It runs scenarios with deterministic timestamps and keys.
type Harness struct {
	store  *store.Store
	ledger *ledger.Ledger
	cfg    ledger.Config
	keys   map[string]block.PrivateKey
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh ledger and a fresh in-memory journal.
// Every successful step is saved to the journal, so a reload step replays
// exactly what was accepted.
//
// Execution flow:
// 1. Create fresh in-memory journal and ledger
// 2. Execute flow steps, recording one trace event per step
// 3. Check each step's outcome against its expect clause
// 4. Evaluate assertions against the final ledger
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	start, step := uint64(DefaultClockStart), uint64(1)
	if scenario.Clock != nil {
		start, step = scenario.Clock.Start, scenario.Clock.Step
	}

	cfg := ledger.Config{
		StorageHint: scenario.Name,
		Linkage:     ledger.LinkagePolicy(scenario.Linkage),
		Signatures:  ledger.SignaturePolicy(scenario.Signatures),
		Clock:       testutil.NewStepClock(start, step),
	}
	l, err := ledger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	h := &Harness{
		store:  st,
		ledger: l,
		cfg:    cfg,
		keys:   make(map[string]block.PrivateKey, len(scenario.Keys)),
	}
	for label, seed := range scenario.Keys {
		h.keys[label] = testutil.PrivateKey(byte(seed))
	}

	ctx := context.Background()
	if _, err := st.SaveLedger(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to save genesis: %w", err)
	}

	result := NewResult()
	for i, s := range scenario.Flow {
		ev, err := h.executeStep(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i+1, err)
		}
		ev.Step = i + 1
		result.AddTrace(ev)

		expect := s.Expect
		if expect == "" {
			expect = OutcomeOK
		}
		if ev.Outcome != expect {
			result.AddError(fmt.Sprintf("flow step %d (%s): expected outcome %s, got %s",
				i+1, s.Op, expect, ev.Outcome))
		}
	}

	for _, errMsg := range EvaluateAssertions(h.ledger, result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeStep runs one step. Ledger rejections become the event's outcome;
// only harness failures are returned as errors.
func (h *Harness) executeStep(ctx context.Context, s Step) (TraceEvent, error) {
	ev := TraceEvent{Op: s.Op, Outcome: OutcomeOK}

	var stepErr error
	switch s.Op {
	case OpAppend:
		ev.BlockNumber, stepErr = h.append(s)
	case OpExportImport:
		ev.BlockNumber, stepErr = h.exportImport()
	case OpReload:
		stepErr = h.reload(ctx)
	case OpAudit:
		stepErr = h.audit()
	default:
		return ev, fmt.Errorf("unknown op %q", s.Op)
	}

	if stepErr != nil {
		kind := ledger.KindOf(stepErr)
		if kind == "" {
			return ev, stepErr
		}
		ev.Outcome = string(kind)
	} else if s.Op == OpAppend {
		if _, err := h.store.SaveLedger(ctx, h.ledger); err != nil {
			return ev, err
		}
	}

	info, err := h.ledger.Info()
	if err != nil {
		return ev, err
	}
	ev.BlockCount = info.BlockCount
	ev.TotalRefs = info.TotalFormulaReferences
	if s.Op != OpAppend {
		tip, err := h.ledger.Latest()
		if err != nil {
			return ev, err
		}
		ev.BlockNumber = tip.Number
	}
	return ev, nil
}

// append builds, optionally tampers and appends a block. It returns the
// candidate's number whether or not the append succeeded.
func (h *Harness) append(s Step) (uint32, error) {
	var key *block.PrivateKey
	if s.Key != "" {
		k := h.keys[s.Key]
		key = &k
	}

	b, err := h.ledger.Build(key, testutil.FormulaIDs(s.IDs...))
	if err != nil {
		return 0, err
	}
	tamper(&b, s.Tamper)

	if _, err := h.ledger.Append(b); err != nil {
		return b.Number, err
	}
	return b.Number, nil
}

func tamper(b *block.Block, target string) {
	switch target {
	case TamperMerkleRoot:
		b.MerkleRoot[0] ^= 0x01
	case TamperPrevHash:
		b.PrevHash[0] ^= 0x01
	case TamperFormulaID:
		b.FormulaIDs[0][0] ^= 0x01
	case TamperSignature:
		b.Signature[0] ^= 0x01
	case TamperTimestamp:
		b.Timestamp++
	case TamperNumber:
		b.Number += 5
	}
}

// exportImport round-trips the ledger through the binary container into a
// fresh ledger and checks that count, references and tip digest survive.
// It returns the imported tip number.
func (h *Harness) exportImport() (uint32, error) {
	var buf bytes.Buffer
	if err := codec.Export(h.ledger, &buf); err != nil {
		return 0, err
	}

	cfg := h.cfg
	cfg.Clock = testutil.NewStepClock(1, 1)
	restored, err := ledger.New(cfg)
	if err != nil {
		return 0, err
	}
	defer restored.Destroy()

	if _, err := codec.Import(restored, &buf); err != nil {
		return 0, err
	}

	want, err := h.ledger.Info()
	if err != nil {
		return 0, err
	}
	got, err := restored.Info()
	if err != nil {
		return 0, err
	}
	if got.BlockCount != want.BlockCount ||
		got.TotalFormulaReferences != want.TotalFormulaReferences ||
		got.TipDigest != want.TipDigest {
		return 0, ledger.NewError(ledger.KindVerification, "export_import",
			fmt.Sprintf("round trip mismatch: %d/%d/%s vs %d/%d/%s",
				got.BlockCount, got.TotalFormulaReferences, got.TipDigest,
				want.BlockCount, want.TotalFormulaReferences, want.TipDigest))
	}

	tip, err := restored.Latest()
	if err != nil {
		return 0, err
	}
	return tip.Number, nil
}

// reload replaces the ledger with one replayed from the journal.
func (h *Harness) reload(ctx context.Context) error {
	l, err := h.store.LoadLedger(ctx, h.cfg)
	if err != nil {
		return err
	}
	h.ledger.Destroy()
	h.ledger = l
	return nil
}

// audit re-verifies the whole chain; any finding is a verification outcome.
func (h *Harness) audit() error {
	findings, err := h.ledger.Audit()
	if err != nil {
		return err
	}
	if len(findings) > 0 {
		return findings[0].Err
	}
	return nil
}
