// Package harness provides scenario-driven conformance testing for the ledger.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	linkage: lenient            # or strict
//	signatures: if-present      # or off, required
//	clock: { start: 1700000000, step: 1 }
//	keys:
//	  alice: 1                  # deterministic key seed
//	flow:
//	  - op: append
//	    key: alice
//	    ids: [A, B, C]
//	  - op: append
//	    ids: [D]
//	    tamper: merkle_root
//	    expect: VERIFICATION
//	  - op: export_import
//	  - op: reload
//	  - op: audit
//	assertions:
//	  - type: block_count
//	    count: 2
//	  - type: block_signed
//	    block: 1
//
// # Operations
//
//   - append: build a block from ids (signed if key is set), optionally tamper
//     with it, then append
//   - export_import: round-trip through the binary container into a fresh
//     ledger and compare count, references and tip digest
//   - reload: replace the ledger with one replayed from the SQLite journal
//   - audit: re-verify the whole chain
//
// # Assertion Types
//
//   - block_count, total_refs: ledger aggregates
//   - outcome_count: number of steps with a given outcome
//   - block_signed: block carries a valid signature
//   - block_links: block links to its parent's digest
//   - formula_in_block: block commits a labelled formula ID
//
// # Deterministic Testing
//
// The harness uses:
//   - Deterministic timestamps (testutil.StepClock)
//   - Deterministic keys and formula IDs (testutil.PrivateKey, testutil.FormulaID)
//   - In-memory SQLite journal (isolated per run)
//
// Traces record only step, op, outcome, block number, block count and total
// references, serialized as canonical JSON, and are compared against golden
// files under testdata/golden.
package harness
