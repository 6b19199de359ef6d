package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kledger/internal/ledger"
)

// Scenario defines a ledger conformance scenario.
// A scenario drives a fresh ledger through a flow of steps and asserts on
// the resulting trace and final ledger state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Linkage and Signatures select the ledger policies. Empty selects defaults.
	Linkage    string `yaml:"linkage,omitempty"`
	Signatures string `yaml:"signatures,omitempty"`

	// Clock configures deterministic timestamps.
	// If nil, starts at DefaultClockStart and advances by 1.
	Clock *ClockSpec `yaml:"clock,omitempty"`

	// Keys maps author labels to deterministic key seeds.
	Keys map[string]int `yaml:"keys,omitempty"`

	// Flow contains the steps to execute, in order.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final ledger state.
	// Supported types: block_count, total_refs, outcome_count, block_signed,
	// block_links, formula_in_block
	Assertions []Assertion `yaml:"assertions"`
}

// ClockSpec configures testutil.StepClock.
type ClockSpec struct {
	Start uint64 `yaml:"start"`
	Step  uint64 `yaml:"step"`
}

// Step is one operation against the ledger.
type Step struct {
	// Op is one of: append, export_import, reload, audit.
	Op string `yaml:"op"`

	// Key names the signing author for append. Empty appends unsigned.
	Key string `yaml:"key,omitempty"`

	// IDs are formula ID labels for append (see testutil.FormulaID).
	IDs []string `yaml:"ids,omitempty"`

	// Tamper corrupts the built block before append.
	// One of: merkle_root, prev_hash, formula_id, signature, timestamp, number.
	Tamper string `yaml:"tamper,omitempty"`

	// Expect is the expected outcome: "ok" (default) or an error kind
	// such as "VERIFICATION".
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates final ledger state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "block_count": ledger holds exactly Count blocks
	// - "total_refs": total formula references equal Count
	// - "outcome_count": exactly Count trace events have Outcome
	// - "block_signed": Block carries a valid signature
	// - "block_links": Block's PrevHash is the digest of Block-1
	// - "formula_in_block": Block commits formula ID label ID
	Type string `yaml:"type"`

	Count   int    `yaml:"count,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`
	Block   uint32 `yaml:"block,omitempty"`
	ID      string `yaml:"id,omitempty"`
}

// Step operations.
const (
	OpAppend       = "append"
	OpExportImport = "export_import"
	OpReload       = "reload"
	OpAudit        = "audit"
)

// Tamper targets.
const (
	TamperMerkleRoot = "merkle_root"
	TamperPrevHash   = "prev_hash"
	TamperFormulaID  = "formula_id"
	TamperSignature  = "signature"
	TamperTimestamp  = "timestamp"
	TamperNumber     = "number"
)

// Assertion type constants.
const (
	AssertBlockCount     = "block_count"
	AssertTotalRefs      = "total_refs"
	AssertOutcomeCount   = "outcome_count"
	AssertBlockSigned    = "block_signed"
	AssertBlockLinks     = "block_links"
	AssertFormulaInBlock = "formula_in_block"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := ledger.ParseLinkagePolicy(s.Linkage); err != nil {
		return err
	}
	if _, err := ledger.ParseSignaturePolicy(s.Signatures); err != nil {
		return err
	}

	for label, seed := range s.Keys {
		if seed < 0 || seed > 255 {
			return fmt.Errorf("keys.%s: seed must be in 0..255", label)
		}
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, step, s.Keys); err != nil {
			return err
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step Step, keys map[string]int) error {
	switch step.Op {
	case OpAppend:
		if step.Key != "" {
			if _, ok := keys[step.Key]; !ok {
				return fmt.Errorf("flow[%d]: undefined key %q", index, step.Key)
			}
		}
		switch step.Tamper {
		case "", TamperMerkleRoot, TamperPrevHash, TamperSignature, TamperTimestamp, TamperNumber:
		case TamperFormulaID:
			if len(step.IDs) == 0 {
				return fmt.Errorf("flow[%d]: tamper formula_id requires ids", index)
			}
		default:
			return fmt.Errorf("flow[%d]: unknown tamper %q", index, step.Tamper)
		}
	case OpExportImport, OpReload, OpAudit:
		if step.Key != "" || len(step.IDs) > 0 || step.Tamper != "" {
			return fmt.Errorf("flow[%d]: %s takes no key, ids or tamper", index, step.Op)
		}
	case "":
		return fmt.Errorf("flow[%d]: op is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertBlockCount, AssertTotalRefs:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertOutcomeCount:
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for outcome_count", index)
		}
	case AssertBlockSigned, AssertBlockLinks:
	case AssertFormulaInBlock:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for formula_in_block", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
