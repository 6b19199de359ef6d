package harness

// Outcome recorded for a step that succeeded.
const OutcomeOK = "ok"

// TraceEvent records the ledger state after one scenario step.
// Only deterministic fields are captured so traces can be compared against
// golden files byte for byte.
type TraceEvent struct {
	Step        int    `json:"step"`
	Op          string `json:"op"`
	Outcome     string `json:"outcome"` // "ok" or the ledger error kind
	BlockNumber uint32 `json:"block_number"`
	BlockCount  int    `json:"block_count"`
	TotalRefs   int    `json:"total_refs"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step matched its expect clause and all assertions hold.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
