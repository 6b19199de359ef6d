package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// FindingView is one audit finding.
type FindingView struct {
	BlockNumber uint32 `json:"block_number"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
}

// VerifyResult holds the audit outcome.
type VerifyResult struct {
	Blocks   int           `json:"blocks"`
	Intact   bool          `json:"intact"`
	Findings []FindingView `json:"findings"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Audit the whole chain",
		Long: `Re-verify every block in the journal: genesis shape, merkle commitments,
parent links (gaps are reported) and signatures.

Loading the journal already replays each block through the verifier, so a
tampered journal fails before the audit starts.

Exit codes:
  0 - Chain intact
  1 - Verification failed (findings reported)
  2 - Command error (database not found, etc.)

Examples:
  kledger verify --db ./ledger.db
  kledger verify --db ./ledger.db --signatures required --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runVerify(opts *LedgerOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	s, err := openSession(ctx, opts, cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	findings, err := s.ledger.Audit()
	if err != nil {
		return wrapLedgerError("audit failed", err)
	}

	result := VerifyResult{
		Blocks:   s.ledger.Len(),
		Intact:   len(findings) == 0,
		Findings: make([]FindingView, 0, len(findings)),
	}
	for _, fd := range findings {
		result.Findings = append(result.Findings, FindingView{
			BlockNumber: fd.BlockNumber,
			Kind:        string(fd.Err.Kind),
			Message:     fd.Err.Message,
		})
	}

	f := formatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		if !result.Intact {
			msg := fmt.Sprintf("%d finding(s)", len(result.Findings))
			if err := f.Failure(result, CodeVerification, msg); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "verification failed: "+msg)
		}
		return f.Success(result)
	}

	return outputVerifyText(f, result)
}

func outputVerifyText(f *OutputFormatter, result VerifyResult) error {
	w := f.Writer

	if result.Intact {
		fmt.Fprintf(w, "\u2713 Chain intact: %d blocks verified\n", result.Blocks)
		return nil
	}

	rows := [][]string{{"Block", "Kind", "Finding"}}
	for _, fd := range result.Findings {
		rows = append(rows, []string{strconv.FormatUint(uint64(fd.BlockNumber), 10), fd.Kind, fd.Message})
	}
	if err := f.Table(rows); err != nil {
		return err
	}

	fmt.Fprintf(w, "\u2717 Verification failed: %d finding(s) in %d blocks\n", len(result.Findings), result.Blocks)
	// Findings = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("verification failed: %d finding(s)", len(result.Findings)))
}
