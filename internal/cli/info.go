package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// InfoResult reports ledger aggregates and the effective policies.
type InfoResult struct {
	Database               string `json:"database"`
	BlockCount             int    `json:"block_count"`
	TotalFormulaReferences int    `json:"total_formula_references"`
	TipNumber              uint32 `json:"tip_number"`
	TipDigest              string `json:"tip_digest"`
	Linkage                string `json:"linkage"`
	Signatures             string `json:"signatures"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print ledger aggregates",
		Long: `Print block count, total formula references, the tip digest and the
effective policies.

Examples:
  kledger info --db ./ledger.db
  kledger info --db ./ledger.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runInfo(opts *LedgerOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	s, err := openSession(ctx, opts, cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	info, err := s.ledger.Info()
	if err != nil {
		return wrapLedgerError("failed to read info", err)
	}
	tip, err := s.ledger.Latest()
	if err != nil {
		return wrapLedgerError("failed to read tip", err)
	}
	cfg := s.ledger.Config()

	result := InfoResult{
		Database:               info.StorageHint,
		BlockCount:             info.BlockCount,
		TotalFormulaReferences: info.TotalFormulaReferences,
		TipNumber:              tip.Number,
		TipDigest:              info.TipDigest.String(),
		Linkage:                string(cfg.Linkage),
		Signatures:             string(cfg.Signatures),
	}

	f := formatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		return f.Success(result)
	}
	return f.Table([][]string{
		{"Field", "Value"},
		{"database", result.Database},
		{"blocks", strconv.Itoa(result.BlockCount)},
		{"formula references", strconv.Itoa(result.TotalFormulaReferences)},
		{"tip", strconv.FormatUint(uint64(result.TipNumber), 10)},
		{"tip digest", result.TipDigest},
		{"linkage", result.Linkage},
		{"signatures", result.Signatures},
	})
}
