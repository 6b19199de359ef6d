package cli

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/formulaid"
)

// AppendOptions holds flags for the append command.
type AppendOptions struct {
	LedgerOptions
	KeyFile  string
	Unsigned bool
	Generate int

	// Generator overrides the formula ID generator used by --generate (for testing).
	// If nil, defaults to UUIDv7Generator.
	Generator formulaid.Generator
}

// AppendResult reports an accepted block.
type AppendResult struct {
	BlockNumber uint32   `json:"block_number"`
	TipDigest   string   `json:"tip_digest"`
	ReceiptID   string   `json:"receipt_id"`
	Signed      bool     `json:"signed"`
	Author      string   `json:"author,omitempty"`
	FormulaIDs  []string `json:"formula_ids"`
}

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AppendOptions{LedgerOptions: LedgerOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "append [formula-id...]",
		Short: "Append a block of formula IDs",
		Long: `Build a block extending the tip, verify it and append it to the journal.

Formula IDs are 64-character hex strings. --generate mints fresh
time-ordered IDs in addition to any given on the command line. The block is
signed with --key (or the config key_file) unless --unsigned is set.

Exit codes:
  0 - Block appended
  1 - Block rejected by the verifier
  2 - Command error (bad ID, missing journal, etc.)

Examples:
  kledger append --db ./ledger.db 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
  kledger append --db ./ledger.db --generate 3 --key ./author.key`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppend(opts, args, cmd)
		},
	}
	opts.bindFlags(cmd)
	cmd.Flags().StringVarP(&opts.KeyFile, "key", "k", "", "signing key file (defaults to config key_file)")
	cmd.Flags().BoolVar(&opts.Unsigned, "unsigned", false, "append without signing")
	cmd.Flags().IntVarP(&opts.Generate, "generate", "g", 0, "mint N new formula IDs")

	return cmd
}

func runAppend(opts *AppendOptions, args []string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	if opts.Generate < 0 {
		return NewExitError(ExitCommandError, "--generate must be non-negative")
	}
	if opts.Generate > block.MaxFormulasPerBlock-len(args) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("too many formula ids: %d given, %d generated, limit is %d",
				len(args), opts.Generate, block.MaxFormulasPerBlock))
	}

	ids := make([]block.FormulaID, 0, len(args)+opts.Generate)
	for _, arg := range args {
		id, err := block.ParseFormulaID(arg)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid formula id", err)
		}
		ids = append(ids, id)
	}

	if opts.Generate > 0 {
		gen := opts.Generator
		if gen == nil {
			gen = formulaid.UUIDv7Generator{Rand: rand.Reader}
		}
		minted, err := formulaid.GenerateN(gen, opts.Generate)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to generate formula ids", err)
		}
		ids = append(ids, minted...)
	}

	s, err := openSession(ctx, &opts.LedgerOptions, cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	var key *block.PrivateKey
	keyFile := opts.KeyFile
	if keyFile == "" {
		keyFile = s.cfg.KeyFile
	}
	if keyFile != "" && !opts.Unsigned {
		k, err := loadKeyFile(keyFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load signing key", err)
		}
		key = &k
	}

	b, err := s.ledger.Build(key, ids)
	if err != nil {
		return wrapLedgerError("failed to build block", err)
	}
	receipt, err := s.ledger.Append(b)
	if err != nil {
		return wrapLedgerError("block rejected", err)
	}
	if _, err := s.store.WriteBlock(ctx, b); err != nil {
		return WrapExitError(ExitCommandError, "failed to write block", err)
	}

	f := formatter(opts.RootOptions, cmd)
	f.VerboseLog("wrote block %d to %s", receipt.BlockNumber, s.cfg.Database)

	result := AppendResult{
		BlockNumber: receipt.BlockNumber,
		TipDigest:   receipt.TipDigest.String(),
		ReceiptID:   receipt.ID,
		Signed:      b.Signed(),
		FormulaIDs:  make([]string, len(ids)),
	}
	if b.Signed() {
		result.Author = b.AuthorPub.String()
	}
	for i, id := range ids {
		result.FormulaIDs[i] = id.String()
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	signed := "unsigned"
	if result.Signed {
		signed = "signed"
	}
	fmt.Fprintf(f.Writer, "Appended block %d (%d formulas, %s)\n", result.BlockNumber, len(ids), signed)
	fmt.Fprintf(f.Writer, "  digest:  %s\n", result.TipDigest)
	fmt.Fprintf(f.Writer, "  receipt: %s\n", result.ReceiptID)
	for _, id := range result.FormulaIDs {
		fmt.Fprintf(f.Writer, "  %s\n", id)
	}
	return nil
}
