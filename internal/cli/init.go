package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitResult reports a freshly initialized journal.
type InitResult struct {
	Database      string `json:"database"`
	GenesisDigest string `json:"genesis_digest"`
	Timestamp     uint64 `json:"timestamp"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a journal holding a genesis block",
		Long: `Create a new SQLite journal containing only a genesis block.

Fails if the journal already holds blocks.

Examples:
  kledger init --db ./ledger.db
  kledger init --config ./kledger.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runInit(opts *LedgerOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	s, err := openSession(ctx, opts, cmd, true)
	if err != nil {
		return err
	}
	defer s.close()

	n, err := s.store.CountBlocks(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if n > 0 {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("ledger at %s is already initialized (%d blocks)", s.cfg.Database, n))
	}

	if _, err := s.save(ctx); err != nil {
		return err
	}

	genesis, err := s.ledger.Latest()
	if err != nil {
		return wrapLedgerError("failed to read genesis", err)
	}
	result := InitResult{
		Database:      s.cfg.Database,
		GenesisDigest: genesis.Digest().String(),
		Timestamp:     genesis.Timestamp,
	}

	f := formatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "Initialized ledger at %s\n", result.Database)
	fmt.Fprintf(f.Writer, "  genesis: %s\n", result.GenesisDigest)
	return nil
}
