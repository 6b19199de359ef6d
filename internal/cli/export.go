package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/codec"
)

// ExportResult reports a written container.
type ExportResult struct {
	Path   string `json:"path"`
	Blocks int    `json:"blocks"`
	Bytes  int    `json:"bytes"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the ledger to a binary container",
		Long: `Write every block, genesis included, to a portable binary container.

The container is an 8-byte header (magic, block count) followed by one
fixed-size record per block.

Examples:
  kledger export --db ./ledger.db ./ledger.kch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runExport(opts *LedgerOptions, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	s, err := openSession(ctx, opts, cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	if err := codec.ExportFile(s.ledger, path); err != nil {
		return WrapExitError(ExitCommandError, "failed to export ledger", err)
	}

	n := s.ledger.Len()
	result := ExportResult{
		Path:   path,
		Blocks: n,
		Bytes:  codec.HeaderSize + n*block.RecordSize,
	}

	f := formatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "Exported %d blocks to %s (%d bytes)\n", result.Blocks, result.Path, result.Bytes)
	return nil
}
