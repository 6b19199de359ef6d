package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kledger/internal/codec"
	"github.com/roach88/kledger/internal/ledger"
)

// ImportResult reports a replayed container.
type ImportResult struct {
	Path           string `json:"path"`
	Records        uint32 `json:"records"`
	Appended       int    `json:"appended"`
	Skipped        int    `json:"skipped"`
	AdoptedGenesis bool   `json:"adopted_genesis"`
	Saved          int    `json:"saved"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replay a binary container into the journal",
		Long: `Replay every record of a container through the verifier and save the
accepted blocks to the journal.

A missing journal is created. When the journal holds only a genesis block,
the container's genesis replaces it so the imported tip digest matches the
exported one. When a record is rejected, the records accepted before it are
still saved and reported as appended; nothing after it is read.

Exit codes:
  0 - All records accepted
  1 - A record failed verification
  2 - Command error (unreadable or malformed container, etc.)

Examples:
  kledger import --db ./restored.db ./ledger.kch
  kledger import --db ./restored.db ./partial.kch --linkage lenient`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runImport(opts *LedgerOptions, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	s, err := openSession(ctx, opts, cmd, true)
	if err != nil {
		return err
	}
	defer s.close()

	res, importErr := codec.ImportFile(s.ledger, path)

	var saved int
	if importErr == nil || res.Appended > 0 || res.AdoptedGenesis {
		if saved, err = s.save(ctx); err != nil {
			return err
		}
	}

	result := ImportResult{
		Path:           path,
		Records:        res.Records,
		Appended:       res.Appended,
		Skipped:        res.Skipped,
		AdoptedGenesis: res.AdoptedGenesis,
		Saved:          saved,
	}

	f := formatter(opts.RootOptions, cmd)
	if importErr != nil {
		if ledger.IsVerification(importErr) {
			if err := f.Failure(result, CodeVerification, importErr.Error()); err != nil {
				return err
			}
		}
		if opts.Format != "json" && result.Appended > 0 {
			fmt.Fprintf(f.Writer, "Kept %d records accepted before the failure\n", result.Appended)
		}
		return wrapLedgerError("import failed", importErr)
	}

	if opts.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "Imported %d records from %s: %d appended, %d skipped\n",
		result.Records, result.Path, result.Appended, result.Skipped)
	if result.AdoptedGenesis {
		fmt.Fprintln(f.Writer, "  genesis adopted from container")
	}
	return nil
}
