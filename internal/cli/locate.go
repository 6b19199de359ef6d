package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/formulaid"
)

// LocationView is one block that committed the formula.
type LocationView struct {
	BlockNumber uint32 `json:"block_number"`
	Position    int    `json:"position"`
	Timestamp   uint64 `json:"timestamp"`
	BlockDigest string `json:"block_digest"`
	Signed      bool   `json:"signed"`
}

// LocateResult lists every commitment of a formula ID.
type LocateResult struct {
	FormulaID string         `json:"formula_id"`
	MintedAt  string         `json:"minted_at,omitempty"`
	Locations []LocationView `json:"locations"`
}

// NewLocateCommand creates the locate command.
func NewLocateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "locate <formula-id>",
		Short: "Find the blocks that committed a formula ID",
		Long: `List every block and position at which a formula ID was committed.

IDs minted by append --generate also report their mint time.

Exit codes:
  0 - Formula found
  1 - Formula never committed
  2 - Command error

Examples:
  kledger locate --db ./ledger.db 0190f5a2c4e87c3a9b1d2e3f40516273a4b5c6d7e8f90112233445566778899a`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(opts, args[0], cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runLocate(opts *LedgerOptions, arg string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	id, err := block.ParseFormulaID(arg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid formula id", err)
	}

	s, err := openSession(ctx, opts, cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	locs, err := s.store.FindFormula(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to search journal", err)
	}

	result := LocateResult{
		FormulaID: id.String(),
		Locations: make([]LocationView, len(locs)),
	}
	if ts, ok := formulaid.Timestamp(id); ok {
		result.MintedAt = ts.UTC().Format(time.RFC3339Nano)
	}
	for i, loc := range locs {
		result.Locations[i] = LocationView(loc)
	}

	f := formatter(opts.RootOptions, cmd)
	if len(result.Locations) == 0 {
		msg := fmt.Sprintf("formula %s not found", result.FormulaID)
		if opts.Format == "json" {
			if err := f.Failure(result, CodeNotFound, msg); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(f.Writer, "Formula %s not found.\n", result.FormulaID)
		}
		return NewExitError(ExitFailure, msg)
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	if result.MintedAt != "" {
		fmt.Fprintf(f.Writer, "Formula %s (minted %s)\n", result.FormulaID, result.MintedAt)
	} else {
		fmt.Fprintf(f.Writer, "Formula %s\n", result.FormulaID)
	}
	rows := [][]string{{"Block", "Position", "Timestamp", "Signed", "Digest"}}
	for _, loc := range result.Locations {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(loc.BlockNumber), 10),
			strconv.Itoa(loc.Position),
			strconv.FormatUint(loc.Timestamp, 10),
			strconv.FormatBool(loc.Signed),
			loc.BlockDigest,
		})
	}
	return f.Table(rows)
}
