package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/store"
)

// BlockView is the printable form of a block.
type BlockView struct {
	Number     uint32   `json:"number"`
	Timestamp  uint64   `json:"timestamp"`
	Digest     string   `json:"digest"`
	PrevHash   string   `json:"prev_hash"`
	MerkleRoot string   `json:"merkle_root"`
	Signed     bool     `json:"signed"`
	Author     string   `json:"author,omitempty"`
	Signature  string   `json:"signature,omitempty"`
	FormulaIDs []string `json:"formula_ids"`
}

func newBlockView(b block.Block) BlockView {
	v := BlockView{
		Number:     b.Number,
		Timestamp:  b.Timestamp,
		Digest:     b.Digest().String(),
		PrevHash:   b.PrevHash.String(),
		MerkleRoot: b.MerkleRoot.String(),
		Signed:     b.Signed(),
		FormulaIDs: make([]string, len(b.FormulaIDs)),
	}
	if v.Signed {
		v.Author = b.AuthorPub.String()
		v.Signature = b.Signature.String()
	}
	for i, id := range b.FormulaIDs {
		v.FormulaIDs[i] = id.String()
	}
	return v
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [block-number]",
		Short: "Print one block",
		Long: `Print a block's header fields and committed formula IDs.

Without an argument the tip block is shown.

Examples:
  kledger show --db ./ledger.db
  kledger show --db ./ledger.db 0 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args, cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runShow(opts *LedgerOptions, args []string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	var (
		number uint32
		tip    = len(args) == 0
	)
	if !tip {
		n, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid block number", err)
		}
		number = uint32(n)
	}

	s, err := openSession(ctx, opts, cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	f := formatter(opts.RootOptions, cmd)

	var b block.Block
	if tip {
		b, err = s.ledger.Latest()
		if err != nil {
			return wrapLedgerError("failed to read block", err)
		}
		number = b.Number
	} else {
		b, err = s.store.ReadBlock(ctx, number)
		if errors.Is(err, store.ErrBlockNotFound) {
			if opts.Format == "json" {
				if err := f.Error(CodeNotFound, fmt.Sprintf("block %d not found", number), nil); err != nil {
					return err
				}
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("block %d not found", number), err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read block", err)
		}
	}
	f.VerboseLog("block %d: %d formula ids, digest %s", number, len(b.FormulaIDs), b.Digest())

	view := newBlockView(b)
	if opts.Format == "json" {
		return f.Success(view)
	}
	return outputBlockText(f, view)
}

func outputBlockText(f *OutputFormatter, v BlockView) error {
	rows := [][]string{
		{"Field", "Value"},
		{"number", strconv.FormatUint(uint64(v.Number), 10)},
		{"timestamp", strconv.FormatUint(v.Timestamp, 10)},
		{"digest", v.Digest},
		{"prev_hash", v.PrevHash},
		{"merkle_root", v.MerkleRoot},
		{"signed", strconv.FormatBool(v.Signed)},
	}
	if v.Signed {
		rows = append(rows, []string{"author", v.Author})
	}
	if err := f.Table(rows); err != nil {
		return err
	}

	if len(v.FormulaIDs) == 0 {
		fmt.Fprintln(f.Writer, "No formula IDs.")
		return nil
	}
	ids := [][]string{{"#", "Formula ID"}}
	for i, id := range v.FormulaIDs {
		ids = append(ids, []string{strconv.Itoa(i), id})
	}
	return f.Table(ids)
}
