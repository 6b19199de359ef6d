package ledger

import (
	"fmt"
	"log/slog"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/canon"
)

// Config configures a Ledger. The zero value is valid.
type Config struct {
	// StorageHint is an opaque location label recorded and reported by Info.
	StorageHint string

	// Linkage selects missing-parent handling. Default: LinkageLenient.
	Linkage LinkagePolicy

	// Signatures selects append-time signature enforcement. Default: SignaturesIfPresent.
	Signatures SignaturePolicy

	// Clock stamps genesis and built blocks. Default: SystemClock.
	Clock Clock
}

// Info is the aggregate view of a ledger.
type Info struct {
	BlockCount             int
	TotalFormulaReferences int
	TipDigest              block.Hash
	StorageHint            string
}

// Receipt is returned to the formula store on a successful append.
type Receipt struct {
	BlockNumber uint32
	TipDigest   block.Hash
	ID          string
}

// Ledger is the ordered, add-only collection of blocks.
//
// Thread-safety: a Ledger performs no internal synchronization. Callers must
// serialize access to a handle (single writer).
//
// INVARIANTS:
//   - blocks is ordered by strictly increasing block number
//   - blocks[0] is always a genesis block
//   - index maps every stored block number to its position in blocks
//   - totalRefs equals the sum of formula counts across blocks
type Ledger struct {
	cfg       Config
	blocks    []block.Block
	index     map[uint32]int
	totalRefs int
	destroyed bool
}

// New creates a ledger containing exactly the genesis block.
func New(cfg Config) (*Ledger, error) {
	linkage, err := ParseLinkagePolicy(string(cfg.Linkage))
	if err != nil {
		return nil, err
	}
	sigs, err := ParseSignaturePolicy(string(cfg.Signatures))
	if err != nil {
		return nil, err
	}
	cfg.Linkage = linkage
	cfg.Signatures = sigs
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	genesis := block.Genesis(cfg.Clock.Now())
	l := &Ledger{
		cfg:    cfg,
		blocks: []block.Block{genesis},
		index:  map[uint32]int{0: 0},
	}

	slog.Debug("ledger initialized",
		"storage", cfg.StorageHint,
		"linkage", cfg.Linkage,
		"signatures", cfg.Signatures,
		"genesis", genesis.Digest().String(),
	)
	return l, nil
}

// Config returns the effective configuration, with defaults applied.
func (l *Ledger) Config() Config {
	return l.cfg
}

// Latest returns the highest-numbered block.
func (l *Ledger) Latest() (block.Block, error) {
	if l.destroyed {
		return block.Block{}, destroyedError("latest")
	}
	return l.blocks[len(l.blocks)-1].Clone(), nil
}

// GetByNumber returns the block with number n.
func (l *Ledger) GetByNumber(n uint32) (block.Block, error) {
	if l.destroyed {
		return block.Block{}, destroyedError("get")
	}
	b, ok := l.lookup(n)
	if !ok {
		return block.Block{}, NewError(KindNotFound, "get", fmt.Sprintf("block %d not found", n))
	}
	return b.Clone(), nil
}

func (l *Ledger) lookup(n uint32) (block.Block, bool) {
	i, ok := l.index[n]
	if !ok {
		return block.Block{}, false
	}
	return l.blocks[i], true
}

// Append verifies candidate against the current chain and stores a private copy.
// On failure the ledger is unchanged.
func (l *Ledger) Append(candidate block.Block) (Receipt, error) {
	if l.destroyed {
		return Receipt{}, destroyedError("append")
	}

	if err := l.verify("append", candidate); err != nil {
		slog.Debug("append rejected",
			"block", candidate.Number,
			"error", err,
		)
		return Receipt{}, err
	}

	tip := l.blocks[len(l.blocks)-1]
	if candidate.Number <= tip.Number {
		return Receipt{}, NewError(KindVerification, "append",
			fmt.Sprintf("%s: block number %d does not extend tip %d", MsgSequence, candidate.Number, tip.Number))
	}

	digest := candidate.Digest()
	receiptID, err := canon.ReceiptID(candidate.Number, digest.String(), hexIDs(candidate.FormulaIDs))
	if err != nil {
		return Receipt{}, WrapError(KindInvalidParam, "append", "compute receipt", err)
	}

	stored := candidate.Clone()
	l.index[stored.Number] = len(l.blocks)
	l.blocks = append(l.blocks, stored)
	l.totalRefs += stored.FormulaCount()

	slog.Info("block appended",
		"block", stored.Number,
		"formulas", stored.FormulaCount(),
		"signed", stored.Signed(),
		"digest", digest.String(),
	)

	return Receipt{
		BlockNumber: stored.Number,
		TipDigest:   digest,
		ID:          receiptID,
	}, nil
}

// AdoptGenesis replaces the ledger's own genesis with b. It is only permitted
// while the ledger holds nothing but its genesis, so that restoring an export
// into a fresh ledger reproduces the original tip digest.
func (l *Ledger) AdoptGenesis(b block.Block) error {
	if l.destroyed {
		return destroyedError("adopt genesis")
	}
	if !b.IsGenesis() {
		return NewError(KindInvalidParam, "adopt genesis", fmt.Sprintf("block %d is not a genesis block", b.Number))
	}
	if len(l.blocks) != 1 {
		return NewError(KindInvalidParam, "adopt genesis",
			fmt.Sprintf("ledger already holds %d blocks", len(l.blocks)))
	}
	if b.Signed() && l.cfg.Signatures != SignaturesOff {
		if err := block.VerifySignature(b); err != nil {
			return WrapError(KindVerification, "adopt genesis", MsgSignature, err)
		}
	}

	l.blocks[0] = b.Clone()
	slog.Debug("genesis adopted",
		"timestamp", b.Timestamp,
		"digest", b.Digest().String(),
	)
	return nil
}

// Info returns the ledger's aggregates.
func (l *Ledger) Info() (Info, error) {
	if l.destroyed {
		return Info{}, destroyedError("info")
	}
	return Info{
		BlockCount:             len(l.blocks),
		TotalFormulaReferences: l.totalRefs,
		TipDigest:              l.blocks[len(l.blocks)-1].Digest(),
		StorageHint:            l.cfg.StorageHint,
	}, nil
}

// Len returns the number of stored blocks, or zero once destroyed.
func (l *Ledger) Len() int {
	return len(l.blocks)
}

// Walk calls fn for every block in ascending order, stopping at the first error.
func (l *Ledger) Walk(fn func(block.Block) error) error {
	if l.destroyed {
		return destroyedError("walk")
	}
	for _, b := range l.blocks {
		if err := fn(b.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Blocks returns a copy of every block in ascending order.
func (l *Ledger) Blocks() ([]block.Block, error) {
	if l.destroyed {
		return nil, destroyedError("blocks")
	}
	out := make([]block.Block, len(l.blocks))
	for i, b := range l.blocks {
		out[i] = b.Clone()
	}
	return out, nil
}

// Destroy releases all blocks. It is idempotent; every later operation fails
// with an invalid-parameter error.
func (l *Ledger) Destroy() {
	if l.destroyed {
		return
	}
	l.blocks = nil
	l.index = nil
	l.totalRefs = 0
	l.destroyed = true
	slog.Debug("ledger destroyed", "storage", l.cfg.StorageHint)
}

func hexIDs(ids []block.FormulaID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
