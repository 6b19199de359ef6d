package ledger

import (
	"fmt"

	"github.com/roach88/kledger/internal/block"
)

// Build assembles a candidate block extending the current tip.
//
// The ids are copied in order. With a non-nil key the block carries the key's
// public half and a signature over its digest; otherwise both stay zero.
// Build does not append: pass the result to Append.
func (l *Ledger) Build(key *block.PrivateKey, ids []block.FormulaID) (block.Block, error) {
	if l.destroyed {
		return block.Block{}, destroyedError("build")
	}
	if len(ids) > block.MaxFormulasPerBlock {
		return block.Block{}, NewError(KindInvalidParam, "build",
			fmt.Sprintf("%d formula ids exceed maximum of %d", len(ids), block.MaxFormulasPerBlock))
	}

	parent := l.blocks[len(l.blocks)-1]

	b := block.Block{
		PrevHash:   parent.Digest(),
		Timestamp:  l.cfg.Clock.Now(),
		Number:     parent.Number + 1,
		MerkleRoot: block.MerkleRoot(ids),
	}
	if len(ids) > 0 {
		b.FormulaIDs = make([]block.FormulaID, len(ids))
		copy(b.FormulaIDs, ids)
	}

	if key != nil {
		key.Sign(&b)
	}
	return b, nil
}
