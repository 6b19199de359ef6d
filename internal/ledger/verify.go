package ledger

import (
	"fmt"
	"log/slog"

	"github.com/roach88/kledger/internal/block"
)

// Verify checks candidate against the current chain without appending it.
//
// Checks run in order: formula count, merkle commitment, parent linkage,
// then signature according to the configured policy.
func (l *Ledger) Verify(candidate block.Block) error {
	if l.destroyed {
		return destroyedError("verify")
	}
	return l.verify("verify", candidate)
}

func (l *Ledger) verify(op string, b block.Block) error {
	if n := b.FormulaCount(); n > block.MaxFormulasPerBlock {
		return NewError(KindInvalidParam, op,
			fmt.Sprintf("%d formula ids exceed maximum of %d", n, block.MaxFormulasPerBlock))
	}

	if block.MerkleRoot(b.FormulaIDs) != b.MerkleRoot {
		return NewError(KindVerification, op, fmt.Sprintf("%s in block %d", MsgMerkleMismatch, b.Number))
	}

	if b.Number > 0 {
		parent, ok := l.lookup(b.Number - 1)
		switch {
		case ok:
			if parent.Digest() != b.PrevHash {
				return NewError(KindVerification, op, fmt.Sprintf("%s at block %d", MsgLinkageMismatch, b.Number))
			}
		case l.cfg.Linkage == LinkageStrict:
			return NewError(KindVerification, op, fmt.Sprintf("%s: block %d not present", MsgMissingParent, b.Number-1))
		default:
			slog.Warn("parent block missing, skipping linkage check",
				"block", b.Number,
				"parent", b.Number-1,
			)
		}
	}

	if err := checkSignature(op, b, l.cfg.Signatures); err != nil {
		return err
	}
	return nil
}

func checkSignature(op string, b block.Block, policy SignaturePolicy) *Error {
	switch policy {
	case SignaturesOff:
		return nil
	case SignaturesRequired:
		if !b.Signed() {
			return NewError(KindVerification, op, fmt.Sprintf("%s %d", MsgUnsigned, b.Number))
		}
	default:
		if !b.Signed() {
			return nil
		}
	}
	if err := block.VerifySignature(b); err != nil {
		return WrapError(KindVerification, op, fmt.Sprintf("%s in block %d", MsgSignature, b.Number), err)
	}
	return nil
}

// Finding is one integrity problem reported by Audit.
type Finding struct {
	BlockNumber uint32
	Err         *Error
}

// Audit re-verifies the whole chain: genesis shape, every commitment, every
// parent link (gaps are reported) and every signature. Signatures are checked
// under the configured policy, with SignaturesOff raised to SignaturesIfPresent.
// A nil slice means the chain is intact.
func (l *Ledger) Audit() ([]Finding, error) {
	if l.destroyed {
		return nil, destroyedError("audit")
	}

	policy := l.cfg.Signatures
	if policy == SignaturesOff {
		policy = SignaturesIfPresent
	}

	var findings []Finding
	report := func(n uint32, err *Error) {
		findings = append(findings, Finding{BlockNumber: n, Err: err})
	}

	if g := l.blocks[0]; !g.IsGenesis() {
		report(g.Number, NewError(KindVerification, "audit", "first block is not a genesis block"))
	}

	for i := 1; i < len(l.blocks); i++ {
		b, parent := l.blocks[i], l.blocks[i-1]

		if block.MerkleRoot(b.FormulaIDs) != b.MerkleRoot {
			report(b.Number, NewError(KindVerification, "audit", MsgMerkleMismatch))
		}
		switch {
		case b.Number != parent.Number+1:
			report(b.Number, NewError(KindVerification, "audit",
				fmt.Sprintf("%s: block %d not present", MsgMissingParent, b.Number-1)))
		case parent.Digest() != b.PrevHash:
			report(b.Number, NewError(KindVerification, "audit", MsgLinkageMismatch))
		}
		if err := checkSignature("audit", b, policy); err != nil {
			report(b.Number, err)
		}
	}

	slog.Debug("audit complete",
		"blocks", len(l.blocks),
		"findings", len(findings),
	)
	return findings, nil
}
