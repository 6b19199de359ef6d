package block

import (
	"encoding/hex"
	"fmt"
)

// Sizes of the fixed-width block fields.
const (
	HashSize            = 32
	IDSize              = 32
	PublicKeySize       = 32
	PrivateKeySize      = 32
	SignatureSize       = 64
	MaxFormulasPerBlock = 100
)

// Hash is a 32-byte digest.
type Hash [HashSize]byte

// IsZero reports whether every byte of h is zero.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// FormulaID is an opaque identifier minted by the formula store.
// The ledger never interprets its contents.
type FormulaID [IDSize]byte

func (id FormulaID) String() string {
	return hex.EncodeToString(id[:])
}

// ParseFormulaID decodes a 64-character hex string.
func ParseFormulaID(s string) (FormulaID, error) {
	var id FormulaID
	if err := decodeFixedHex(s, id[:]); err != nil {
		return FormulaID{}, fmt.Errorf("parse formula id: %w", err)
	}
	return id, nil
}

// PublicKey is an Ed25519 public key identifying a block author.
type PublicKey [PublicKeySize]byte

// IsZero reports whether the key is unset.
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// Signature is an Ed25519 signature over a block digest.
type Signature [SignatureSize]byte

// IsZero reports whether the signature is unset.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// Block commits to an ordered batch of formula IDs and links to its parent.
// Blocks are values; the ledger stores private copies.
type Block struct {
	PrevHash   Hash
	MerkleRoot Hash
	AuthorPub  PublicKey
	Timestamp  uint64
	Number     uint32
	FormulaIDs []FormulaID
	Signature  Signature
}

// Genesis returns the unsigned zeroth block stamped with the given time.
func Genesis(timestamp uint64) Block {
	return Block{Timestamp: timestamp}
}

// IsGenesis reports whether b has the shape of a genesis block:
// number zero, no parent, no formulas.
func (b Block) IsGenesis() bool {
	return b.Number == 0 && b.PrevHash.IsZero() && b.MerkleRoot.IsZero() && len(b.FormulaIDs) == 0
}

// FormulaCount returns the number of committed formula IDs.
func (b Block) FormulaCount() int {
	return len(b.FormulaIDs)
}

// Signed reports whether the block carries author material.
func (b Block) Signed() bool {
	return !b.AuthorPub.IsZero() || !b.Signature.IsZero()
}

// Clone returns a deep copy of b so callers cannot mutate stored formula IDs.
func (b Block) Clone() Block {
	c := b
	if b.FormulaIDs != nil {
		c.FormulaIDs = make([]FormulaID, len(b.FormulaIDs))
		copy(c.FormulaIDs, b.FormulaIDs)
	}
	return c
}

// Digest returns the digest of the block's fixed fields, excluding the signature.
// It is the value a child block stores as PrevHash.
func (b Block) Digest() Hash {
	var buf [fixedSize]byte
	b.encodeFixed(buf[:])
	return hashWithDomain(DomainBlock, buf[:])
}

func decodeFixedHex(s string, dst []byte) error {
	if len(s) != hex.EncodedLen(len(dst)) {
		return fmt.Errorf("expected %d hex characters, got %d", hex.EncodedLen(len(dst)), len(s))
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return err
	}
	return nil
}
