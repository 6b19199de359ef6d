package block

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrSignatureMismatch is returned when a signature does not verify against the
// block digest and author key.
var ErrSignatureMismatch = errors.New("signature mismatch")

// PrivateKey is an Ed25519 seed. The matching public key is derived on demand.
type PrivateKey [PrivateKeySize]byte

// NewPrivateKey draws a fresh seed from r.
// Callers pass the random source explicitly; tests use a fixed reader.
func NewPrivateKey(r io.Reader) (PrivateKey, error) {
	var k PrivateKey
	if _, err := io.ReadFull(r, k[:]); err != nil {
		return PrivateKey{}, fmt.Errorf("generate key: %w", err)
	}
	return k, nil
}

// ParsePrivateKey decodes a 64-character hex seed.
func ParsePrivateKey(s string) (PrivateKey, error) {
	var k PrivateKey
	if err := decodeFixedHex(s, k[:]); err != nil {
		return PrivateKey{}, fmt.Errorf("parse private key: %w", err)
	}
	return k, nil
}

func (k PrivateKey) String() string {
	return hex.EncodeToString(k[:])
}

// Public derives the author public key.
func (k PrivateKey) Public() PublicKey {
	priv := ed25519.NewKeyFromSeed(k[:])
	var pub PublicKey
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return pub
}

// Sign sets b.AuthorPub from k and signs the resulting block digest.
// AuthorPub is part of the digest, so it is assigned before signing.
func (k PrivateKey) Sign(b *Block) {
	b.AuthorPub = k.Public()
	digest := b.Digest()
	sig := ed25519.Sign(ed25519.NewKeyFromSeed(k[:]), digest[:])
	copy(b.Signature[:], sig)
}

// VerifySignature checks b.Signature against b.AuthorPub over the block digest.
func VerifySignature(b Block) error {
	digest := b.Digest()
	if !ed25519.Verify(ed25519.PublicKey(b.AuthorPub[:]), digest[:], b.Signature[:]) {
		return ErrSignatureMismatch
	}
	return nil
}
