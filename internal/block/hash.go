package block

import "crypto/sha256"

// Domain prefixes for block digests.
// Version suffix enables future algorithm migration.
const (
	DomainBlock  = "kledger/block/v1"
	DomainMerkle = "kledger/merkle/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) Hash {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)

	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// MerkleRoot computes the commitment over ids in the given order.
// An empty batch commits to the all-zero hash.
//
// The commitment is a single digest over the concatenated IDs, so any reordering,
// insertion, removal or byte change produces a different root.
func MerkleRoot(ids []FormulaID) Hash {
	if len(ids) == 0 {
		return Hash{}
	}
	buf := make([]byte, 0, len(ids)*IDSize)
	for _, id := range ids {
		buf = append(buf, id[:]...)
	}
	return hashWithDomain(DomainMerkle, buf)
}
