package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainReceipt = "kledger/receipt/v1"
)

// HashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // Null separator - CRITICAL for security
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ReceiptID computes the content-addressed identifier of an append receipt.
// The formula store records it next to each formula as provenance; the same
// block always yields the same receipt ID.
func ReceiptID(blockNumber uint32, tipDigest string, formulaIDs []string) (string, error) {
	ids := formulaIDs
	if ids == nil {
		ids = []string{}
	}
	obj := map[string]any{
		"block_number": blockNumber,
		"tip_digest":   tipDigest,
		"formula_ids":  ids,
	}

	canonical, err := Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("ReceiptID: failed to marshal: %w", err)
	}

	return HashWithDomain(DomainReceipt, canonical), nil
}
