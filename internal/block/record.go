package block

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record field offsets.
const (
	offPrevHash     = 0
	offMerkleRoot   = offPrevHash + HashSize
	offAuthorPub    = offMerkleRoot + HashSize
	offTimestamp    = offAuthorPub + PublicKeySize
	offNumber       = offTimestamp + 8
	offFormulaIDs   = offNumber + 4
	offFormulaCount = offFormulaIDs + MaxFormulasPerBlock*IDSize
	offSignature    = offFormulaCount + 4

	// fixedSize is the digest-covered prefix of a record.
	fixedSize = offSignature

	// RecordSize is the encoded size of every block.
	RecordSize = fixedSize + SignatureSize
)

// ErrMalformedRecord is returned when a record cannot be decoded.
var ErrMalformedRecord = errors.New("malformed block record")

// encodeFixed writes every field except the signature into dst[:fixedSize].
func (b Block) encodeFixed(dst []byte) {
	copy(dst[offPrevHash:], b.PrevHash[:])
	copy(dst[offMerkleRoot:], b.MerkleRoot[:])
	copy(dst[offAuthorPub:], b.AuthorPub[:])
	binary.LittleEndian.PutUint64(dst[offTimestamp:], b.Timestamp)
	binary.LittleEndian.PutUint32(dst[offNumber:], b.Number)
	for i, id := range b.FormulaIDs {
		if i == MaxFormulasPerBlock {
			break
		}
		copy(dst[offFormulaIDs+i*IDSize:], id[:])
	}
	binary.LittleEndian.PutUint32(dst[offFormulaCount:], uint32(len(b.FormulaIDs)))
}

// MarshalBinary encodes b as a RecordSize-byte record.
func (b Block) MarshalBinary() ([]byte, error) {
	if len(b.FormulaIDs) > MaxFormulasPerBlock {
		return nil, fmt.Errorf("marshal block %d: %d formulas exceeds maximum %d",
			b.Number, len(b.FormulaIDs), MaxFormulasPerBlock)
	}
	buf := make([]byte, RecordSize)
	b.encodeFixed(buf)
	copy(buf[offSignature:], b.Signature[:])
	return buf, nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary.
// Unused formula slots must be zero: they are covered by the digest, and a block
// carrying hidden bytes there would not re-encode to the same record.
func (b *Block) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrMalformedRecord, len(data), RecordSize)
	}

	count := binary.LittleEndian.Uint32(data[offFormulaCount:])
	if count > MaxFormulasPerBlock {
		return fmt.Errorf("%w: formula count %d exceeds maximum %d", ErrMalformedRecord, count, MaxFormulasPerBlock)
	}
	for _, c := range data[offFormulaIDs+int(count)*IDSize : offFormulaCount] {
		if c != 0 {
			return fmt.Errorf("%w: non-zero bytes in unused formula slots", ErrMalformedRecord)
		}
	}

	var out Block
	copy(out.PrevHash[:], data[offPrevHash:])
	copy(out.MerkleRoot[:], data[offMerkleRoot:])
	copy(out.AuthorPub[:], data[offAuthorPub:])
	out.Timestamp = binary.LittleEndian.Uint64(data[offTimestamp:])
	out.Number = binary.LittleEndian.Uint32(data[offNumber:])
	if count > 0 {
		out.FormulaIDs = make([]FormulaID, count)
		for i := range out.FormulaIDs {
			copy(out.FormulaIDs[i][:], data[offFormulaIDs+i*IDSize:])
		}
	}
	copy(out.Signature[:], data[offSignature:])

	*b = out
	return nil
}
