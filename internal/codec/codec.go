// Package codec reads and writes the flat binary ledger container.
//
// Layout (little-endian):
//
//	magic        4 bytes  0x4B434841 ("KCHA")
//	block_count  4 bytes
//	records      block_count × block.RecordSize, oldest first
//
// Import replays records through ledger.Append, so every restored block is
// verified exactly as a live append would be.
package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/kledger/internal/block"
	"github.com/roach88/kledger/internal/ledger"
)

// Magic identifies a ledger container.
const Magic uint32 = 0x4B434841

// HeaderSize is the length of the container header (magic and block count).
const HeaderSize = 8

// ImportResult reports import progress. It is populated even when Import fails.
type ImportResult struct {
	// Records is the block count declared by the container header.
	Records uint32

	// Appended counts records appended through the verifier.
	Appended int

	// Skipped counts records skipped as duplicates of the target's genesis.
	Skipped int

	// AdoptedGenesis is true when record 0 replaced the target's own genesis.
	AdoptedGenesis bool
}

// Export writes every block of l, oldest first.
// There is no partial-write recovery; a failed export leaves a truncated container.
func Export(l *ledger.Ledger, w io.Writer) error {
	info, err := l.Info()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	var header [HeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(info.BlockCount))
	if _, err := bw.Write(header[:]); err != nil {
		return ledger.WrapError(ledger.KindIO, "export", "write header", err)
	}

	err = l.Walk(func(b block.Block) error {
		rec, err := b.MarshalBinary()
		if err != nil {
			return ledger.WrapError(ledger.KindInvalidParam, "export", fmt.Sprintf("encode block %d", b.Number), err)
		}
		if _, err := bw.Write(rec); err != nil {
			return ledger.WrapError(ledger.KindIO, "export", fmt.Sprintf("write block %d", b.Number), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return ledger.WrapError(ledger.KindIO, "export", "flush", err)
	}

	slog.Debug("ledger exported",
		"blocks", info.BlockCount,
		"tip", info.TipDigest.String(),
	)
	return nil
}

// ExportFile creates (or truncates) path and exports l into it.
func ExportFile(l *ledger.Ledger, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return ledger.WrapError(ledger.KindIO, "export", "create file", err)
	}

	if err := Export(l, f); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return ledger.WrapError(ledger.KindIO, "export", "close file", err)
	}
	return nil
}

// Import reads a container and appends its blocks to l in order.
//
// A genesis record at position 0 is adopted in place of l's own genesis when l
// holds nothing else, and skipped otherwise. A read or verification failure at
// record k aborts; records before k stay appended.
func Import(l *ledger.Ledger, r io.Reader) (ImportResult, error) {
	var result ImportResult

	if _, err := l.Info(); err != nil {
		return result, err
	}

	br := bufio.NewReader(r)

	var header [HeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return result, ledger.WrapError(ledger.KindIO, "import", "read header", err)
	}
	if magic := binary.LittleEndian.Uint32(header[0:4]); magic != Magic {
		return result, ledger.NewError(ledger.KindIO, "import",
			fmt.Sprintf("unrecognized format (magic %#08x)", magic))
	}
	result.Records = binary.LittleEndian.Uint32(header[4:8])

	rec := make([]byte, block.RecordSize)
	for k := uint32(0); k < result.Records; k++ {
		if _, err := io.ReadFull(br, rec); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return result, ledger.WrapError(ledger.KindIO, "import", fmt.Sprintf("read record %d", k), err)
		}

		var b block.Block
		if err := b.UnmarshalBinary(rec); err != nil {
			return result, ledger.WrapError(ledger.KindIO, "import", fmt.Sprintf("decode record %d", k), err)
		}

		if k == 0 && b.IsGenesis() {
			if l.Len() == 1 {
				if err := l.AdoptGenesis(b); err != nil {
					return result, fmt.Errorf("import record 0: %w", err)
				}
				result.AdoptedGenesis = true
			} else {
				result.Skipped++
			}
			continue
		}

		if _, err := l.Append(b); err != nil {
			return result, fmt.Errorf("import record %d: %w", k, err)
		}
		result.Appended++
	}

	slog.Debug("ledger imported",
		"records", result.Records,
		"appended", result.Appended,
		"skipped", result.Skipped,
		"adopted_genesis", result.AdoptedGenesis,
	)
	return result, nil
}

// ImportFile opens path and imports it into l.
func ImportFile(l *ledger.Ledger, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, ledger.WrapError(ledger.KindIO, "import", "open file", err)
	}
	defer f.Close()

	res, err := Import(l, f)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", path, err)
	}
	return res, nil
}
