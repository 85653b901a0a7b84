package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"compass/internal/faults"
)

// On-disk envelope: magic, format version, dimension, fingerprint, then each
// entry as a length-prefixed id followed by its raw float32 vector. All
// integers little-endian.
var indexMagic = [4]byte{'C', 'P', 'I', 'X'}

const indexVersion uint16 = 1

// maxFieldLen bounds length prefixes read from disk so a malformed file fails
// cleanly instead of attempting a huge allocation.
const maxFieldLen = 1 << 20

// Save writes the index to path. The file is self-contained: Load restores an
// index with identical query behavior.
func (idx *Index) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if _, err := w.Write(indexMagic[:]); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, indexVersion); err != nil {
		return fmt.Errorf("failed to write index version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(idx.dim)); err != nil {
		return fmt.Errorf("failed to write index dimension: %w", err)
	}
	if err := writeBytes(w, []byte(idx.fingerprint)); err != nil {
		return fmt.Errorf("failed to write index fingerprint: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(idx.ids))); err != nil {
		return fmt.Errorf("failed to write entry count: %w", err)
	}
	for _, id := range idx.ids {
		if err := writeBytes(w, []byte(id)); err != nil {
			return fmt.Errorf("failed to write entry id: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, idx.vectors[id]); err != nil {
			return fmt.Errorf("failed to write entry vector: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush index file: %w", err)
	}
	return nil
}

// Load restores a persisted index. Any unreadable or malformed file yields a
// CorruptIndex fault; a missing file is reported the same way, with the
// underlying os error preserved in the chain so callers can rebuild silently.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, faults.New(faults.KindCorruptIndex, "failed to open index file", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != indexMagic {
		return nil, faults.New(faults.KindCorruptIndex, "index file has invalid magic", err)
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil || version != indexVersion {
		return nil, faults.Newf(faults.KindCorruptIndex, "unsupported index format version %d", version)
	}
	var dim uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, faults.New(faults.KindCorruptIndex, "failed to read index dimension", err)
	}
	if dim == 0 || dim > maxFieldLen {
		return nil, faults.Newf(faults.KindCorruptIndex, "implausible index dimension %d", dim)
	}
	fingerprint, err := readBytes(r)
	if err != nil {
		return nil, faults.New(faults.KindCorruptIndex, "failed to read index fingerprint", err)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, faults.New(faults.KindCorruptIndex, "failed to read entry count", err)
	}
	if count == 0 || count > maxFieldLen {
		return nil, faults.Newf(faults.KindCorruptIndex, "implausible entry count %d", count)
	}

	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		id, err := readBytes(r)
		if err != nil {
			return nil, faults.New(faults.KindCorruptIndex, "failed to read entry id", err)
		}
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, faults.New(faults.KindCorruptIndex, "failed to read entry vector", err)
		}
		entries = append(entries, Entry{ID: string(id), Vector: vec})
	}

	idx, err := Build(entries, string(fingerprint))
	if err != nil {
		return nil, faults.New(faults.KindCorruptIndex, "failed to rebuild index from file", err)
	}
	return idx, nil
}

func writeBytes(w *bufio.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r *bufio.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxFieldLen {
		return nil, fmt.Errorf("field length %d exceeds limit", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
