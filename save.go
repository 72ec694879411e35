package hybridbv

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Save persists bv to w: the root is flattened to a Leaf or Static
// block (discarding any transient Internal structure and access-count
// history) and written as a little-endian u64 bit count followed by
// ⌈size/w⌉ little-endian u64 data words. No rank/select index is
// stored; Load reconstructs one if the loaded content becomes a
// Static block.
//
// Like hybridSave in the original, flattening is a permanent,
// observable side effect on bv itself, not a transient copy: the next
// mutation or query against bv runs against the collapsed
// representation too.
func (bv *Bitvector) Save(w io.Writer) error {
	if bv.root.kind == kindInternal {
		bv.root, _ = flatten(bv.root)
	}
	root := bv.root
	size := root.length()
	if err := binary.Write(w, binary.LittleEndian, size); err != nil {
		return fmt.Errorf("hybridbv: save size: %w", err)
	}
	words := collectWords(root, size)
	if err := binary.Write(w, binary.LittleEndian, words); err != nil {
		return fmt.Errorf("hybridbv: save data: %w", err)
	}
	return nil
}

// collectWords returns root's content as a flat word slice, without
// going through the Internal-node collect/rawRead machinery (root is
// always Leaf or Static by the time Save calls this).
func collectWords(root *node, size uint64) []uint64 {
	nWords := (size + uint64(wordBits) - 1) / uint64(wordBits)
	dst := make([]uint64, nWords)
	if size == 0 {
		return dst
	}
	if root.kind == kindLeaf {
		root.asLeaf().read(0, uint32(size), dst, 0)
	} else {
		root.asStatic().read(0, size, dst, 0)
	}
	return dst
}

// Load reconstructs a Bitvector previously written by Save.
func Load(r io.Reader) (*Bitvector, error) {
	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("hybridbv: load size: %w", err)
	}
	nWords := (size + uint64(wordBits) - 1) / uint64(wordBits)
	data := make([]uint64, nWords)
	if nWords > 0 {
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, fmt.Errorf("hybridbv: load data: %w", err)
		}
	}
	return NewFrom(data, size), nil
}
