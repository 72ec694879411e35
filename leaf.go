package hybridbv

import "github.com/adaptivebv/hybridbv/internal/bitops"

// leafNode is the mutable small-bit-array representation (module B):
// a fixed leafCapacityWords-word buffer holding size bits, size <= M.
// Bits at and beyond size are always zero (invariant I3 in spec.md).
//
// Grounded on leafBV.c's leafBV struct and its leafWrite/leafInsert/
// leafDelete/leafRank/leafSelect/leafNext family.
type leafNode struct {
	node
	size uint32
	ones uint32
	data []uint64 // len == leafCapacityWords, always
}

func newLeaf() *leafNode {
	return &leafNode{
		node: node{kind: kindLeaf},
		data: make([]uint64, leafCapacityWords),
	}
}

// newLeafFrom builds a leaf from the first n bits of src (src may be
// longer; only the first n bits are consulted). n must be <= M.
func newLeafFrom(src []uint64, psrc uint64, n uint32) *leafNode {
	if uint64(n) > leafMaxBits() {
		panic("hybridbv: leaf content exceeds capacity")
	}
	l := newLeaf()
	if n > 0 {
		bitops.CopyBits(l.data, 0, src, psrc, uint64(n))
		if r := n % wordBits; r != 0 {
			l.data[n/wordBits] &= (uint64(1) << r) - 1
		}
	}
	l.size = n
	nwords := (int(n) + wordBits - 1) / wordBits
	var ones uint32
	for i := 0; i < nwords; i++ {
		ones += uint32(bitops.PopCount(l.data[i]))
	}
	l.ones = ones
	return l
}

func (l *leafNode) asNode() *node { return &l.node }

// access returns the bit at position i (0-based).
func (l *leafNode) access(i uint32) uint32 {
	return uint32((l.data[i/wordBits] >> (i % wordBits)) & 1)
}

// write overwrites the bit at position i with v and returns the delta
// to apply to the running ones-count of every enclosing node (+1, 0,
// or -1).
func (l *leafNode) write(i uint32, v uint32) int32 {
	old := l.access(i)
	if old == v {
		return 0
	}
	bit := i % wordBits
	word := i / wordBits
	if v != 0 {
		l.data[word] |= uint64(1) << bit
		l.ones++
		return 1
	}
	l.data[word] &^= uint64(1) << bit
	l.ones--
	return -1
}

// read copies length bits starting at i into dst at offset j,
// mirroring leafBV.c's sread via copyBits.
func (l *leafNode) read(i uint32, length uint32, dst []uint64, j uint64) {
	bitops.CopyBits(dst, j, l.data, uint64(i), uint64(length))
}

// insert makes room for and stores v at position i, growing size by
// one bit. Precondition: size < leafCapacityWords*wordBits (callers
// split overflowing leaves before calling insert; see transitions.go).
//
// The cascading shift-loop in the original C (leafInsert) indexes one
// word past the data array when the leaf is already at exactly M-1
// bits before the insert; that final iteration writes to memory the
// original never reads back (the vacated top bit of the last real
// word is filled in directly by the bit-packing step below it, not by
// the cascade). We clamp the loop's upper bound to the last real word
// instead of reproducing the out-of-bounds write.
func (l *leafNode) insert(i uint32, v uint32) {
	l.size++
	nb := int(l.size) / wordBits
	if nb > leafCapacityWords-1 {
		nb = leafCapacityWords - 1
	}
	ib := int(i) / wordBits

	for b := nb; b > ib; b-- {
		l.data[b] = (l.data[b] << 1) | (l.data[b-1] >> (wordBits - 1))
	}

	bit := i % wordBits
	lowMask := (uint64(1) << bit) - 1
	if (i+1)%wordBits != 0 {
		highMask := ^uint64(0) << ((i + 1) % wordBits)
		l.data[ib] = (l.data[ib] & lowMask) | (uint64(v) << bit) | ((l.data[ib] << 1) & highMask)
	} else {
		l.data[ib] = (l.data[ib] & lowMask) | (uint64(v) << bit)
	}
	l.ones += v
}

// delete removes the bit at position i, shrinking size by one, and
// returns the delta to apply to enclosing ones-counts (0 or -1).
//
// Symmetric clamp to insert's: the original C (leafDelete) reads one
// word past the data array when the leaf started at exactly M bits;
// we stop the cascade at the last real word, which already zeroes its
// vacated top bit via the plain right-shift.
func (l *leafNode) delete(i uint32) int32 {
	oldSize := l.size
	l.size--
	nb := int(oldSize) / wordBits
	if nb > leafCapacityWords-1 {
		nb = leafCapacityWords - 1
	}
	ib := int(i) / wordBits
	bit := i % wordBits

	v := int32((l.data[ib] >> bit) & 1)
	lowMask := (uint64(1) << bit) - 1
	l.data[ib] = (l.data[ib] & lowMask) | ((l.data[ib] >> 1) &^ lowMask)

	for b := ib + 1; b <= nb; b++ {
		l.data[b-1] |= l.data[b] << (wordBits - 1)
		l.data[b] >>= 1
	}

	l.ones -= uint32(v)
	return -v
}

// rank returns the number of 1-bits in [0, i], 0-based, inclusive.
func (l *leafNode) rank(i uint32) uint32 {
	newI := i + 1
	ib := newI / wordBits
	var ones uint32
	for p := uint32(0); p < ib; p++ {
		ones += uint32(bitops.PopCount(l.data[p]))
	}
	if newI%wordBits != 0 {
		mask := (uint64(1) << (newI % wordBits)) - 1
		ones += uint32(bitops.PopCount(l.data[ib] & mask))
	}
	return ones
}

// rank0 returns the number of 0-bits in [0, i].
func (l *leafNode) rank0(i uint32) uint32 {
	return i + 1 - l.rank(i)
}

// select1 returns the 0-based position of the j-th (1-based) 1-bit.
func (l *leafNode) select1(j uint32) int32 {
	var ones uint32
	p := uint32(0)
	var word uint64
	for {
		word = l.data[p]
		pc := uint32(bitops.PopCount(word))
		if ones+pc >= j {
			break
		}
		ones += pc
		p++
	}
	i := int32(p * wordBits)
	for {
		ones += uint32(word & 1)
		if ones == j {
			return i
		}
		word >>= 1
		i++
	}
}

// select0 returns the 0-based position of the j-th (1-based) 0-bit.
func (l *leafNode) select0(j uint32) int32 {
	var zeros uint32
	p := uint32(0)
	var word uint64
	for {
		word = ^l.data[p]
		pc := uint32(bitops.PopCount(word))
		if zeros+pc >= j {
			break
		}
		zeros += pc
		p++
	}
	i := int32(p * wordBits)
	for {
		zeros += uint32(word & 1)
		if zeros == j {
			return i
		}
		word >>= 1
		i++
	}
}

// next1 returns the position of the next 1-bit at or after i, or -1.
func (l *leafNode) next1(i uint32) int32 {
	p := i / wordBits
	word := l.data[p] & (^uint64(0) << (i % wordBits))
	for {
		p++
		if !(p*wordBits <= l.size && word == 0) {
			break
		}
		if int(p) >= leafCapacityWords {
			word = 0
			break
		}
		word = l.data[p]
	}
	if p*wordBits > l.size {
		if l.size%wordBits != 0 {
			word &= (uint64(1) << (l.size % wordBits)) - 1
		} else {
			word = 0
		}
	}
	if word == 0 {
		return -1
	}
	return int32((p-1)*wordBits) + int32(bitops.LowestSetBitIndex(word))
}

// next0 returns the position of the next 0-bit at or after i, or -1.
func (l *leafNode) next0(i uint32) int32 {
	p := i / wordBits
	word := (^l.data[p]) & (^uint64(0) << (i % wordBits))
	for {
		p++
		if !(p*wordBits <= l.size && word == 0) {
			break
		}
		if int(p) >= leafCapacityWords {
			word = 0
			break
		}
		word = ^l.data[p]
	}
	if p*wordBits > l.size {
		if l.size%wordBits != 0 {
			word &= (uint64(1) << (l.size % wordBits)) - 1
		} else {
			word = 0
		}
	}
	if word == 0 {
		return -1
	}
	return int32((p-1)*wordBits) + int32(bitops.LowestSetBitIndex(word))
}

// clone returns a deep copy of l.
func (l *leafNode) clone() *leafNode {
	data := make([]uint64, leafCapacityWords)
	copy(data, l.data)
	return &leafNode{node: node{kind: kindLeaf}, size: l.size, ones: l.ones, data: data}
}
