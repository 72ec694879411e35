// Package bitops provides the raw bit-level primitives shared by the
// leaf and static-block representations: cross-alignment bit copies,
// popcount, and lowest-set-bit lookup.
package bitops

import "math/bits"

// WordBits is the machine word width every component in this module
// is built around.
const WordBits = 64

// PopCount returns the number of set bits in y.
func PopCount(y uint64) int {
	return bits.OnesCount64(y)
}

// LowestSetBitIndex returns the index of the least significant 1 bit.
// Callers must ensure word != 0.
func LowestSetBitIndex(word uint64) int {
	return bits.TrailingZeros64(word)
}

// CopyBits copies length bits starting at bit offset psrc in src to bit
// offset ptgt in tgt, handling arbitrary and possibly differing
// alignments between source and target.
//
// Destination bits before ptgt in the first touched word are
// preserved; bits strictly after ptgt+length within the final touched
// word may be clobbered. No word past the one holding bit
// ptgt+length-1 is written. Overlapping regions between src and tgt
// are not supported.
func CopyBits(tgt []uint64, ptgt uint64, src []uint64, psrc uint64, length uint64) {
	const w = WordBits
	if length == 0 {
		return
	}

	ti := ptgt / w
	ptgt %= w
	si := psrc / w
	psrc %= w

	mask := (uint64(1) << ptgt) - 1

	if ptgt == psrc {
		if ptgt != 0 {
			tgt[ti] = (tgt[ti] & mask) | (src[si] &^ mask)
			ti++
			si++
			length -= w - ptgt
		}
		nwords := (length + w - 1) / w
		copy(tgt[ti:ti+nwords], src[si:si+nwords])
		return
	}

	if ptgt < psrc {
		tgt[ti] = (tgt[ti] & mask) | ((src[si] >> (psrc - ptgt)) &^ mask)
		si++
		ptgt += w - psrc
	} else {
		tgt[ti] = (tgt[ti] & mask) | ((src[si] << (ptgt - psrc)) &^ mask)
		if length <= w-ptgt {
			return
		}
		ptgt -= psrc
		ti++
		tgt[ti] = src[si] >> (w - ptgt)
		si++
	}

	if length <= w-psrc {
		return
	}
	length -= w - psrc

	mask = (uint64(1) << ptgt) - 1
	old := tgt[ti] & mask
	length += w // length is unsigned, cannot compare against 0 below zero
	for length > w {
		tgt[ti] = old | (src[si] << ptgt)
		old = src[si] >> (w - ptgt)
		ti++
		si++
		length -= w
	}
	if length+ptgt > w {
		tgt[ti] = old
	}
}
