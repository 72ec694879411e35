package hybridbv

import "github.com/adaptivebv/hybridbv/internal/bitops"

// staticNode is the immutable bit array representation (module C): a
// flat word buffer plus a two-level rank/select index — a superblock
// prefix-sum array (super, S in spec.md) covering 2^16-bit spans, and
// a within-superblock block-count array (blockRank, B_idx) covering
// staticBlockWords*wordBits = 256-bit spans.
//
// Grounded on staticBV.c's staticPreprocess/staticRank/staticSelect/
// staticSelect0/staticNext/staticNext0.
type staticNode struct {
	node
	size      uint64
	ones      uint64
	data      []uint64
	super     []uint64 // S: prefix popcount at the start of each superblock
	blockRank []uint16 // B_idx: popcount from the superblock start to each block start
}

// newStaticFrom builds a static block over data, which must hold
// exactly (n+wordBits-1)/wordBits words of live content; data is
// taken by reference, not copied.
func newStaticFrom(data []uint64, n uint64) *staticNode {
	s := &staticNode{node: node{kind: kindStatic}, size: n, data: data}
	s.preprocess()
	return s
}

func (s *staticNode) asNode() *node { return &s.node }

func (s *staticNode) preprocess() {
	if s.size == 0 {
		return
	}
	w := uint64(wordBits)
	n := s.size
	nWords := (n + w - 1) / w
	s.blockRank = make([]uint16, (n+staticBlockWords*w-1)/(staticBlockWords*w))
	s.super = make([]uint64, (n+superblockBits-1)/superblockBits)

	var sacc, acc uint64
	i := uint64(0)
	for i < nWords {
		top := nWords
		if i+superblockBits/w < top {
			top = i + superblockBits/w
		}
		sacc += acc
		acc = 0
		s.super[(i*w)>>16] = sacc
		for i < top {
			if i%staticBlockWords == 0 {
				s.blockRank[i/staticBlockWords] = uint16(acc)
			}
			acc += uint64(bitops.PopCount(s.data[i]))
			i++
		}
	}
	s.ones = s.rank(n - 1)
}

func (s *staticNode) access(i uint64) uint32 {
	return uint32((s.data[i/wordBits] >> (i % wordBits)) & 1)
}

func (s *staticNode) read(i, length uint64, dst []uint64, j uint64) {
	bitops.CopyBits(dst, j, s.data, i, length)
}

// rank returns the number of 1-bits in [0, i].
func (s *staticNode) rank(i uint64) uint64 {
	w := uint64(wordBits)
	sb := i / (staticBlockWords * w)
	rank := s.super[i>>16] + uint64(s.blockRank[sb])
	sb *= staticBlockWords
	var b uint64
	for b = sb; b < i/w; b++ {
		rank += uint64(bitops.PopCount(s.data[b]))
	}
	mask := ^uint64(0) >> (w - 1 - (i % w))
	rank += uint64(bitops.PopCount(s.data[b] & mask))
	return rank
}

func (s *staticNode) rank0(i uint64) uint64 {
	return i + 1 - s.rank(i)
}

// expSearch finds the largest index i in [lo, hi) such that f(i) < j,
// via interpolation-seed-then-exponential-then-binary search. Shared
// by both the superblock and block levels of select1/select0, which
// differ only in the monotonic function f being searched.
func expSearch(i0, lo, hi int64, j uint64, f func(int64) uint64) int64 {
	i := i0
	if f(i) < j {
		d := int64(1)
		for i+d < hi && f(i+d) < j {
			i += d
			d <<= 1
		}
		d = min(hi, i+d)
		for i+1 < d {
			m := (i + d) >> 1
			if f(m) < j {
				i = m
			} else {
				d = m
			}
		}
		return i
	}
	d := int64(1)
	for i-d >= lo && f(i-d) >= j {
		i -= d
		d <<= 1
	}
	d = max(lo, i-d)
	for d+1 < i {
		m := (i + d) >> 1
		if f(m) < j {
			d = m
		} else {
			i = m
		}
	}
	return i - 1
}

// select1 returns the 0-based position of the j-th (1-based) 1-bit.
func (s *staticNode) select1(j uint64) uint64 {
	w := uint64(wordBits)
	n := s.size
	numSuper := int64(len(s.super))

	i := int64(uint64(float64(j)*(float64(n)/float64(s.ones))) >> 16)
	if i == numSuper {
		i--
	}
	i = expSearch(i, 0, numSuper, j, func(x int64) uint64 { return s.super[x] })

	j -= s.super[i]
	var p uint64
	if i < numSuper-1 {
		p = s.super[i+1] - s.super[i]
	} else {
		p = s.ones - s.super[i]
	}
	b := (i << 16) / int64(staticBlockWords*w)
	numBlocks := int64(len(s.blockRank))
	top := min(b+int64(superblockBits)/int64(staticBlockWords*w), numBlocks)
	bi := b + int64(float64(j)*float64(top-b)*float64(staticBlockWords*w)/float64(p))/int64(staticBlockWords*w)
	if bi == top {
		bi--
	}
	bi = expSearch(bi, b, top, j, func(x int64) uint64 { return uint64(s.blockRank[x]) })

	j -= uint64(s.blockRank[bi])
	wi := bi * int64(staticBlockWords)
	for (wi+1)*int64(w) < int64(n) {
		pc := uint64(bitops.PopCount(s.data[wi]))
		if pc >= j {
			break
		}
		j -= pc
		wi++
	}
	word := s.data[wi]
	pos := uint64(wi) * w
	for {
		j -= word & 1
		if j == 0 {
			return pos
		}
		word >>= 1
		pos++
	}
}

// select0 returns the 0-based position of the j-th (1-based) 0-bit.
func (s *staticNode) select0(j uint64) uint64 {
	w := uint64(wordBits)
	n := s.size
	zerosTotal := n - s.ones
	numSuper := int64(len(s.super))

	i := int64(uint64(float64(j)*(float64(n)/float64(zerosTotal))) >> 16)
	if i == numSuper {
		i--
	}
	superZeros := func(x int64) uint64 { return uint64(x)*superblockBits - s.super[x] }
	i = expSearch(i, 0, numSuper, j, superZeros)

	j -= superZeros(i)
	var p uint64
	if i < numSuper-1 {
		p = superblockBits - (s.super[i+1] - s.super[i])
	} else {
		p = (n - uint64(i)*superblockBits) - (s.ones - s.super[i])
	}
	b := (i << 16) / int64(staticBlockWords*w)
	numBlocks := int64(len(s.blockRank))
	top := min(b+int64(superblockBits)/int64(staticBlockWords*w), numBlocks)
	bi := b + int64(float64(j)*float64(top-b)*float64(staticBlockWords*w)/float64(p))/int64(staticBlockWords*w)
	if bi == top {
		bi--
	}
	blockZeros := func(x int64) uint64 { return uint64(x-b)*staticBlockWords*w - uint64(s.blockRank[x]) }
	bi = expSearch(bi, b, top, j, blockZeros)

	j -= blockZeros(bi)
	wi := bi * int64(staticBlockWords)
	for (wi+1)*int64(w) < int64(n) {
		pc := uint64(bitops.PopCount(^s.data[wi]))
		if pc >= j {
			break
		}
		j -= pc
		wi++
	}
	word := ^s.data[wi]
	pos := uint64(wi) * w
	for {
		j -= word & 1
		if j == 0 {
			return pos
		}
		word >>= 1
		pos++
	}
}

func maskToSize(word uint64, size, w uint64) uint64 {
	if size%w != 0 {
		return word & ((uint64(1) << (size % w)) - 1)
	}
	return 0
}

// next1 returns the position of the next 1-bit at or after i, or -1.
func (s *staticNode) next1(i uint64) int64 {
	w := uint64(wordBits)
	p := i / w
	word := s.data[p] & (^uint64(0) << (i % w))
	if (p+1)*w > s.size {
		word = maskToSize(word, s.size, w)
	}
	if word != 0 {
		return int64(p*w) + int64(bitops.LowestSetBitIndex(word))
	}

	lastWord := (s.size - 1) / w
	b := min((p/staticBlockWords+2)*staticBlockWords, 1+lastWord)
	p++
	for p < b {
		word = s.data[p]
		p++
		if word != 0 {
			break
		}
	}
	if word != 0 {
		if p*w > s.size {
			word = maskToSize(word, s.size, w)
		}
		if word == 0 {
			return -1
		}
		return int64((p-1)*w) + int64(bitops.LowestSetBitIndex(word))
	}
	if p == 1+lastWord {
		return -1
	}

	sb := p/staticBlockWords - 1
	rank := s.super[(sb*staticBlockWords*w)>>16] + uint64(s.blockRank[sb])
	if rank == s.ones {
		return -1
	}
	return int64(s.select1(rank + 1))
}

// next0 returns the position of the next 0-bit at or after i, or -1.
func (s *staticNode) next0(i uint64) int64 {
	w := uint64(wordBits)
	p := i / w
	word := (^s.data[p]) & (^uint64(0) << (i % w))
	if (p+1)*w > s.size {
		word = maskToSize(word, s.size, w)
	}
	if word != 0 {
		return int64(p*w) + int64(bitops.LowestSetBitIndex(word))
	}

	lastWord := (s.size - 1) / w
	b := min((p/staticBlockWords+2)*staticBlockWords, 1+lastWord)
	p++
	for p < b {
		word = ^s.data[p]
		p++
		if word != 0 {
			break
		}
	}
	if word != 0 {
		if p*w > s.size {
			word = maskToSize(word, s.size, w)
		}
		if word == 0 {
			return -1
		}
		return int64((p-1)*w) + int64(bitops.LowestSetBitIndex(word))
	}
	if p == 1+lastWord {
		return -1
	}

	sb := p/staticBlockWords - 1
	rank0 := sb*staticBlockWords*w - (s.super[(sb*staticBlockWords*w)>>16] + uint64(s.blockRank[sb]))
	zerosTotal := s.size - s.ones
	if rank0 == zerosTotal {
		return -1
	}
	return int64(s.select0(rank0 + 1))
}

func (s *staticNode) clone() *staticNode {
	data := make([]uint64, len(s.data))
	copy(data, s.data)
	return newStaticFrom(data, s.size)
}
