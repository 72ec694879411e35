package hybridbv

import "github.com/adaptivebv/hybridbv/internal/bitops"

// nodeLeaves returns the number of Leaf descendants n would have if
// it were flattened-then-counted: 1 for a Leaf, the leaf count a
// Static block of this size would split into, or the maintained
// leaves field for an Internal node.
func nodeLeaves(n *node) uint64 {
	switch n.kind {
	case kindLeaf:
		return 1
	case kindStatic:
		size := n.asStatic().size
		return (size + newLeafBits() - 1) / newLeafBits()
	default:
		return n.asInternal().leaves
	}
}

// mustFlatten is the adaptive transition trigger: an Internal node
// collapses back to a single Leaf/Static once it has been accessed
// disproportionately often relative to its own (small) size.
func mustFlatten(in *internalNode, total uint64) bool {
	return float64(in.size) <= epsilon*float64(total) &&
		float64(in.accesses) >= Theta*float64(in.size)
}

// rawRead copies l bits starting at i from n's subtree into dst at
// offset j, without touching any access counters — used internally by
// collect/flatten, which must not themselves count as an access.
func rawRead(n *node, i, l uint64, dst []uint64, j uint64) {
	switch n.kind {
	case kindLeaf:
		n.asLeaf().read(uint32(i), uint32(l), dst, j)
	case kindStatic:
		n.asStatic().read(i, l, dst, j)
	default:
		in := n.asInternal()
		lsize := in.left.length()
		switch {
		case i+l < lsize:
			rawRead(in.left, i, l, dst, j)
		case i >= lsize:
			rawRead(in.right, i-lsize, l, dst, j)
		default:
			rawRead(in.left, i, lsize-i, dst, j)
			rawRead(in.right, 0, l-(lsize-i), dst, j+(lsize-i))
		}
	}
}

// collect flattens an Internal node's subtree into one contiguous
// word buffer.
func collect(in *internalNode, length uint64) []uint64 {
	d := make([]uint64, (length+uint64(wordBits)-1)/uint64(wordBits))
	rawRead(&in.node, 0, length, d, 0)
	return d
}

// flatten converts an Internal node into a Leaf (if small) or a
// Static block (otherwise), returning the replacement node and the
// resulting change in leaf count. A no-op (delta 0) on non-Internal
// input.
//
// Grounded on hybridBV.c's flatten(); the original mutates its
// hybridBV argument's type tag in place and keeps recursing against
// the same (now-mutated) pointer. Go cannot change a struct's
// concrete type under a stable address, so every caller in this
// module threads the replacement *node back into its own parent
// pointer (or the Bitvector root) instead — the same idiom already
// required for hybridDelete's child-splice case.
func flatten(n *node) (*node, int64) {
	if n.kind != kindInternal {
		return n, 0
	}
	in := n.asInternal()
	length := in.size
	oldLeaves := int64(in.leaves)
	d := collect(in, length)

	var newN *node
	if length > newLeafBits() {
		newN = newStaticFrom(d, length).asNode()
	} else {
		newN = newLeafFrom(d, 0, uint32(length)).asNode()
	}
	return newN, int64(nodeLeaves(newN)) - oldLeaves
}

// splitLeaf breaks a full Leaf into an Internal node with two Leaf
// children, roughly halved by byte boundary (matching leafBV's own
// byte-granular storage).
func splitLeaf(l *leafNode) *internalNode {
	bsizeBits := uint32(((int(l.size)/2 + 7) / 8) * 8)
	left := newLeafFrom(l.data, 0, bsizeBits)
	right := newLeafFrom(l.data, uint64(bsizeBits), l.size-bsizeBits)
	return &internalNode{
		node:   node{kind: kindInternal},
		size:   uint64(l.size),
		ones:   uint64(l.ones),
		leaves: 2,
		left:   left.asNode(),
		right:  right.asNode(),
	}
}

// splitFrom rebuilds a flat bit buffer into a balanced tree whose path
// to position i ends in a single Leaf; every sibling hanging off that
// path is a Leaf or Static block. It bisects by block count rather than
// bit count so every split falls on a newLeafBits() boundary: each
// piece's length is a multiple of newLeafBits() bits, except the piece
// that ends at the end of the buffer. Grounded on hybridBV.c's
// splitFrom/split.
func splitFrom(data []uint64, n, ones, i uint64) *internalNode {
	blen := newLeafBits()
	nblock := (n + blen - 1) / blen
	start := uint64(0)

	var finalDB *internalNode
	var pending **node

	for nblock >= 2 {
		db := &internalNode{node: node{kind: kindInternal}}
		if finalDB == nil {
			finalDB = db
		} else {
			*pending = db.asNode()
		}
		db.size = n
		db.ones = ones
		db.leaves = nblock

		mid := start + (nblock/2)*blen

		if i < (nblock/2)*blen {
			rightLen := n - (nblock/2)*blen
			var rightNode *node
			if rightLen > newLeafBits() {
				segment := make([]uint64, (rightLen+uint64(wordBits)-1)/uint64(wordBits))
				bitops.CopyBits(segment, 0, data, mid, rightLen)
				rightNode = newStaticFrom(segment, rightLen).asNode()
			} else {
				rightNode = newLeafFrom(data, mid, uint32(rightLen)).asNode()
			}
			db.right = rightNode
			nblock /= 2
			n = nblock * blen
			ones -= rightNode.onesCount()
			pending = &db.left
		} else {
			leftLen := (nblock / 2) * blen
			var leftNode *node
			if leftLen > newLeafBits() {
				segment := make([]uint64, (leftLen+uint64(wordBits)-1)/uint64(wordBits))
				bitops.CopyBits(segment, 0, data, start, leftLen)
				leftNode = newStaticFrom(segment, leftLen).asNode()
			} else {
				leftNode = newLeafFrom(data, start, uint32(leftLen)).asNode()
			}
			db.left = leftNode
			start = mid
			n -= leftLen
			i -= leftLen
			ones -= leftNode.onesCount()
			nblock -= nblock / 2
			pending = &db.right
		}
	}
	leaf := newLeafFrom(data, start, uint32(n))
	*pending = leaf.asNode()
	return finalDB
}

// split rebuilds a Static block into a freshly balanced Internal
// subtree, used whenever a mutation (write/insert/delete) reaches a
// Static node — Static blocks are immutable, so any write promotes
// the node to Dynamic first.
func split(s *staticNode, i uint64) *internalNode {
	return splitFrom(s.data, s.size, s.ones, i)
}

// canBalance reports whether a rebuild of an n-bit region (with
// dleft/dright pending bit deltas on each half) would still respect
// the balance factor alpha.
func canBalance(n uint64, dleft, dright int64) bool {
	b := newLeafBits()
	left := ((n + b - 1) / b / 2) * b
	right := n - left
	total := float64(int64(n) + dleft + dright)
	if float64(int64(left)+dleft) > alpha*total {
		return false
	}
	if float64(int64(right)+dright) > alpha*total {
		return false
	}
	return true
}

// balance rebuilds an Internal node from scratch via flatten+split,
// returning the replacement and the resulting leaf-count delta.
func balance(in *internalNode, i uint64) (*internalNode, int64) {
	length := in.size
	ones := in.ones
	oldLeaves := int64(in.leaves)
	d := collect(in, length)
	newIn := splitFrom(d, length, ones, i)
	return newIn, int64(newIn.leaves) - oldLeaves
}

// mergeLeaves combines an Internal node's two Leaf children into one,
// used when a delete shrinks the subtree below newLeafBits().
func mergeLeaves(in *internalNode) *leafNode {
	l1 := in.left.asLeaf()
	l2 := in.right.asLeaf()
	bitops.CopyBits(l1.data, uint64(l1.size), l2.data, 0, uint64(l2.size))
	l1.size += l2.size
	l1.ones += l2.ones
	return l1
}

func transferThreshold() uint64 {
	return uint64(float64(leafMaxBits()) * transferFloor)
}

// transferLeft moves roughly half the size difference from the right
// Leaf child to the left, used to relieve a right Leaf about to
// overflow. Reports whether a transfer of useful size happened.
func transferLeft(in *internalNode) bool {
	l1 := in.left.asLeaf()
	l2 := in.right.asLeaf()
	trf := (l2.size - l1.size + 1) / 2
	if uint64(trf) < transferThreshold() {
		return false
	}
	bitops.CopyBits(l1.data, uint64(l1.size), l2.data, 0, uint64(trf))
	l1.size += trf
	l2.size -= trf
	if r := l1.size % wordBits; r != 0 {
		l1.data[l1.size/wordBits] &= (uint64(1) << r) - 1
	}

	segment := make([]uint64, leafCapacityWords)
	bitops.CopyBits(segment, 0, l2.data, uint64(trf), uint64(l2.size))

	words := trf / wordBits
	var ones uint32
	for k := uint32(0); k < words; k++ {
		ones += uint32(bitops.PopCount(l2.data[k]))
	}
	if trf%wordBits != 0 {
		mask := (uint64(1) << (trf % wordBits)) - 1
		ones += uint32(bitops.PopCount(l2.data[words] & mask))
	}
	l1.ones += ones
	l2.ones -= ones
	copy(l2.data, segment)
	return true
}

// transferRight is transferLeft's mirror: moves bits from the left
// Leaf child to the right, relieving a left Leaf about to overflow.
func transferRight(in *internalNode) bool {
	l1 := in.left.asLeaf()
	l2 := in.right.asLeaf()
	trf := (l1.size - l2.size + 1) / 2
	if uint64(trf) < transferThreshold() {
		return false
	}
	segment := make([]uint64, leafCapacityWords)
	copy(segment, l2.data)
	oldL2Size := l2.size

	bitops.CopyBits(l2.data, 0, l1.data, uint64(l1.size-trf), uint64(trf))

	words := trf / wordBits
	var ones uint32
	for k := uint32(0); k < words; k++ {
		ones += uint32(bitops.PopCount(l2.data[k]))
	}
	if trf%wordBits != 0 {
		mask := (uint64(1) << (trf % wordBits)) - 1
		ones += uint32(bitops.PopCount(l2.data[words] & mask))
	}
	l1.ones -= ones
	l2.ones += ones

	bitops.CopyBits(l2.data, uint64(trf), segment, 0, uint64(oldL2Size))
	l1.size -= trf
	l2.size += trf
	if r := l1.size % wordBits; r != 0 {
		l1.data[l1.size/wordBits] &= (uint64(1) << r) - 1
	}
	for k := (l1.size + wordBits - 1) / wordBits; k < leafCapacityWords; k++ {
		l1.data[k] = 0
	}
	return true
}
