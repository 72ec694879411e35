package hybridbv

// This file holds the recursive per-operation logic for the Internal
// node (module D): navigation, the access-triggered flatten check,
// and the mutation-triggered split/balance/transfer/merge decisions.
// Grounded on hybridBV.c's access/rank/select1/select0/next1/next0/
// sread/hybridWrite/insert/delete.
//
// Every function returns the node to store in the caller's child (or
// root) slot alongside its result, since flatten/split/balance/merge
// can replace an Internal node with a different concrete variant —
// see flatten's doc comment for why this differs from the original's
// in-place type mutation. Leaf-count corrections (irecompute/
// rrecompute/recompute in the original) are folded into this same
// return value as a running delta added to each ancestor's leaves
// field during the recursive unwind, rather than a separate top-down
// correction pass.

// access returns the bit at i.
func access(n *node, i, total uint64) (uint32, *node, int64) {
	var flattenDelta int64
	if n.kind == kindInternal {
		in := n.asInternal()
		in.accesses++
		if mustFlatten(in, total) {
			newN, delta := flatten(&in.node)
			n = newN
			flattenDelta = delta
		} else {
			lsize := in.left.length()
			if i < lsize {
				v, newLeft, ld := access(in.left, i, total)
				in.left = newLeft
				in.leaves = uint64(int64(in.leaves) + ld)
				return v, n, ld
			}
			v, newRight, ld := access(in.right, i-lsize, total)
			in.right = newRight
			in.leaves = uint64(int64(in.leaves) + ld)
			return v, n, ld
		}
	}
	if n.kind == kindLeaf {
		return n.asLeaf().access(uint32(i)), n, flattenDelta
	}
	return n.asStatic().access(i), n, flattenDelta
}

// readRange copies l bits starting at i into dst at offset j.
func readRange(n *node, i, l uint64, dst []uint64, j, total uint64) (*node, int64) {
	var flattenDelta int64
	if n.kind == kindInternal {
		in := n.asInternal()
		in.accesses++
		if mustFlatten(in, total) {
			newN, delta := flatten(&in.node)
			n = newN
			flattenDelta = delta
		} else {
			lsize := in.left.length()
			switch {
			case i+l < lsize:
				newLeft, ld := readRange(in.left, i, l, dst, j, total)
				in.left = newLeft
				in.leaves = uint64(int64(in.leaves) + ld)
				return n, ld
			case i >= lsize:
				newRight, ld := readRange(in.right, i-lsize, l, dst, j, total)
				in.right = newRight
				in.leaves = uint64(int64(in.leaves) + ld)
				return n, ld
			default:
				newLeft, ld1 := readRange(in.left, i, lsize-i, dst, j, total)
				in.left = newLeft
				newRight, ld2 := readRange(in.right, 0, l-(lsize-i), dst, j+(lsize-i), total)
				in.right = newRight
				in.leaves = uint64(int64(in.leaves) + ld1 + ld2)
				return n, ld1 + ld2
			}
		}
	}
	if n.kind == kindLeaf {
		n.asLeaf().read(uint32(i), uint32(l), dst, j)
		return n, flattenDelta
	}
	n.asStatic().read(i, l, dst, j)
	return n, flattenDelta
}

// rank1 returns the number of 1-bits in [0, i].
func rank1(n *node, i, total uint64) (uint64, *node, int64) {
	var flattenDelta int64
	if n.kind == kindInternal {
		in := n.asInternal()
		in.accesses++
		if mustFlatten(in, total) {
			newN, delta := flatten(&in.node)
			n = newN
			flattenDelta = delta
		} else {
			lsize := in.left.length()
			if i < lsize {
				v, newLeft, ld := rank1(in.left, i, total)
				in.left = newLeft
				in.leaves = uint64(int64(in.leaves) + ld)
				return v, n, ld
			}
			lones := in.left.onesCount()
			v, newRight, ld := rank1(in.right, i-lsize, total)
			in.right = newRight
			in.leaves = uint64(int64(in.leaves) + ld)
			return lones + v, n, ld
		}
	}
	if n.kind == kindLeaf {
		return uint64(n.asLeaf().rank(uint32(i))), n, flattenDelta
	}
	return n.asStatic().rank(i), n, flattenDelta
}

// select1 returns the 0-based position of the j-th (1-based) 1-bit.
func select1(n *node, j, total uint64) (uint64, *node, int64) {
	var flattenDelta int64
	if n.kind == kindInternal {
		in := n.asInternal()
		in.accesses++
		if mustFlatten(in, total) {
			newN, delta := flatten(&in.node)
			n = newN
			flattenDelta = delta
		} else {
			lones := in.left.onesCount()
			if j <= lones {
				v, newLeft, ld := select1(in.left, j, total)
				in.left = newLeft
				in.leaves = uint64(int64(in.leaves) + ld)
				return v, n, ld
			}
			lsize := in.left.length()
			v, newRight, ld := select1(in.right, j-lones, total)
			in.right = newRight
			in.leaves = uint64(int64(in.leaves) + ld)
			return lsize + v, n, ld
		}
	}
	if n.kind == kindLeaf {
		return uint64(n.asLeaf().select1(uint32(j))), n, flattenDelta
	}
	return n.asStatic().select1(j), n, flattenDelta
}

// select0 returns the 0-based position of the j-th (1-based) 0-bit.
func select0(n *node, j, total uint64) (uint64, *node, int64) {
	var flattenDelta int64
	if n.kind == kindInternal {
		in := n.asInternal()
		in.accesses++
		if mustFlatten(in, total) {
			newN, delta := flatten(&in.node)
			n = newN
			flattenDelta = delta
		} else {
			lsize := in.left.length()
			lzeros := lsize - in.left.onesCount()
			if j <= lzeros {
				v, newLeft, ld := select0(in.left, j, total)
				in.left = newLeft
				in.leaves = uint64(int64(in.leaves) + ld)
				return v, n, ld
			}
			v, newRight, ld := select0(in.right, j-lzeros, total)
			in.right = newRight
			in.leaves = uint64(int64(in.leaves) + ld)
			return lsize + v, n, ld
		}
	}
	if n.kind == kindLeaf {
		return uint64(n.asLeaf().select0(uint32(j))), n, flattenDelta
	}
	return n.asStatic().select0(j), n, flattenDelta
}

// next1 returns the position of the next 1-bit at or after i, or -1.
func next1(n *node, i, total uint64) (int64, *node, int64) {
	var flattenDelta int64
	if n.kind == kindInternal {
		in := n.asInternal()
		if in.ones == 0 {
			return -1, n, 0 // not considered an access
		}
		in.accesses++
		if mustFlatten(in, total) {
			newN, delta := flatten(&in.node)
			n = newN
			flattenDelta = delta
		} else {
			lsize := in.left.length()
			var ld1 int64
			if i < lsize {
				var ans int64
				var newLeft *node
				ans, newLeft, ld1 = next1(in.left, i, total)
				in.left = newLeft
				in.leaves = uint64(int64(in.leaves) + ld1)
				if ans != -1 {
					return ans, n, ld1
				}
				i = lsize
			}
			ans2, newRight, ld2 := next1(in.right, i-lsize, total)
			in.right = newRight
			in.leaves = uint64(int64(in.leaves) + ld2)
			if ans2 == -1 {
				return -1, n, ld1 + ld2
			}
			return int64(lsize) + ans2, n, ld1 + ld2
		}
	}
	if n.kind == kindLeaf {
		return int64(n.asLeaf().next1(uint32(i))), n, flattenDelta
	}
	return n.asStatic().next1(i), n, flattenDelta
}

// next0 returns the position of the next 0-bit at or after i, or -1.
func next0(n *node, i, total uint64) (int64, *node, int64) {
	var flattenDelta int64
	if n.kind == kindInternal {
		in := n.asInternal()
		if in.ones == in.size {
			return -1, n, 0 // not considered an access
		}
		in.accesses++
		if mustFlatten(in, total) {
			newN, delta := flatten(&in.node)
			n = newN
			flattenDelta = delta
		} else {
			lsize := in.left.length()
			var ld1 int64
			if i < lsize {
				var ans int64
				var newLeft *node
				ans, newLeft, ld1 = next0(in.left, i, total)
				in.left = newLeft
				in.leaves = uint64(int64(in.leaves) + ld1)
				if ans != -1 {
					return ans, n, ld1
				}
				i = lsize
			}
			ans2, newRight, ld2 := next0(in.right, i-lsize, total)
			in.right = newRight
			in.leaves = uint64(int64(in.leaves) + ld2)
			if ans2 == -1 {
				return -1, n, ld1 + ld2
			}
			return int64(lsize) + ans2, n, ld1 + ld2
		}
	}
	if n.kind == kindLeaf {
		return int64(n.asLeaf().next0(uint32(i))), n, flattenDelta
	}
	return n.asStatic().next0(i), n, flattenDelta
}

// write overwrites the bit at i with v, returning the ones-count
// delta. Unlike the read ops above, write never flattens on its own —
// it only promotes a Static block to Internal first, since it must
// mutate.
func write(n *node, i uint64, v uint32) (*node, int32, int64) {
	switch n.kind {
	case kindStatic:
		in := split(n.asStatic(), i)
		return write(in.asNode(), i, v)
	case kindLeaf:
		dif := n.asLeaf().write(uint32(i), v)
		return n, dif, 0
	default:
		in := n.asInternal()
		in.accesses = 0
		lsize := in.left.length()
		var dif int32
		var ld int64
		if i < lsize {
			var newLeft *node
			newLeft, dif, ld = write(in.left, i, v)
			in.left = newLeft
		} else {
			var newRight *node
			newRight, dif, ld = write(in.right, i-lsize, v)
			in.right = newRight
		}
		in.ones = uint64(int64(in.ones) + int64(dif))
		in.leaves = uint64(int64(in.leaves) + ld)
		return n, dif, ld
	}
}

// insertBit inserts v at position i, returning the replacement node
// and the resulting leaf-count delta.
func insertBit(n *node, i uint64, v uint32) (*node, int64) {
	switch n.kind {
	case kindStatic:
		in := split(n.asStatic(), i)
		return insertBit(in.asNode(), i, v)
	case kindLeaf:
		l := n.asLeaf()
		if uint64(l.size) == leafMaxBits() {
			in := splitLeaf(l)
			baseDelta := int64(in.leaves) - 1
			newN, d := insertBit(in.asNode(), i, v)
			return newN, baseDelta + d
		}
		l.insert(uint32(i), v)
		return n, 0
	default:
		in := n.asInternal()
		in.accesses = 0
		lsize := in.left.length()
		rsize := in.right.length()

		if i < lsize {
			if lsize == leafMaxBits() && rsize < leafMaxBits() &&
				in.left.kind == kindLeaf && in.right.kind == kindLeaf &&
				transferRight(in) {
				return insertBit(n, i, v)
			}
			if float64(lsize+1) > alpha*float64(lsize+rsize+1) &&
				lsize+rsize >= minLeavesToBalance*leafMaxBits() &&
				canBalance(lsize+rsize, 1, 0) {
				newIn, bd := balance(in, i)
				newN, d := insertBit(newIn.asNode(), i, v)
				return newN, bd + d
			}
			newLeft, ld := insertBit(in.left, i, v)
			in.left = newLeft
			in.size++
			in.ones += uint64(v)
			in.leaves = uint64(int64(in.leaves) + ld)
			return n, ld
		}

		if rsize == leafMaxBits() && lsize < leafMaxBits() &&
			in.left.kind == kindLeaf && in.right.kind == kindLeaf &&
			transferLeft(in) {
			return insertBit(n, i, v)
		}
		if float64(rsize+1) > alpha*float64(lsize+rsize+1) &&
			lsize+rsize >= minLeavesToBalance*leafMaxBits() &&
			canBalance(lsize+rsize, 0, 1) {
			newIn, bd := balance(in, i)
			newN, d := insertBit(newIn.asNode(), i, v)
			return newN, bd + d
		}
		newRight, ld := insertBit(in.right, i-lsize, v)
		in.right = newRight
		in.size++
		in.ones += uint64(v)
		in.leaves = uint64(int64(in.leaves) + ld)
		return n, ld
	}
}

// finishDelete applies the tail of hybridBV.c's delete(): collapse to
// a single Leaf once the subtree is small enough, or flatten if it
// has grown too sparse relative to its leaf count.
func finishDelete(n *node, in *internalNode) (*node, int64) {
	if in.size <= newLeafBits() {
		l := mergeLeaves(in)
		return l.asNode(), 1 - int64(in.leaves)
	}
	if float64(in.size) < float64(in.leaves)*float64(newLeafBits())*minFillFactor {
		return flatten(&in.node)
	}
	return n, 0
}

// deleteBit removes the bit at position i, returning the ones delta,
// the replacement node, and the resulting leaf-count delta.
func deleteBit(n *node, i uint64) (int32, *node, int64) {
	switch n.kind {
	case kindStatic:
		in := split(n.asStatic(), i)
		return deleteBit(in.asNode(), i)
	case kindLeaf:
		return n.asLeaf().delete(uint32(i)), n, 0
	default:
		in := n.asInternal()
		in.accesses = 0
		lsize := in.left.length()
		rsize := in.right.length()

		if i < lsize {
			if float64(rsize) > alpha*float64(lsize+rsize-1) &&
				lsize+rsize >= minLeavesToBalance*leafMaxBits() &&
				canBalance(lsize+rsize, -1, 0) {
				newIn, bd := balance(in, i)
				dif, newN, d2 := deleteBit(newIn.asNode(), i)
				return dif, newN, bd + d2
			}
			dif, newLeft, ld := deleteBit(in.left, i)
			if lsize == 1 {
				return dif, in.right, -1
			}
			in.left = newLeft
			in.size--
			in.ones = uint64(int64(in.ones) + int64(dif))
			in.leaves = uint64(int64(in.leaves) + ld)
			finalN, extra := finishDelete(n, in)
			return dif, finalN, ld + extra
		}

		if float64(lsize) > alpha*float64(lsize+rsize-1) &&
			lsize+rsize >= minLeavesToBalance*leafMaxBits() &&
			canBalance(lsize+rsize, 0, -1) {
			newIn, bd := balance(in, i)
			dif, newN, d2 := deleteBit(newIn.asNode(), i)
			return dif, newN, bd + d2
		}
		dif, newRight, ld := deleteBit(in.right, i-lsize)
		if rsize == 1 {
			return dif, in.left, -1
		}
		in.right = newRight
		in.size--
		in.ones = uint64(int64(in.ones) + int64(dif))
		in.leaves = uint64(int64(in.leaves) + ld)
		finalN, extra := finishDelete(n, in)
		return dif, finalN, ld + extra
	}
}
