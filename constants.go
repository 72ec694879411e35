package hybridbv

// wordBits is the machine word width (w in spec.md's notation) every
// component is built around.
const wordBits = 64

// Leaf tunables (leafBV.c: MaxBlockWords, Gamma).
const (
	leafCapacityWords = 128  // B: words allocated per leaf (M = leafCapacityWords*wordBits bits)
	leafFillFraction  = 0.75 // gamma: fraction full a freshly split/created leaf targets
)

// newLeafWords (N in spec.md) is the word size a freshly created leaf
// targets; leafCapacityWords (B) is the hard per-leaf cap (M bits).
func newLeafWords() int { return int(leafCapacityWords * leafFillFraction) }

func newLeafBits() uint64 { return uint64(newLeafWords() * wordBits) }
func leafMaxBits() uint64 { return uint64(leafCapacityWords * wordBits) }

// Theta (θ) is the sole runtime-adjustable tunable per spec.md §6: the
// accesses/length ratio that triggers an internal node to flatten.
// It is a package-level var, mirroring the C original's extern float
// Theta, rather than a constant, specifically so callers can tune it.
var Theta = 0.01

// Remaining tunables are compile-time constants per spec.md §6.
const (
	alpha              = 0.65  // balance factor, in (3/5, 1)
	epsilon            = 0.10  // flatten size cap: only flatten subtrees <= epsilon*n
	transferFloor      = 0.125 // tau: fraction of M that justifies a leaf-to-leaf transfer
	minFillFactor      = 0.3   // mu: minimum fill before a delete-driven flatten
	minLeavesToBalance = 5     // L_min = minLeavesToBalance * M, in bits
)

// staticBlockWords (K in spec.md §4.3) is the word span of one rank
// block inside a static block's two-level index: 4 words = 256 bits.
const staticBlockWords = 4

// superblockBits is the bit span indexed by one entry of the static
// block's superblock prefix-sum array S.
const superblockBits = 1 << 16
