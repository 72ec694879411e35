package hybridbv

import (
	set3 "github.com/TomTonic/Set3"
)

// AccessTracker records bit positions returned by Select1/Select0 calls
// routed through it, building a "hot set" of positions the workload
// cares about — a natural extension of a structure whose whole
// design already adapts its internal layout to observed access
// patterns, applied here to surface that adaptation to callers that
// want to prefetch or pin the same positions.
type AccessTracker struct {
	hot *set3.Set3[uint64]
}

// NewAccessTracker returns an empty tracker.
func NewAccessTracker() *AccessTracker {
	return &AccessTracker{hot: set3.Empty[uint64]()}
}

// NewAccessTrackerWithCapacity returns an empty tracker pre-sized for
// roughly n expected distinct positions.
func NewAccessTrackerWithCapacity(n int) *AccessTracker {
	return &AccessTracker{hot: set3.EmptyWithCapacity[uint64](n)}
}

// Select1 calls bv.Select1(j) and, if it found a position, records it
// before returning.
func (t *AccessTracker) Select1(bv *Bitvector, j uint64) int64 {
	p := bv.Select1(j)
	if p >= 0 {
		t.hot.Add(uint64(p))
	}
	return p
}

// Select0 calls bv.Select0(j) and, if it found a position, records it
// before returning.
func (t *AccessTracker) Select0(bv *Bitvector, j uint64) int64 {
	p := bv.Select0(j)
	if p >= 0 {
		t.hot.Add(uint64(p))
	}
	return p
}

// Record adds positions directly, for callers that learn of hot
// positions some other way (e.g. from Next1/Next0 calls).
func (t *AccessTracker) Record(positions ...uint64) {
	other := set3.EmptyWithCapacity[uint64](len(positions))
	for _, p := range positions {
		other.Add(p)
	}
	t.hot.AddAll(other)
}

// IsEmpty reports whether no positions have been recorded yet.
func (t *AccessTracker) IsEmpty() bool { return t.hot.IsEmpty() }

// Snapshot returns an independent copy of the current hot set, safe
// for the caller to mutate or hand to another goroutine.
func (t *AccessTracker) Snapshot() *set3.Set3[uint64] {
	return t.hot.Clone()
}

// Equals reports whether two trackers have recorded exactly the same
// set of positions.
func (t *AccessTracker) Equals(other *AccessTracker) bool {
	return t.hot.Equals(other.hot)
}
