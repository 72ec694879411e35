package hybridbv

import (
	"math/rand"
	"testing"
)

func TestAccessTrackerRecordsSelectPositions(t *testing.T) {
	bv := New()
	rng := rand.New(rand.NewSource(42))
	for i := uint64(0); i < 500; i++ {
		bv.Insert(i, uint32(rng.Intn(2)))
	}

	tr := NewAccessTracker()
	if !tr.IsEmpty() {
		t.Fatalf("fresh tracker should be empty")
	}

	var want []uint64
	for j := uint64(1); j <= 5 && j <= bv.Ones(); j++ {
		p := tr.Select1(bv, j)
		if p < 0 {
			t.Fatalf("Select1(%d) returned -1 unexpectedly", j)
		}
		want = append(want, uint64(p))
	}
	if tr.IsEmpty() && len(want) > 0 {
		t.Fatalf("tracker should no longer be empty after recording positions")
	}

	snap := tr.Snapshot()
	other := NewAccessTracker()
	other.Record(want...)
	if !other.hot.Equals(snap) {
		t.Fatalf("snapshot does not match the recorded positions")
	}
}

func TestAccessTrackerEquals(t *testing.T) {
	a := NewAccessTracker()
	b := NewAccessTracker()
	a.Record(1, 2, 3)
	b.Record(3, 2, 1)
	if !a.Equals(b) {
		t.Fatalf("trackers recording the same positions in different order should be equal")
	}
	b.Record(4)
	if a.Equals(b) {
		t.Fatalf("trackers with different positions should not be equal")
	}
}

func TestAccessTrackerWithCapacity(t *testing.T) {
	tr := NewAccessTrackerWithCapacity(64)
	if !tr.IsEmpty() {
		t.Fatalf("pre-sized tracker should start empty")
	}
	tr.Record(10, 20, 30)
	if tr.IsEmpty() {
		t.Fatalf("tracker should be non-empty after Record")
	}
}
