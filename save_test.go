package hybridbv

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestSaveLoadRoundTripSmall(t *testing.T) {
	bv := New()
	for i := uint64(0); i < 100; i++ {
		v := uint32(0)
		if i%3 == 0 {
			v = 1
		}
		bv.Insert(i, v)
	}
	var buf bytes.Buffer
	if err := bv.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Length() != bv.Length() || loaded.Ones() != bv.Ones() {
		t.Fatalf("length/ones mismatch: got (%d,%d) want (%d,%d)",
			loaded.Length(), loaded.Ones(), bv.Length(), bv.Ones())
	}
	for i := uint64(0); i < bv.Length(); i++ {
		if loaded.Access(i) != bv.Access(i) {
			t.Fatalf("bit %d mismatch", i)
		}
	}
}

func TestSaveLoadRoundTripLargeBecomesStatic(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	const n = 1 << 17
	data := make([]uint64, n/64)
	for i := 0; i < n; i++ {
		if rng.Intn(2) == 1 {
			data[i/64] |= 1 << (i % 64)
		}
	}
	bv := NewFrom(data, n)
	var buf bytes.Buffer
	if err := bv.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.root.kind != kindStatic {
		t.Fatalf("expected loaded root to become Static, got %s", loaded.root.kind)
	}
	for i := uint64(0); i < n; i += 131 {
		if loaded.Access(i) != bv.Access(i) {
			t.Fatalf("bit %d mismatch", i)
		}
	}
}

func TestSaveLoadEmpty(t *testing.T) {
	bv := New()
	var buf bytes.Buffer
	if err := bv.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Length() != 0 {
		t.Fatalf("length = %d, want 0", loaded.Length())
	}
}
