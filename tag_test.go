package hybridbv

import "testing"

func TestTagSetAndGet(t *testing.T) {
	bv := New()
	if _, ok := bv.Tag(); ok {
		t.Fatalf("fresh Bitvector should have no tag")
	}
	bv.SetTag("index-shard-7")
	got, ok := bv.Tag()
	if !ok || got != "index-shard-7" {
		t.Fatalf("Tag() = (%q, %v), want (%q, true)", got, ok, "index-shard-7")
	}
}

func TestTagNormalizesToNFC(t *testing.T) {
	bv := New()
	// "e" + combining acute accent U+0301 (NFD) should normalize to
	// the single precomposed U+00E9 code point (NFC).
	decomposed := "café"
	precomposed := "café"
	bv.SetTag(decomposed)
	got, _ := bv.Tag()
	if got != precomposed {
		t.Fatalf("Tag() = %q, want NFC-normalized %q", got, precomposed)
	}
}

func TestStringIncludesTag(t *testing.T) {
	bv := New()
	bv.Insert(0, 1)
	bv.SetTag("shard")
	s := bv.String()
	if s == "" {
		t.Fatalf("String() returned empty string")
	}
	untagged := New()
	untagged.Insert(0, 1)
	if s == untagged.String() {
		t.Fatalf("tagged and untagged String() should differ")
	}
}
