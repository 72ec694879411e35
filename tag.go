package hybridbv

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// tag holds an optional diagnostic label for a Bitvector, normalized
// to NFC the same way the teacher normalizes string keys — so two
// tags differing only in combining-character representation compare
// and print identically.
type tag struct {
	set   bool
	value string
}

// SetTag attaches a human-readable label to bv, normalized to Unicode
// NFC, surfaced by String() and in out-of-bounds panic messages so
// multiple bitvectors are distinguishable in logs.
func (bv *Bitvector) SetTag(label string) {
	bv.label = tag{set: true, value: norm.NFC.String(label)}
}

// Tag returns bv's label and whether one has been set.
func (bv *Bitvector) Tag() (string, bool) {
	return bv.label.value, bv.label.set
}

// String implements fmt.Stringer, including the tag when present.
func (bv *Bitvector) String() string {
	if bv.label.set {
		return fmt.Sprintf("Bitvector(%s){length=%d, ones=%d}", bv.label.value, bv.Length(), bv.Ones())
	}
	return fmt.Sprintf("Bitvector{length=%d, ones=%d}", bv.Length(), bv.Ones())
}
