package ids

import "testing"

func TestUUIDGeneratorProducesDistinctValidIDs(t *testing.T) {
	gen := UUID{}
	a, b := gen.NewID(), gen.NewID()
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
	if !Valid(a) || !Valid(b) {
		t.Fatalf("expected valid uuids, got %q and %q", a, b)
	}
}

func TestSequenceReplaysThenFallsBack(t *testing.T) {
	seq := NewSequence("r1", "r2")
	if got := seq.NewID(); got != "r1" {
		t.Fatalf("expected r1, got %q", got)
	}
	if got := seq.NewID(); got != "r2" {
		t.Fatalf("expected r2, got %q", got)
	}
	if got := seq.NewID(); !Valid(got) {
		t.Fatalf("expected uuid fallback, got %q", got)
	}
}
