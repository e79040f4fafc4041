package pdfdoc

import "testing"

func TestRefKey_GenerationZeroOmitted(t *testing.T) {
	got := Ref{Num: 12, Gen: 0}.Key()
	if got != "12R" {
		t.Errorf("expected %q, got %q", "12R", got)
	}
}

func TestRefKey_NonZeroGeneration(t *testing.T) {
	got := Ref{Num: 12, Gen: 3}.Key()
	if got != "12R3" {
		t.Errorf("expected %q, got %q", "12R3", got)
	}
}

func TestRefKey_Zero(t *testing.T) {
	got := Ref{}.Key()
	if got != "0R" {
		t.Errorf("expected %q, got %q", "0R", got)
	}
}

func TestRefKey_Distinct(t *testing.T) {
	// "1R2" must not collide with "12R".
	a := Ref{Num: 1, Gen: 2}.Key()
	b := Ref{Num: 12, Gen: 0}.Key()
	if a == b {
		t.Errorf("keys collide: %q", a)
	}
}
