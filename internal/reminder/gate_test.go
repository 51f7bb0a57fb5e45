package reminder

import "testing"

func TestGateFiresOncePerDueSet(t *testing.T) {
	var g Gate

	if !g.ShouldFire(2) {
		t.Fatal("first non-zero count must fire")
	}
	if g.ShouldFire(2) {
		t.Error("unchanged count on the next pass must not fire again")
	}
	if g.ShouldFire(3) {
		t.Error("still non-zero count must not fire again")
	}
}

func TestGateRearmsWhenDueSetEmpties(t *testing.T) {
	var g Gate

	if !g.ShouldFire(2) {
		t.Fatal("first non-zero count must fire")
	}
	if g.ShouldFire(0) {
		t.Error("zero count must not fire")
	}
	// The due set emptied and refilled within the same day, e.g. a new
	// reminder due today was added: fire again.
	if !g.ShouldFire(1) {
		t.Error("count rising from zero must fire again")
	}
}

func TestGateStaysQuietOnZero(t *testing.T) {
	var g Gate
	for i := 0; i < 3; i++ {
		if g.ShouldFire(0) {
			t.Fatal("zero count fired")
		}
	}
}
