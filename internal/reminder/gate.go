package reminder

// Gate is the single-fire latch that keeps repeated evaluation passes from
// producing an alert storm. It fires when the due-today count becomes
// non-zero and stays quiet until the count drops back to zero, which
// re-arms it, including for a later due set on the same day.
//
// A Gate is session-scoped state: create one per subscription and discard
// it when the session ends. It is not safe for concurrent use; passes for
// one session are serialized.
type Gate struct {
	fired bool
}

// ShouldFire consumes a pass's due-today count and reports whether the
// alert must fire now.
func (g *Gate) ShouldFire(dueCount int) bool {
	if dueCount == 0 {
		g.fired = false
		return false
	}
	if g.fired {
		return false
	}
	g.fired = true
	return true
}
