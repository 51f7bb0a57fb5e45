package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"contable/internal/core"
	"contable/internal/store"
	"contable/internal/store/memory"
)

var today = time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []int
}

func (n *recordingNotifier) NotifyDue(_ context.Context, _ string, dueCount int, _ core.Date) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, dueCount)
}

func (n *recordingNotifier) callCounts() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.calls...)
}

// eventually polls cond until it holds or the deadline passes. The session
// loop is asynchronous, so tests wait for it to settle.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func seedReminder(t *testing.T, s *memory.Store, title string, due core.Date, period core.Period) string {
	t.Helper()
	id, err := s.CreateReminder(context.Background(), core.Reminder{
		Owner:    "u1",
		Title:    title,
		DueDate:  due,
		Period:   period,
		Priority: core.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	return id
}

func TestSessionCatchesUpOverdueReminders(t *testing.T) {
	st := memory.New()
	n := &recordingNotifier{}

	// Due 10 days ago, weekly: needs two staged advances. The store's
	// snapshot push after each write feeds the next pass automatically.
	seedReminder(t, st, "Pago proveedor", core.DateOf(today).AddDays(-10), core.Weekly)

	sess := Open("u1", st, n, WithClock(func() time.Time { return today }))
	defer sess.Close()

	wantDue := core.DateOf(today).AddDays(4).ISO()
	eventually(t, func() bool {
		rs, _ := st.ListReminders(context.Background(), "u1")
		return len(rs) == 1 && rs[0].DueDate.ISO() == wantDue && rs[0].Active
	}, "overdue weekly reminder did not catch up to "+wantDue)
}

func TestSessionBadgeAndSingleAlert(t *testing.T) {
	st := memory.New()
	n := &recordingNotifier{}

	// Due exactly one month ago: one advance lands it on today.
	seedReminder(t, st, "Alquiler", core.DateOf(today).AddMonths(-1), core.Monthly)
	seedReminder(t, st, "Luz", core.DateOf(today), core.Monthly)

	sess := Open("u1", st, n, WithClock(func() time.Time { return today }))
	defer sess.Close()

	eventually(t, func() bool { return sess.BadgeCount() == 2 }, "badge never reached 2")

	// The settled loop has seen the due set at least twice (the post-write
	// snapshot re-enters it); the gate must have fired exactly once.
	eventually(t, func() bool { return len(n.callCounts()) >= 1 }, "no alert fired")
	time.Sleep(50 * time.Millisecond)
	if calls := n.callCounts(); len(calls) != 1 || calls[0] != 2 {
		t.Errorf("alert calls = %v, want exactly one with count 2", calls)
	}
}

func TestSessionNoAlertWhenNothingDue(t *testing.T) {
	st := memory.New()
	n := &recordingNotifier{}

	seedReminder(t, st, "Impuesto anual", core.DateOf(today).AddDays(20), core.Yearly)

	sess := Open("u1", st, n, WithClock(func() time.Time { return today }))
	defer sess.Close()

	eventually(t, func() bool { return sess.BadgeCount() == 0 }, "badge not settled")
	time.Sleep(50 * time.Millisecond)
	if calls := n.callCounts(); len(calls) != 0 {
		t.Errorf("alert fired with nothing due: %v", calls)
	}
}

func TestSessionOnceDeactivatesAndClearsBadge(t *testing.T) {
	st := memory.New()
	n := &recordingNotifier{}

	id := seedReminder(t, st, "Licencia", core.DateOf(today).AddDays(-2), core.Once)

	sess := Open("u1", st, n, WithClock(func() time.Time { return today }))
	defer sess.Close()

	eventually(t, func() bool {
		rs, _ := st.ListReminders(context.Background(), "u1")
		return len(rs) == 1 && !rs[0].Active
	}, "one-shot reminder not deactivated")

	if sess.BadgeCount() != 0 {
		t.Errorf("badge = %d, want 0 for a deactivated reminder", sess.BadgeCount())
	}

	// A new due-today reminder re-arms the gate through the zero count.
	seedReminder(t, st, "SUNAT", core.DateOf(today), core.Monthly)
	eventually(t, func() bool { return sess.BadgeCount() == 1 }, "badge not updated for new reminder")

	_ = id
}

func TestSessionUpcomingWindow(t *testing.T) {
	st := memory.New()

	seedReminder(t, st, "Dentro", core.DateOf(today).AddDays(3), core.Monthly)
	seedReminder(t, st, "Fuera", core.DateOf(today).AddDays(30), core.Monthly)

	sess := Open("u1", st, nil, WithClock(func() time.Time { return today }), WithUpcomingWindow(7))
	defer sess.Close()

	eventually(t, func() bool {
		up := sess.Upcoming()
		return len(up) == 1 && up[0].Title == "Dentro"
	}, "upcoming window not applied")
}

func TestManagerReusesAndDropsSessions(t *testing.T) {
	st := memory.New()
	m := NewManager(st, nil, WithClock(func() time.Time { return today }))
	defer m.Close()

	a := m.Get("u1")
	if m.Get("u1") != a {
		t.Error("Get must reuse the open session")
	}
	b := m.Get("u2")
	if a == b {
		t.Error("distinct owners must get distinct sessions")
	}

	m.Drop("u1")
	if m.Get("u1") == a {
		t.Error("Drop must close the session; Get reopens a new one")
	}
}

var _ store.ReminderStore = (*memory.Store)(nil)
