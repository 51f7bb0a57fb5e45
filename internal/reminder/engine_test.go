package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"contable/internal/core"
	"contable/internal/store"
)

// recordingWriter captures patches and applies them to its reminder map so
// successive passes see the updated state.
type recordingWriter struct {
	mu        sync.Mutex
	reminders map[string]*core.Reminder
	writes    int
	failIDs   map[string]bool
}

func newRecordingWriter(reminders ...*core.Reminder) *recordingWriter {
	w := &recordingWriter{reminders: map[string]*core.Reminder{}, failIDs: map[string]bool{}}
	for _, r := range reminders {
		w.reminders[r.ID] = r
	}
	return w
}

func (w *recordingWriter) UpdateReminder(_ context.Context, id string, patch store.ReminderPatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failIDs[id] {
		return store.ErrUnavailable
	}
	w.writes++
	r, ok := w.reminders[id]
	if !ok {
		return store.ErrNotFound
	}
	if patch.DueDate != nil {
		r.DueDate = *patch.DueDate
	}
	if patch.Active != nil {
		r.Active = *patch.Active
	}
	return nil
}

func (w *recordingWriter) list() []core.Reminder {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []core.Reminder
	for _, r := range w.reminders {
		out = append(out, *r)
	}
	return out
}

func (w *recordingWriter) writeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

var today = time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)

func reminderDueDaysAgo(id string, daysAgo int, period core.Period) *core.Reminder {
	return &core.Reminder{
		ID:       id,
		Owner:    "u1",
		Title:    "Pago",
		DueDate:  core.DateOf(today).AddDays(-daysAgo),
		Period:   period,
		Priority: core.PriorityMedium,
		Active:   true,
	}
}

func TestAdvance(t *testing.T) {
	start := core.NewDate(2025, time.January, 15)

	tests := []struct {
		period core.Period
		want   string
	}{
		{period: core.Weekly, want: "2025-01-22"},
		{period: core.Monthly, want: "2025-02-15"},
		{period: core.Quarterly, want: "2025-04-15"},
		{period: core.Yearly, want: "2026-01-15"},
		{period: core.Once, want: "2025-01-15"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			if got := Advance(start, tt.period).ISO(); got != tt.want {
				t.Errorf("Advance(%s) = %s, want %s", tt.period, got, tt.want)
			}
		})
	}
}

func TestRunPassAdvancesOnePeriodOnly(t *testing.T) {
	// Overdue by 10 days: a weekly reminder advances 7 days per pass, so it
	// takes two passes to reach the future. That staging is by contract.
	r := reminderDueDaysAgo("r1", 10, core.Weekly)
	w := newRecordingWriter(r)

	res := RunPass(context.Background(), today, w.list(), w)
	if res.Advanced != 1 || res.Deactivated != 0 {
		t.Fatalf("first pass result = %+v, want exactly one advance", res)
	}
	if got, want := r.DueDate.ISO(), core.DateOf(today).AddDays(-3).ISO(); got != want {
		t.Fatalf("after first pass due = %s, want %s (still in the past)", got, want)
	}
	if !r.Active {
		t.Fatal("recurring reminder must stay active")
	}

	res = RunPass(context.Background(), today, w.list(), w)
	if res.Advanced != 1 {
		t.Fatalf("second pass result = %+v, want one more advance", res)
	}
	if got, want := r.DueDate.ISO(), core.DateOf(today).AddDays(4).ISO(); got != want {
		t.Fatalf("after second pass due = %s, want %s", got, want)
	}

	// Now up to date: the pass is a fixed point and issues no writes.
	before := w.writeCount()
	res = RunPass(context.Background(), today, w.list(), w)
	if w.writeCount() != before {
		t.Error("pass over up-to-date reminders must issue no writes")
	}
	if res.Advanced != 0 || res.Deactivated != 0 {
		t.Errorf("fixed-point pass result = %+v", res)
	}
}

func TestRunPassOnceDeactivates(t *testing.T) {
	r := reminderDueDaysAgo("r1", 1, core.Once)
	originalDue := r.DueDate.ISO()
	w := newRecordingWriter(r)

	res := RunPass(context.Background(), today, w.list(), w)
	if res.Deactivated != 1 || res.Advanced != 0 {
		t.Fatalf("result = %+v, want one deactivation", res)
	}
	if r.Active {
		t.Error("one-shot reminder must be deactivated")
	}
	if r.DueDate.ISO() != originalDue {
		t.Errorf("due date changed from %s to %s; must be kept", originalDue, r.DueDate.ISO())
	}

	// Inactive reminders are never touched again.
	before := w.writeCount()
	RunPass(context.Background(), today, w.list(), w)
	if w.writeCount() != before {
		t.Error("inactive reminder was written on a later pass")
	}
}

func TestRunPassLeavesFutureAndTodayAlone(t *testing.T) {
	dueToday := reminderDueDaysAgo("r1", 0, core.Monthly)
	future := reminderDueDaysAgo("r2", -5, core.Monthly)
	w := newRecordingWriter(dueToday, future)

	res := RunPass(context.Background(), today, w.list(), w)
	if w.writeCount() != 0 {
		t.Error("due-today and future reminders must not be written")
	}
	if res.DueToday != 1 {
		t.Errorf("DueToday = %d, want 1", res.DueToday)
	}
}

func TestRunPassCountsDueTodayAfterTransitions(t *testing.T) {
	// Due yesterday, weekly: advancing would land it 6 days ahead, not
	// today. A monthly reminder due exactly one month ago lands on today.
	monthAgo := &core.Reminder{
		ID:       "r1",
		Owner:    "u1",
		Title:    "Alquiler",
		DueDate:  core.DateOf(today).AddMonths(-1),
		Period:   core.Monthly,
		Priority: core.PriorityHigh,
		Active:   true,
	}
	w := newRecordingWriter(monthAgo)

	res := RunPass(context.Background(), today, w.list(), w)
	if res.Advanced != 1 {
		t.Fatalf("result = %+v, want one advance", res)
	}
	if res.DueToday != 1 {
		t.Errorf("DueToday = %d, want 1 (count uses updated due dates)", res.DueToday)
	}
}

func TestRunPassPartialFailure(t *testing.T) {
	bad := reminderDueDaysAgo("bad", 3, core.Weekly)
	good := reminderDueDaysAgo("good", 3, core.Weekly)
	w := newRecordingWriter(bad, good)
	w.failIDs["bad"] = true

	res := RunPass(context.Background(), today, []core.Reminder{*bad, *good}, w)
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
	if res.Advanced != 1 {
		t.Errorf("Advanced = %d, want 1 (unaffected reminder still processed)", res.Advanced)
	}
}

func TestUpcoming(t *testing.T) {
	inWindow := reminderDueDaysAgo("r1", -3, core.Monthly)
	todayDue := reminderDueDaysAgo("r2", 0, core.Monthly)
	past := reminderDueDaysAgo("r3", 2, core.Monthly)
	farOut := reminderDueDaysAgo("r4", -30, core.Monthly)
	inactive := reminderDueDaysAgo("r5", -1, core.Monthly)
	inactive.Active = false

	got := Upcoming([]core.Reminder{*inWindow, *todayDue, *past, *farOut, *inactive}, 7, today)
	if len(got) != 2 {
		t.Fatalf("Upcoming kept %d reminders, want 2", len(got))
	}
	ids := map[string]bool{}
	for _, r := range got {
		ids[r.ID] = true
	}
	if !ids["r1"] || !ids["r2"] {
		t.Errorf("Upcoming kept %v, want r1 and r2", ids)
	}
}
