// Package reminder implements the rollover engine that keeps recurring
// payment reminders scheduled, and the once-per-day notification gate that
// deduplicates due alerts across repeated evaluation passes.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"contable/internal/core"
	"contable/internal/store"
)

// maxConcurrentWrites bounds the parallel store writes of one pass.
const maxConcurrentWrites = 8

// Advance returns the due date exactly one period later: 7 days, 1 month,
// 3 months or 12 months, added to the current due date, not to today. A
// reminder overdue by several periods therefore advances one period per
// pass and is re-flagged on the next snapshot until it catches up; this
// staged catch-up is intentional and must not be collapsed into a single
// fast-forward. One-shot reminders never advance.
func Advance(d core.Date, p core.Period) core.Date {
	switch p {
	case core.Weekly:
		return d.AddDays(7)
	case core.Monthly:
		return d.AddMonths(1)
	case core.Quarterly:
		return d.AddMonths(3)
	case core.Yearly:
		return d.AddMonths(12)
	case core.Once:
		return d
	default:
		return d
	}
}

// Transition describes what one pass decided for a single reminder.
type Transition struct {
	ID         string
	Deactivate bool
	NewDueDate core.Date // meaningful only when !Deactivate
}

// PassResult summarizes one engine pass.
type PassResult struct {
	DueToday    int
	Advanced    int
	Deactivated int
	Failed      int
}

// RunPass evaluates one snapshot of an owner's reminders against now.
//
// Overdue active reminders (due date strictly before today, UTC day
// comparison) transition: one-shot reminders are deactivated with their due
// date untouched, recurring reminders advance one period. Every transition
// is persisted through w before the due-today count is taken; independent
// transitions are written concurrently and the pass waits for all of them.
// A failed write is logged and counted, the other reminders still get
// evaluated. Re-running the pass against already-updated data issues no
// writes once every due date is at or after today.
func RunPass(ctx context.Context, now time.Time, reminders []core.Reminder, w store.ReminderWriter) PassResult {
	updated := make([]core.Reminder, len(reminders))
	copy(updated, reminders)

	var transitions []Transition
	index := make(map[string]int, len(reminders))
	for i, r := range updated {
		index[r.ID] = i
		if !r.Active {
			continue
		}
		if !core.IsBeforeDayUTC(r.DueDate.Time, now) {
			continue
		}
		if r.Period == core.Once {
			transitions = append(transitions, Transition{ID: r.ID, Deactivate: true})
			continue
		}
		transitions = append(transitions, Transition{ID: r.ID, NewDueDate: Advance(r.DueDate, r.Period)})
	}

	var res PassResult
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentWrites)

	for _, tr := range transitions {
		g.Go(func() error {
			var patch store.ReminderPatch
			if tr.Deactivate {
				inactive := false
				patch.Active = &inactive
			} else {
				due := tr.NewDueDate
				patch.DueDate = &due
			}

			if err := w.UpdateReminder(ctx, tr.ID, patch); err != nil {
				slog.ErrorContext(ctx, "Failed to persist reminder transition",
					"id", tr.ID,
					"deactivate", tr.Deactivate,
					"error", err)
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return nil // keep processing the other reminders
			}

			mu.Lock()
			i := index[tr.ID]
			if tr.Deactivate {
				updated[i].Active = false
				res.Deactivated++
			} else {
				updated[i].DueDate = tr.NewDueDate
				res.Advanced++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Due-today count uses the post-transition list.
	for _, r := range updated {
		if r.Active && core.IsSameDayUTC(r.DueDate.Time, now) {
			res.DueToday++
		}
	}

	if len(transitions) > 0 {
		slog.InfoContext(ctx, "Rollover pass complete",
			"evaluated", len(reminders),
			"advanced", res.Advanced,
			"deactivated", res.Deactivated,
			"failed", res.Failed,
			"due_today", res.DueToday)
	}

	return res
}

// Upcoming returns the active reminders due within [today, today+days].
func Upcoming(reminders []core.Reminder, days int, now time.Time) []core.Reminder {
	limit := core.DateOnlyUTC(now).AddDate(0, 0, days)
	var out []core.Reminder
	for _, r := range reminders {
		if !r.Active {
			continue
		}
		if core.IsBeforeDayUTC(r.DueDate.Time, now) {
			continue
		}
		if core.IsBeforeDayUTC(limit, r.DueDate.Time) {
			continue
		}
		out = append(out, r)
	}
	return out
}
