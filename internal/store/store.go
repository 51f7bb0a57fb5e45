// Package store defines the persistence contracts the core consumes. The
// backing implementation is a document-style store that pushes the full
// current list of an owner's records on every change, including the initial
// state, exactly like the managed store the app runs against in production.
package store

import (
	"context"
	"errors"

	"contable/internal/core"
)

var (
	// ErrUnavailable signals a transient store failure. Callers degrade:
	// reads fall back to an empty list, the rollover engine records the
	// failed reminder and keeps going.
	ErrUnavailable = errors.New("store unavailable")

	ErrNotFound = errors.New("record not found")
)

// ReminderPatch is a partial update to a reminder document. Nil fields are
// left untouched. Each patch is applied as a single atomic document write.
type ReminderPatch struct {
	DueDate *core.Date
	Active  *bool
}

type (
	EntrySnapshotFunc    func(entries []core.Entry)
	ReminderSnapshotFunc func(reminders []core.Reminder)

	// UnsubscribeFunc stops a subscription. After it returns no further
	// snapshots are delivered.
	UnsubscribeFunc func()
)

// EntryStore persists ledger entries for their owners.
type EntryStore interface {
	CreateEntry(ctx context.Context, e core.Entry) (id string, err error)
	// UpdateEntry replaces the entry whole; there are no partial
	// accounting adjustments.
	UpdateEntry(ctx context.Context, id string, e core.Entry) error
	DeleteEntry(ctx context.Context, id string) error
	// ListEntries returns the owner's entries ordered by date descending.
	ListEntries(ctx context.Context, owner string) ([]core.Entry, error)
	// SubscribeEntries delivers the owner's full entry list on every
	// change, starting with the current state.
	SubscribeEntries(owner string, fn EntrySnapshotFunc) UnsubscribeFunc
}

// ReminderWriter is the narrow surface the rollover engine needs.
type ReminderWriter interface {
	UpdateReminder(ctx context.Context, id string, patch ReminderPatch) error
}

// ReminderStore persists reminders for their owners.
type ReminderStore interface {
	ReminderWriter
	CreateReminder(ctx context.Context, r core.Reminder) (id string, err error)
	DeleteReminder(ctx context.Context, id string) error
	// ListReminders returns the owner's reminders ordered by due date
	// ascending.
	ListReminders(ctx context.Context, owner string) ([]core.Reminder, error)
	// SubscribeReminders delivers the owner's full reminder list on every
	// change, starting with the current state.
	SubscribeReminders(owner string, fn ReminderSnapshotFunc) UnsubscribeFunc
}

// Store is the full persistence surface.
type Store interface {
	EntryStore
	ReminderStore
	// Owners lists every owner with at least one record, for batch
	// rollover runs.
	Owners(ctx context.Context) ([]string, error)
	Close() error
}
