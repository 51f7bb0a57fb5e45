// Package memory is the in-process store implementation. It mirrors the
// managed document store's contract (atomic per-document writes, full-list
// snapshot pushed to subscribers after every change) and backs the default
// data backend and the test suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"contable/internal/core"
	"contable/internal/store"
)

type subscriber[T any] struct {
	id string
	fn func(T)

	mu      sync.Mutex
	lastSeq uint64
}

// deliver hands the snapshot to the callback unless a newer one was already
// delivered. Sequence numbers are assigned under the store lock, so dropping
// the stale snapshot keeps each subscriber converging on the latest list
// even when writers race.
func (sub *subscriber[T]) deliver(seq uint64, snapshot T) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if seq < sub.lastSeq {
		return
	}
	sub.lastSeq = seq
	sub.fn(snapshot)
}

// Store keeps all records in memory, guarded by a single mutex. Snapshot
// callbacks run outside the lock so a subscriber may issue writes; per
// subscriber they are serialized and never go backwards.
type Store struct {
	mu           sync.Mutex
	seq          uint64
	entries      map[string]core.Entry
	reminders    map[string]core.Reminder
	entrySubs    map[string][]*subscriber[[]core.Entry]
	reminderSubs map[string][]*subscriber[[]core.Reminder]
	now          func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		entries:      map[string]core.Entry{},
		reminders:    map[string]core.Reminder{},
		entrySubs:    map[string][]*subscriber[[]core.Entry]{},
		reminderSubs: map[string][]*subscriber[[]core.Reminder]{},
		now:          time.Now,
	}
}

// SetClock overrides the CreatedAt clock, for tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) CreateEntry(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	s.entries[e.ID] = e
	owner := e.Owner
	s.mu.Unlock()

	s.pushEntries(owner)
	return e.ID, nil
}

func (s *Store) UpdateEntry(_ context.Context, id string, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	old, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	// Full replacement; identity fields are immutable.
	e.ID = old.ID
	e.Owner = old.Owner
	e.CreatedAt = old.CreatedAt
	s.entries[id] = e
	owner := old.Owner
	s.mu.Unlock()

	s.pushEntries(owner)
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.entries, id)
	owner := e.Owner
	s.mu.Unlock()

	s.pushEntries(owner)
	return nil
}

func (s *Store) ListEntries(_ context.Context, owner string) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entrySnapshotLocked(owner), nil
}

func (s *Store) SubscribeEntries(owner string, fn store.EntrySnapshotFunc) store.UnsubscribeFunc {
	s.mu.Lock()
	id := uuid.NewString()
	sub := &subscriber[[]core.Entry]{id: id, fn: fn}
	s.entrySubs[owner] = append(s.entrySubs[owner], sub)
	s.seq++
	seq := s.seq
	initial := s.entrySnapshotLocked(owner)
	s.mu.Unlock()

	sub.deliver(seq, initial)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.entrySubs[owner]
		for i, sub := range subs {
			if sub.id == id {
				s.entrySubs[owner] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) CreateReminder(_ context.Context, r core.Reminder) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	r.ID = uuid.NewString()
	r.CreatedAt = s.now()
	r.Active = true // reminders always start active
	s.reminders[r.ID] = r
	owner := r.Owner
	s.mu.Unlock()

	s.pushReminders(owner)
	return r.ID, nil
}

func (s *Store) UpdateReminder(_ context.Context, id string, patch store.ReminderPatch) error {
	s.mu.Lock()
	r, ok := s.reminders[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if patch.DueDate != nil {
		r.DueDate = *patch.DueDate
	}
	if patch.Active != nil {
		r.Active = *patch.Active
	}
	s.reminders[id] = r
	owner := r.Owner
	s.mu.Unlock()

	s.pushReminders(owner)
	return nil
}

func (s *Store) DeleteReminder(_ context.Context, id string) error {
	s.mu.Lock()
	r, ok := s.reminders[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.reminders, id)
	owner := r.Owner
	s.mu.Unlock()

	s.pushReminders(owner)
	return nil
}

func (s *Store) ListReminders(_ context.Context, owner string) ([]core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminderSnapshotLocked(owner), nil
}

func (s *Store) SubscribeReminders(owner string, fn store.ReminderSnapshotFunc) store.UnsubscribeFunc {
	s.mu.Lock()
	id := uuid.NewString()
	sub := &subscriber[[]core.Reminder]{id: id, fn: fn}
	s.reminderSubs[owner] = append(s.reminderSubs[owner], sub)
	s.seq++
	seq := s.seq
	initial := s.reminderSnapshotLocked(owner)
	s.mu.Unlock()

	sub.deliver(seq, initial)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.reminderSubs[owner]
		for i, sub := range subs {
			if sub.id == id {
				s.reminderSubs[owner] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) Owners(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	for _, e := range s.entries {
		seen[e.Owner] = struct{}{}
	}
	for _, r := range s.reminders {
		seen[r.Owner] = struct{}{}
	}
	owners := make([]string, 0, len(seen))
	for o := range seen {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	return owners, nil
}

func (s *Store) Close() error { return nil }

// entrySnapshotLocked copies the owner's entries, newest date first.
func (s *Store) entrySnapshotLocked(owner string) []core.Entry {
	var out []core.Entry
	for _, e := range s.entries {
		if e.Owner == owner {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[j].Date.Before(out[i].Date.Time)
		}
		return out[j].CreatedAt.Before(out[i].CreatedAt)
	})
	return out
}

// reminderSnapshotLocked copies the owner's reminders, earliest due first.
func (s *Store) reminderSnapshotLocked(owner string) []core.Reminder {
	var out []core.Reminder
	for _, r := range s.reminders {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate.Time) {
			return out[i].DueDate.Before(out[j].DueDate.Time)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) pushEntries(owner string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	snapshot := s.entrySnapshotLocked(owner)
	subs := append([]*subscriber[[]core.Entry](nil), s.entrySubs[owner]...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(seq, snapshot)
	}
}

func (s *Store) pushReminders(owner string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	snapshot := s.reminderSnapshotLocked(owner)
	subs := append([]*subscriber[[]core.Reminder](nil), s.reminderSubs[owner]...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(seq, snapshot)
	}
}
