// Package session ties one owner's reminder stream to the rollover engine.
// Each session subscribes to the owner's reminders, runs an engine pass on
// every snapshot and keeps the due-today badge count current. A single
// goroutine serializes the passes; snapshots arriving while a pass is in
// flight collapse into the latest one.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"contable/internal/core"
	"contable/internal/reminder"
	"contable/internal/store"
)

// Notifier receives the due alert the first time an owner's due-today count
// becomes non-zero. See reminder.Gate for the latch semantics.
type Notifier interface {
	NotifyDue(ctx context.Context, owner string, dueCount int, day core.Date)
}

// NopNotifier discards alerts. Used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyDue(context.Context, string, int, core.Date) {}

// Session is the live reminder pipeline for one owner.
type Session struct {
	owner    string
	stores   store.ReminderStore
	notifier Notifier
	now      func() time.Time

	mu       sync.Mutex
	badge    int
	upcoming []core.Reminder
	gate     reminder.Gate

	snapshots chan []core.Reminder
	unsub     store.UnsubscribeFunc
	done      chan struct{}
	closeOnce sync.Once

	upcomingWindowDays int
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the session clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithUpcomingWindow sets the window, in days, of the upcoming list.
func WithUpcomingWindow(days int) Option {
	return func(s *Session) { s.upcomingWindowDays = days }
}

// Open subscribes to the owner's reminders and starts the pass loop. The
// initial snapshot is processed like any other, so an owner whose reminders
// are already due gets the rollover and the alert right away.
func Open(owner string, st store.ReminderStore, n Notifier, opts ...Option) *Session {
	if n == nil {
		n = NopNotifier{}
	}
	s := &Session{
		owner:              owner,
		stores:             st,
		notifier:           n,
		now:                time.Now,
		snapshots:          make(chan []core.Reminder, 1),
		done:               make(chan struct{}),
		upcomingWindowDays: 7,
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.loop()

	s.unsub = st.SubscribeReminders(owner, s.enqueue)

	slog.Info("Session opened", "owner", owner)
	return s
}

// enqueue hands a snapshot to the loop, replacing any pending one. Only the
// newest snapshot matters: a pass over it subsumes the skipped ones.
func (s *Session) enqueue(reminders []core.Reminder) {
	for {
		select {
		case s.snapshots <- reminders:
			return
		case <-s.done:
			return
		default:
		}
		select {
		case <-s.snapshots: // drop the stale pending snapshot
		default:
		}
	}
}

func (s *Session) loop() {
	ctx := context.Background()
	for {
		select {
		case <-s.done:
			return
		case snapshot := <-s.snapshots:
			s.process(ctx, snapshot)
		}
	}
}

// process runs one engine pass over the snapshot and updates the badge. The
// store pushes a fresh snapshot after every write the pass issues, so an
// overdue reminder keeps re-entering the loop until its due date catches up
// to today; once it does, the pass stops writing and the loop settles.
func (s *Session) process(ctx context.Context, snapshot []core.Reminder) {
	now := s.now()
	res := reminder.RunPass(ctx, now, snapshot, s.stores)

	s.mu.Lock()
	s.badge = res.DueToday
	s.upcoming = reminder.Upcoming(snapshot, s.upcomingWindowDays, now)
	fire := s.gate.ShouldFire(res.DueToday)
	s.mu.Unlock()

	if fire {
		s.notifier.NotifyDue(ctx, s.owner, res.DueToday, core.DateOf(now))
	}
}

// BadgeCount returns the number of active reminders due today, as of the
// last processed snapshot.
func (s *Session) BadgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.badge
}

// Upcoming returns the active reminders due within the session's window, as
// of the last processed snapshot.
func (s *Session) Upcoming() []core.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Reminder, len(s.upcoming))
	copy(out, s.upcoming)
	return out
}

// Close stops the subscription and the pass loop. Safe to call twice.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.unsub != nil {
			s.unsub()
		}
		close(s.done)
		slog.Info("Session closed", "owner", s.owner)
	})
}

// Manager opens one session per owner on demand.
type Manager struct {
	stores   store.ReminderStore
	notifier Notifier
	opts     []Option

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(st store.ReminderStore, n Notifier, opts ...Option) *Manager {
	return &Manager{
		stores:   st,
		notifier: n,
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

// Get returns the owner's session, opening it on first use.
func (m *Manager) Get(owner string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[owner]; ok {
		return s
	}
	s := Open(owner, m.stores, m.notifier, m.opts...)
	m.sessions[owner] = s
	return s
}

// Drop closes and forgets the owner's session, if any.
func (m *Manager) Drop(owner string) {
	m.mu.Lock()
	s, ok := m.sessions[owner]
	delete(m.sessions, owner)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Close shuts down every open session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
