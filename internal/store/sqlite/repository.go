// Package sqlite persists the ledger in a local SQLite database while
// honoring the same push-snapshot contract as the managed document store:
// after every committed write the owner's full list is re-read and delivered
// to subscribers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"contable/internal/core"
	"contable/internal/store"
)

type entrySub struct {
	id string
	fn store.EntrySnapshotFunc
}

type reminderSub struct {
	id string
	fn store.ReminderSnapshotFunc
}

// Repository implements store.Store on SQLite.
type Repository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time

	mu           sync.Mutex
	entrySubs    map[string][]entrySub
	reminderSubs map[string][]reminderSub
}

var _ store.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:           db,
		queries:      New(db),
		now:          time.Now,
		entrySubs:    map[string][]entrySub{},
		reminderSubs: map[string][]reminderSub{},
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) CreateEntry(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	err := r.queries.CreateEntry(ctx, CreateEntryParams{
		ID:          id,
		Owner:       e.Owner,
		Kind:        string(e.Kind),
		Concept:     e.Concept,
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		EntryDate:   e.Date.ISO(),
		CreatedAt:   r.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}

	r.pushEntries(ctx, e.Owner)
	return id, nil
}

func (r *Repository) UpdateEntry(ctx context.Context, id string, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	// The owner column is immutable, so look it up rather than trust the
	// replacement record.
	current, err := r.queries.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}

	n, err := r.queries.UpdateEntry(ctx, UpdateEntryParams{
		Kind:        string(e.Kind),
		Concept:     e.Concept,
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		EntryDate:   e.Date.ISO(),
		ID:          id,
	})
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	r.pushEntries(ctx, current.Owner)
	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, id string) error {
	current, err := r.queries.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}

	n, err := r.queries.DeleteEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	r.pushEntries(ctx, current.Owner)
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, owner string) ([]core.Entry, error) {
	rows, err := r.queries.ListEntriesByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entriesFromRows(ctx, rows), nil
}

func (r *Repository) SubscribeEntries(owner string, fn store.EntrySnapshotFunc) store.UnsubscribeFunc {
	id := uuid.NewString()
	r.mu.Lock()
	r.entrySubs[owner] = append(r.entrySubs[owner], entrySub{id: id, fn: fn})
	r.mu.Unlock()

	ctx := context.Background()
	initial, err := r.ListEntries(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read initial entry snapshot", "owner", owner, "error", err)
	}
	fn(initial)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		subs := r.entrySubs[owner]
		for i, s := range subs {
			if s.id == id {
				r.entrySubs[owner] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

func (r *Repository) CreateReminder(ctx context.Context, rem core.Reminder) (string, error) {
	if err := rem.Validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	err := r.queries.CreateReminder(ctx, CreateReminderParams{
		ID:          id,
		Owner:       rem.Owner,
		Title:       rem.Title,
		Description: rem.Description,
		AmountCents: rem.Amount.Cents,
		DueDate:     rem.DueDate.ISO(),
		Period:      string(rem.Period),
		Priority:    string(rem.Priority),
		Active:      true, // reminders always start active
		CreatedAt:   r.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("create reminder: %w", err)
	}

	r.pushReminders(ctx, rem.Owner)
	return id, nil
}

func (r *Repository) UpdateReminder(ctx context.Context, id string, patch store.ReminderPatch) error {
	current, err := r.queries.GetReminder(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get reminder: %w", err)
	}

	params := PatchReminderParams{ID: id}
	if patch.DueDate != nil {
		params.DueDate = sql.NullString{String: patch.DueDate.ISO(), Valid: true}
	}
	if patch.Active != nil {
		params.Active = sql.NullBool{Bool: *patch.Active, Valid: true}
	}

	n, err := r.queries.PatchReminder(ctx, params)
	if err != nil {
		return fmt.Errorf("patch reminder: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	r.pushReminders(ctx, current.Owner)
	return nil
}

func (r *Repository) DeleteReminder(ctx context.Context, id string) error {
	current, err := r.queries.GetReminder(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get reminder: %w", err)
	}

	n, err := r.queries.DeleteReminder(ctx, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	r.pushReminders(ctx, current.Owner)
	return nil
}

func (r *Repository) ListReminders(ctx context.Context, owner string) ([]core.Reminder, error) {
	rows, err := r.queries.ListRemindersByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return remindersFromRows(ctx, rows), nil
}

func (r *Repository) SubscribeReminders(owner string, fn store.ReminderSnapshotFunc) store.UnsubscribeFunc {
	id := uuid.NewString()
	r.mu.Lock()
	r.reminderSubs[owner] = append(r.reminderSubs[owner], reminderSub{id: id, fn: fn})
	r.mu.Unlock()

	ctx := context.Background()
	initial, err := r.ListReminders(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read initial reminder snapshot", "owner", owner, "error", err)
	}
	fn(initial)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		subs := r.reminderSubs[owner]
		for i, s := range subs {
			if s.id == id {
				r.reminderSubs[owner] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

func (r *Repository) Owners(ctx context.Context) ([]string, error) {
	owners, err := r.queries.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

func (r *Repository) pushEntries(ctx context.Context, owner string) {
	r.mu.Lock()
	subs := append([]entrySub(nil), r.entrySubs[owner]...)
	r.mu.Unlock()
	if len(subs) == 0 {
		return
	}

	snapshot, err := r.ListEntries(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read entry snapshot for push", "owner", owner, "error", err)
		return
	}
	for _, s := range subs {
		s.fn(snapshot)
	}
}

func (r *Repository) pushReminders(ctx context.Context, owner string) {
	r.mu.Lock()
	subs := append([]reminderSub(nil), r.reminderSubs[owner]...)
	r.mu.Unlock()
	if len(subs) == 0 {
		return
	}

	snapshot, err := r.ListReminders(ctx, owner)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read reminder snapshot for push", "owner", owner, "error", err)
		return
	}
	for _, s := range subs {
		s.fn(snapshot)
	}
}

// entriesFromRows maps rows to domain entries. A malformed row is logged and
// skipped rather than poisoning the whole list.
func entriesFromRows(ctx context.Context, rows []EntryRow) []core.Entry {
	out := make([]core.Entry, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.EntryDate)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping entry with malformed date", "id", row.ID, "date", row.EntryDate, "error", err)
			continue
		}
		out = append(out, core.Entry{
			ID:        row.ID,
			Owner:     row.Owner,
			Kind:      core.Kind(row.Kind),
			Concept:   row.Concept,
			Category:  row.Category,
			Amount:    core.Money{Cents: row.AmountCents},
			Date:      date,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}

func remindersFromRows(ctx context.Context, rows []ReminderRow) []core.Reminder {
	out := make([]core.Reminder, 0, len(rows))
	for _, row := range rows {
		due, err := core.ParseDate(row.DueDate)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping reminder with malformed due date", "id", row.ID, "date", row.DueDate, "error", err)
			continue
		}
		out = append(out, core.Reminder{
			ID:          row.ID,
			Owner:       row.Owner,
			Title:       row.Title,
			Description: row.Description,
			Amount:      core.Money{Cents: row.AmountCents},
			DueDate:     due,
			Period:      core.Period(row.Period),
			Priority:    core.Priority(row.Priority),
			Active:      row.Active,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out
}
