package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps the raw SQL. One method per statement.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// EntryRow mirrors the entries table.
type EntryRow struct {
	ID          string
	Owner       string
	Kind        string
	Concept     string
	Category    string
	AmountCents int64
	EntryDate   string
	CreatedAt   time.Time
}

// ReminderRow mirrors the reminders table.
type ReminderRow struct {
	ID          string
	Owner       string
	Title       string
	Description string
	AmountCents int64
	DueDate     string
	Period      string
	Priority    string
	Active      bool
	CreatedAt   time.Time
}

const createEntry = `
INSERT INTO entries (id, owner, kind, concept, category, amount_cents, entry_date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateEntryParams struct {
	ID          string
	Owner       string
	Kind        string
	Concept     string
	Category    string
	AmountCents int64
	EntryDate   string
	CreatedAt   time.Time
}

func (q *Queries) CreateEntry(ctx context.Context, p CreateEntryParams) error {
	_, err := q.db.ExecContext(ctx, createEntry,
		p.ID, p.Owner, p.Kind, p.Concept, p.Category, p.AmountCents, p.EntryDate, p.CreatedAt)
	return err
}

const updateEntry = `
UPDATE entries
SET kind = ?, concept = ?, category = ?, amount_cents = ?, entry_date = ?
WHERE id = ?
`

type UpdateEntryParams struct {
	Kind        string
	Concept     string
	Category    string
	AmountCents int64
	EntryDate   string
	ID          string
}

func (q *Queries) UpdateEntry(ctx context.Context, p UpdateEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateEntry,
		p.Kind, p.Concept, p.Category, p.AmountCents, p.EntryDate, p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteEntry = `DELETE FROM entries WHERE id = ?`

func (q *Queries) DeleteEntry(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEntry, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getEntry = `
SELECT id, owner, kind, concept, category, amount_cents, entry_date, created_at
FROM entries WHERE id = ?
`

func (q *Queries) GetEntry(ctx context.Context, id string) (EntryRow, error) {
	var r EntryRow
	err := q.db.QueryRowContext(ctx, getEntry, id).Scan(
		&r.ID, &r.Owner, &r.Kind, &r.Concept, &r.Category, &r.AmountCents, &r.EntryDate, &r.CreatedAt)
	return r, err
}

const listEntriesByOwner = `
SELECT id, owner, kind, concept, category, amount_cents, entry_date, created_at
FROM entries
WHERE owner = ?
ORDER BY entry_date DESC, created_at DESC
`

func (q *Queries) ListEntriesByOwner(ctx context.Context, owner string) ([]EntryRow, error) {
	rows, err := q.db.QueryContext(ctx, listEntriesByOwner, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		var r EntryRow
		if err := rows.Scan(&r.ID, &r.Owner, &r.Kind, &r.Concept, &r.Category, &r.AmountCents, &r.EntryDate, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const createReminder = `
INSERT INTO reminders (id, owner, title, description, amount_cents, due_date, period, priority, active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateReminderParams struct {
	ID          string
	Owner       string
	Title       string
	Description string
	AmountCents int64
	DueDate     string
	Period      string
	Priority    string
	Active      bool
	CreatedAt   time.Time
}

func (q *Queries) CreateReminder(ctx context.Context, p CreateReminderParams) error {
	_, err := q.db.ExecContext(ctx, createReminder,
		p.ID, p.Owner, p.Title, p.Description, p.AmountCents, p.DueDate, p.Period, p.Priority, p.Active, p.CreatedAt)
	return err
}

const patchReminder = `
UPDATE reminders
SET due_date = COALESCE(?, due_date),
    active = COALESCE(?, active)
WHERE id = ?
`

type PatchReminderParams struct {
	DueDate sql.NullString
	Active  sql.NullBool
	ID      string
}

// PatchReminder applies a partial update as a single statement, matching the
// atomic document-write contract.
func (q *Queries) PatchReminder(ctx context.Context, p PatchReminderParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, patchReminder, p.DueDate, p.Active, p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteReminder = `DELETE FROM reminders WHERE id = ?`

func (q *Queries) DeleteReminder(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteReminder, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getReminder = `
SELECT id, owner, title, description, amount_cents, due_date, period, priority, active, created_at
FROM reminders WHERE id = ?
`

func (q *Queries) GetReminder(ctx context.Context, id string) (ReminderRow, error) {
	var r ReminderRow
	err := q.db.QueryRowContext(ctx, getReminder, id).Scan(
		&r.ID, &r.Owner, &r.Title, &r.Description, &r.AmountCents, &r.DueDate, &r.Period, &r.Priority, &r.Active, &r.CreatedAt)
	return r, err
}

const listRemindersByOwner = `
SELECT id, owner, title, description, amount_cents, due_date, period, priority, active, created_at
FROM reminders
WHERE owner = ?
ORDER BY due_date ASC, created_at ASC
`

func (q *Queries) ListRemindersByOwner(ctx context.Context, owner string) ([]ReminderRow, error) {
	rows, err := q.db.QueryContext(ctx, listRemindersByOwner, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReminderRow
	for rows.Next() {
		var r ReminderRow
		if err := rows.Scan(&r.ID, &r.Owner, &r.Title, &r.Description, &r.AmountCents, &r.DueDate, &r.Period, &r.Priority, &r.Active, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const listOwners = `
SELECT owner FROM entries
UNION
SELECT owner FROM reminders
ORDER BY owner
`

func (q *Queries) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listOwners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
