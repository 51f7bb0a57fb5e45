package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "ingreso"
	Expense Kind = "gasto"
)

const (
	Once      Period = "unico"
	Weekly    Period = "semanal"
	Monthly   Period = "mensual"
	Quarterly Period = "trimestral"
	Yearly    Period = "anual"
)

const (
	PriorityLow    Priority = "baja"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
)

type (
	// Kind classifies a ledger entry as income or expense. The amount sign
	// is implied by the kind; stored amounts are always non-negative.
	Kind string

	// Period is the recurrence of a reminder.
	Period string

	// Priority is the display priority of a reminder.
	Priority string

	// Entry is a single dated income or expense record. An entry belongs to
	// exactly one owner and is only ever replaced whole or deleted.
	Entry struct {
		ID        string
		Owner     string
		Kind      Kind
		Concept   string
		Category  string
		Amount    Money
		Date      Date
		CreatedAt time.Time
	}

	// Reminder is a scheduled payment reminder. DueDate holds the next
	// occurrence; the rollover engine advances it for recurring periods and
	// deactivates one-shot reminders once passed.
	Reminder struct {
		ID          string
		Owner       string
		Title       string
		Description string
		Amount      Money // zero = no amount tracked
		DueDate     Date
		Period      Period
		Priority    Priority
		Active      bool
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid entry kind")
	ErrInvalidPeriod   = errors.New("invalid reminder period")
	ErrInvalidPriority = errors.New("invalid reminder priority")
	ErrEmptyConcept    = errors.New("empty concept")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyTitle      = errors.New("empty title")
	ErrZeroDate        = errors.New("date cannot be zero")
)

// Valid reports whether k is one of the closed set of entry kinds.
func (k Kind) Valid() bool {
	switch k {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// Valid reports whether p is one of the closed set of recurrence periods.
func (p Period) Valid() bool {
	switch p {
	case Once, Weekly, Monthly, Quarterly, Yearly:
		return true
	default:
		return false
	}
}

// Valid reports whether p is one of the closed set of priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (e Entry) Validate() error {
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if len(strings.TrimSpace(e.Concept)) == 0 {
		return ErrEmptyConcept
	}
	if len(e.Concept) > 200 {
		return errors.New("concept too long (max 200 characters)")
	}
	if len(strings.TrimSpace(e.Category)) == 0 {
		return ErrEmptyCategory
	}
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Reminder) Validate() error {
	if len(strings.TrimSpace(r.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(r.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if r.DueDate.IsZero() {
		return ErrZeroDate
	}
	if !r.Period.Valid() {
		return ErrInvalidPeriod
	}
	if !r.Priority.Valid() {
		return ErrInvalidPriority
	}
	// Amount is optional: zero means no amount tracked.
	if r.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
