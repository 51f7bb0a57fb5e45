package core

import (
	"errors"
	"testing"
	"time"
)

func validEntry() Entry {
	return Entry{
		Owner:    "u1",
		Kind:     Income,
		Concept:  "Venta mostrador",
		Category: "Ventas",
		Amount:   Money{Cents: 12000},
		Date:     NewDate(2025, time.June, 10),
	}
}

func TestEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Entry)
		wantErr error
	}{
		{name: "valid", mutate: func(*Entry) {}},
		{name: "bad kind", mutate: func(e *Entry) { e.Kind = "transferencia" }, wantErr: ErrInvalidKind},
		{name: "zero date", mutate: func(e *Entry) { e.Date = Date{} }, wantErr: ErrZeroDate},
		{name: "blank concept", mutate: func(e *Entry) { e.Concept = "   " }, wantErr: ErrEmptyConcept},
		{name: "blank category", mutate: func(e *Entry) { e.Category = "" }, wantErr: ErrEmptyCategory},
		{name: "negative amount", mutate: func(e *Entry) { e.Amount.Cents = -1 }, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReminderValidate(t *testing.T) {
	valid := Reminder{
		Owner:    "u1",
		Title:    "Pago de alquiler",
		DueDate:  NewDate(2025, time.July, 1),
		Period:   Monthly,
		Priority: PriorityMedium,
		Active:   true,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid reminder rejected: %v", err)
	}

	zeroAmount := valid
	zeroAmount.Amount = Money{}
	if err := zeroAmount.Validate(); err != nil {
		t.Errorf("zero amount must be allowed (no amount tracked): %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Reminder)
		wantErr error
	}{
		{name: "blank title", mutate: func(r *Reminder) { r.Title = "" }, wantErr: ErrEmptyTitle},
		{name: "zero due date", mutate: func(r *Reminder) { r.DueDate = Date{} }, wantErr: ErrZeroDate},
		{name: "bad period", mutate: func(r *Reminder) { r.Period = "quincenal" }, wantErr: ErrInvalidPeriod},
		{name: "bad priority", mutate: func(r *Reminder) { r.Priority = "urgente" }, wantErr: ErrInvalidPriority},
		{name: "negative amount", mutate: func(r *Reminder) { r.Amount.Cents = -100 }, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnumValidity(t *testing.T) {
	for _, p := range []Period{Once, Weekly, Monthly, Quarterly, Yearly} {
		if !p.Valid() {
			t.Errorf("period %q reported invalid", p)
		}
	}
	if Period("diario").Valid() {
		t.Error("unknown period reported valid")
	}
	for _, k := range []Kind{Income, Expense} {
		if !k.Valid() {
			t.Errorf("kind %q reported invalid", k)
		}
	}
}
