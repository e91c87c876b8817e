package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/shared"
)

// Repository manages expense document persistence with pagination support.
// ListInvolving returns every COMPLETED expense where the participant is the
// payer or a member of the split set; it feeds balance aggregation, which
// always recomputes from the full set.
type Repository interface {
	Create(ctx context.Context, exp *Expense) error
	GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*Expense, error)
	GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*Expense, error)
	GetByParticipantID(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Expense, error)
	CountByParticipantID(ctx context.Context, participantID uuid.UUID) (int64, error)
	ListInvolving(ctx context.Context, participantID uuid.UUID, groupID *uuid.UUID) ([]*Expense, error)
	UpdateStatus(ctx context.Context, expenseID uuid.UUID, status shared.ExpenseStatus, reason string) error
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*Expense, error)
}

// ErrExpenseNotFound indicates missing expense document
type ErrExpenseNotFound struct {
	ExpenseID uuid.UUID
}

func (e ErrExpenseNotFound) Error() string {
	return "expense not found: " + e.ExpenseID.String()
}

// Is implements the errors.Is interface for ErrExpenseNotFound
func (e ErrExpenseNotFound) Is(target error) bool {
	t, ok := target.(ErrExpenseNotFound)
	if !ok {
		return false
	}
	// If the target ExpenseID is empty, consider it a match for any ErrExpenseNotFound
	if t.ExpenseID == uuid.Nil {
		return true
	}
	// Otherwise, match on ExpenseID
	return e.ExpenseID == t.ExpenseID
}

// ErrDuplicateExpense indicates expense uniqueness violation
type ErrDuplicateExpense struct {
	ExpenseID uuid.UUID
}

func (e ErrDuplicateExpense) Error() string {
	return "duplicate expense: " + e.ExpenseID.String()
}

// Is implements the errors.Is interface for ErrDuplicateExpense
func (e ErrDuplicateExpense) Is(target error) bool {
	t, ok := target.(ErrDuplicateExpense)
	if !ok {
		return false
	}
	if t.ExpenseID == uuid.Nil {
		return true
	}
	return e.ExpenseID == t.ExpenseID
}
