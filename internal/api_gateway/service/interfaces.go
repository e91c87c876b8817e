package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/balance"
)

// ParticipantService defines the interface for participant operations
type ParticipantService interface {
	// CreateParticipant registers a new participant with the given details
	// Returns ErrDuplicateEmail if a participant with the same email exists
	CreateParticipant(ctx context.Context, displayName string, email string, displayCurrency string) (*participant.Participant, error)

	// GetParticipantByID retrieves a participant by its ID
	// Returns ErrParticipantNotFound if the participant doesn't exist
	GetParticipantByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error)
}

// ExpenseService defines the interface for expense recording operations
type ExpenseService interface {
	// CreateExpense initiates expense recording with idempotency support
	// Returns expense ID, existing document (if found via idempotencyKey), and any error
	CreateExpense(ctx context.Context, expenseRequest *shared.ExpenseRequest) (string, *expense.Expense, error)

	// GetExpenseByID retrieves an expense by its ID
	// Returns nil if the expense is not found
	GetExpenseByID(ctx context.Context, expenseID uuid.UUID) (*expense.Expense, error)

	// GetExpensesByParticipantID retrieves paginated expenses paid by a participant
	// Returns documents, total count, and any error
	GetExpensesByParticipantID(ctx context.Context, participantID uuid.UUID, page, perPage int) ([]*expense.Expense, int64, error)
}

// BalanceService defines the interface for balance reconciliation operations
type BalanceService interface {
	// GetBalance recomputes the participant's net balances against every
	// counterparty in the given display currency (the participant's own when
	// empty), optionally scoped to one group.
	GetBalance(ctx context.Context, participantID uuid.UUID, currency string, groupID *uuid.UUID) (*balance.Balance, error)

	// SettleUp generates and publishes the expense that zeroes out the balance
	// with one counterparty. Returns nil when the pair is already settled.
	SettleUp(ctx context.Context, participantID, counterpartyID uuid.UUID, currency string, groupID *uuid.UUID, correlationID string) (*shared.ExpenseRequest, error)
}
