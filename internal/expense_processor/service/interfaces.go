package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/domain/shared"
)

// ProcessingService defines the interface for processing expense requests.
type ProcessingService interface {
	ProcessExpense(ctx context.Context, request *shared.ExpenseRequest) error
}

// ExpenseValidator validates expense requests before processing
type ExpenseValidator interface {
	Validate(ctx context.Context, request *shared.ExpenseRequest) error
	CheckIdempotency(ctx context.Context, request *shared.ExpenseRequest) (bool, error)
}

// ParticipantManager handles payer-related operations during expense processing
type ParticipantManager interface {
	LockAndRecordPayment(ctx context.Context, tx pgx.Tx, request *shared.ExpenseRequest) (*participant.Participant, error)
}

// OutboxManager handles the creation of outbox entries for processed expenses
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, request *shared.ExpenseRequest, payer *participant.Participant) error
}

// FailureRecorder handles recording failed expenses
type FailureRecorder interface {
	RecordFailure(ctx context.Context, request *shared.ExpenseRequest, failureReason string) error
}
