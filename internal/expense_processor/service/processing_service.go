package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/split"
	"github.com/splitledger/internal/platform/persistence"
)

type ProcessingServiceImpl struct {
	pgDB               *persistence.PostgresDB
	validator          ExpenseValidator
	participantManager ParticipantManager
	outboxManager      OutboxManager
	failureRecorder    FailureRecorder
	logger             *slog.Logger
}

func NewProcessingService(
	pgDB *persistence.PostgresDB,
	validator ExpenseValidator,
	participantManager ParticipantManager,
	outboxManager OutboxManager,
	failureRecorder FailureRecorder,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		pgDB:               pgDB,
		validator:          validator,
		participantManager: participantManager,
		outboxManager:      outboxManager,
		failureRecorder:    failureRecorder,
		logger:             logger,
	}
}

// ProcessExpense handles the core logic for recording an expense.
func (s *ProcessingServiceImpl) ProcessExpense(ctx context.Context, request *shared.ExpenseRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing expense", "expense_id", request.ExpenseID.String(), "payer_id", request.PayerID.String())

	// 1. Validate the expense request
	if err := s.validator.Validate(ctx, request); err != nil {
		logger.Error("Expense validation failed", "expense_id", request.ExpenseID.String(), "error", err)

		// Record the failure based on the specific error
		var failureReason string
		var invalidSplit split.ErrInvalidSplit
		switch {
		case errors.Is(err, shared.ErrInvalidSplitMethod):
			failureReason = string(shared.FailureReasonInvalidSplit)
		case errors.As(err, &invalidSplit):
			failureReason = string(shared.FailureReasonInvalidSplit)
		case errors.Is(err, shared.ErrInvalidCurrency):
			failureReason = string(shared.FailureReasonInvalidCurrency)
		default:
			failureReason = string(shared.FailureReasonInvalidAmount)
		}

		if recordErr := s.failureRecorder.RecordFailure(ctx, request, failureReason); recordErr != nil {
			logger.Error("Failed to record expense failure", "expense_id", request.ExpenseID.String(), "error", recordErr)
		}

		return nil // Return nil to Kafka consumer to acknowledge the message
	}

	// 2. Check idempotency
	skip, err := s.validator.CheckIdempotency(ctx, request)
	if err != nil {
		return err // Let Kafka retry
	}
	if skip {
		return nil // Already processed, return success
	}

	// 3. Begin database transaction
	var tx pgx.Tx
	tx, err = s.pgDB.Pool().Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin database transaction", "expense_id", request.ExpenseID.String(), "error", err)
		return fmt.Errorf("failed to begin DB transaction for %s: %w", request.ExpenseID.String(), err)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back transaction", "panic", p, "expense_id", request.ExpenseID.String())
			_ = tx.Rollback(ctx)
			panic(p) // Re-panic
		} else if err != nil {
			logger.Error("Error occurred, rolling back transaction", "error", err, "expense_id", request.ExpenseID.String())
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error("Failed to rollback transaction after error", "rollback_error", rbErr, "original_error", err, "expense_id", request.ExpenseID.String())
			}
		}
	}()

	// 4. Lock payer and record the payment
	payer, err := s.participantManager.LockAndRecordPayment(ctx, tx, request)
	if err != nil {
		if errors.Is(err, participant.ErrParticipantNotFound{ParticipantID: request.PayerID}) {
			if recordErr := s.failureRecorder.RecordFailure(ctx, request, string(shared.FailureReasonPayerNotFound)); recordErr != nil {
				logger.Error("Failed to record payer not found failure", "expense_id", request.ExpenseID.String(), "error", recordErr)
			}
			return nil // Return nil to Kafka consumer; the defer rolls back
		}

		// For other errors, let them propagate for retry
		return err
	}

	// 5. Create outbox entry
	if err = s.outboxManager.CreateOutboxEntry(ctx, tx, request, payer); err != nil {
		return err // Let the defer handle rollback
	}

	// 6. Commit transaction
	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit database transaction",
			"expense_id", request.ExpenseID.String(),
			"payer_id", request.PayerID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to commit DB transaction for expense %s: %w", request.ExpenseID.String(), err)
	}

	logger.Info("Database transaction committed successfully", "expense_id", request.ExpenseID.String(), "payer_id", request.PayerID.String())
	return nil // SUCCESS!
}
