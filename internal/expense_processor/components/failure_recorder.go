package components

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/expense_processor/service"
)

type FailureRecorderImpl struct {
	expenseRepo expense.Repository
	logger      *slog.Logger
}

func NewFailureRecorder(expenseRepo expense.Repository, logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// RecordFailure records a failed expense in the expense store. Failed
// expenses never enter balance aggregation, which only folds completed ones.
func (r *FailureRecorderImpl) RecordFailure(ctx context.Context, request *shared.ExpenseRequest, failureReason string) error {
	logger := r.logger
	if request.CorrelationID != "" {
		logger = r.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Recording failed expense", "expense_id", request.ExpenseID.String(), "reason", failureReason)

	now := time.Now()
	exp := expense.FromRequest(request)
	exp.Status = shared.ExpenseStatusFailed
	exp.FailureReason = failureReason
	exp.ProcessedAt = &now

	existingExpense, err := r.expenseRepo.GetByExpenseID(ctx, request.ExpenseID)
	if err != nil && !errors.Is(err, expense.ErrExpenseNotFound{}) {
		logger.Error("Failed to get existing expense for failure record", "expense_id", request.ExpenseID.String(), "error", err)
	}

	if existingExpense != nil {
		if existingExpense.Status != shared.ExpenseStatusFailed {
			logger.Info("Updating existing expense to FAILED", "expense_id", request.ExpenseID.String())
			updateErr := r.expenseRepo.UpdateStatus(ctx, request.ExpenseID, shared.ExpenseStatusFailed, failureReason)
			if updateErr != nil {
				logger.Error("Failed to update expense to FAILED", "expense_id", request.ExpenseID.String(), "error", updateErr)
				return updateErr
			}
			logger.Info("Successfully updated expense to FAILED", "expense_id", request.ExpenseID.String())
			return nil
		}
		logger.Info("Expense already marked as FAILED", "expense_id", request.ExpenseID.String())
		return nil
	}

	logger.Info("Creating new FAILED expense record", "expense_id", request.ExpenseID.String())
	createErr := r.expenseRepo.Create(ctx, exp)
	if createErr != nil {
		logger.Error("Failed to create FAILED expense record", "expense_id", request.ExpenseID.String(), "error", createErr)
		return createErr
	}
	logger.Info("Successfully created FAILED expense record", "expense_id", request.ExpenseID.String())
	return nil
}
