package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/split"
	"github.com/splitledger/internal/expense_processor/service"
)

type ExpenseValidatorImpl struct {
	expenseRepo expense.Repository
	logger      *slog.Logger
}

func NewExpenseValidator(expenseRepo expense.Repository, logger *slog.Logger) service.ExpenseValidator {
	return &ExpenseValidatorImpl{
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// Validate checks expense request validity, including the full split spec
func (v *ExpenseValidatorImpl) Validate(ctx context.Context, request *shared.ExpenseRequest) error {
	logger := v.logger
	if request.CorrelationID != "" {
		logger = v.logger.With("correlation_id", request.CorrelationID)
	}

	switch request.SplitMethod {
	case shared.SplitMethodEqual, shared.SplitMethodCustomAmount, shared.SplitMethodCustomPercentage:
	default:
		logger.Error("Unknown split method", "expense_id", request.ExpenseID.String(), "split_method", request.SplitMethod)
		return shared.ErrInvalidSplitMethod
	}

	if request.Amount <= 0 {
		logger.Error("Invalid amount", "expense_id", request.ExpenseID.String(), "amount", request.Amount)
		return fmt.Errorf("amount must be positive: %f", request.Amount)
	}

	if len(request.Currency) != 3 {
		logger.Error("Invalid currency", "expense_id", request.ExpenseID.String(), "currency", request.Currency)
		return shared.ErrInvalidCurrency
	}

	if err := split.Validate(request.Amount, request.SplitMethod, splitSpecOf(request)); err != nil {
		logger.Error("Invalid split spec", "expense_id", request.ExpenseID.String(), "split_method", string(request.SplitMethod), "error", err)
		return err
	}

	return nil
}

// CheckIdempotency checks if the expense was already recorded
func (v *ExpenseValidatorImpl) CheckIdempotency(ctx context.Context, request *shared.ExpenseRequest) (bool, error) {
	logger := v.logger
	if request.CorrelationID != "" {
		logger = v.logger.With("correlation_id", request.CorrelationID)
	}

	existingExpense, err := v.expenseRepo.GetByExpenseID(ctx, request.ExpenseID)
	if err != nil && !errors.Is(err, expense.ErrExpenseNotFound{}) {
		logger.Error("Failed to check expense store for idempotency", "expense_id", request.ExpenseID.String(), "error", err)
		return false, fmt.Errorf("idempotency check failed for expense %s: %w", request.ExpenseID.String(), err)
	}

	if existingExpense != nil {
		if existingExpense.Status == shared.ExpenseStatusCompleted || existingExpense.Status == shared.ExpenseStatusFailed {
			logger.Info("Expense already processed (idempotency)", "expense_id", request.ExpenseID.String(), "status", existingExpense.Status)
			return true, nil // Skip processing
		}
		logger.Info("Expense found with non-terminal status, proceeding", "expense_id", request.ExpenseID.String(), "status", existingExpense.Status)
	}

	return false, nil // Continue processing
}

// splitSpecOf converts wire-level split values into an engine split spec
func splitSpecOf(request *shared.ExpenseRequest) split.Spec {
	spec := split.Spec{
		PayerID:      request.PayerID,
		Participants: request.Participants,
	}
	if len(request.SplitValues) > 0 {
		spec.Values = make(map[uuid.UUID]float64, len(request.SplitValues))
		for key, v := range request.SplitValues {
			id, err := uuid.Parse(key)
			if err != nil {
				continue
			}
			spec.Values[id] = v
		}
	}
	return spec
}
