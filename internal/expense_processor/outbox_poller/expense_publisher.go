package outbox_poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/outbox"
	"github.com/splitledger/internal/domain/shared"
)

// ExpensePublisher publishes outbox messages to the expense store
type ExpensePublisher interface {
	PublishExpense(ctx context.Context, message *outbox.Message) error
}

// ExpensePublisherImpl implements ExpensePublisher
type ExpensePublisherImpl struct {
	outboxRepo  outbox.Repository
	expenseRepo expense.Repository
	logger      *slog.Logger
}

// NewExpensePublisher creates a new publisher
func NewExpensePublisher(
	outboxRepo outbox.Repository,
	expenseRepo expense.Repository,
	logger *slog.Logger,
) ExpensePublisher {
	return &ExpensePublisherImpl{
		outboxRepo:  outboxRepo,
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// PublishExpense writes the expense document carried by an outbox message to
// the expense store, marking it COMPLETED. Only completed expenses enter
// balance aggregation.
func (p *ExpensePublisherImpl) PublishExpense(ctx context.Context, message *outbox.Message) error {
	var expToPublish expense.Expense
	if err := json.Unmarshal(message.Payload, &expToPublish); err != nil {
		p.logger.Error("Failed to unmarshal expense from outbox payload",
			"outbox_id", message.ID, "expense_id", message.ExpenseID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if expToPublish.CorrelationID != "" {
		logger = p.logger.With("correlation_id", expToPublish.CorrelationID)
	}

	logger.Info("Attempting to publish outbox message to expense store", "outbox_id", message.ID, "expense_id", message.ExpenseID)

	expToPublish.Status = shared.ExpenseStatusCompleted
	now := time.Now().UTC()
	expToPublish.ProcessedAt = &now

	existingExpense, err := p.expenseRepo.GetByExpenseID(ctx, expToPublish.ExpenseID)
	if err != nil && !errors.Is(err, expense.ErrExpenseNotFound{}) {
		logger.Error("Failed to check existing expense before publishing", "expense_id", expToPublish.ExpenseID, "error", err)
		return fmt.Errorf("failed to check existing expense %s: %w", expToPublish.ExpenseID, err)
	}

	if existingExpense != nil {
		if existingExpense.Status == shared.ExpenseStatusCompleted {
			logger.Info("Expense already COMPLETED", "expense_id", expToPublish.ExpenseID)
		} else {
			// Update existing document status
			err = p.expenseRepo.UpdateStatus(ctx, expToPublish.ExpenseID, shared.ExpenseStatusCompleted, "") // Empty reason for success
			if err != nil {
				logger.Error("Failed to update existing expense to COMPLETED", "expense_id", expToPublish.ExpenseID, "error", err)
				return fmt.Errorf("failed to update expense %s to COMPLETED: %w", expToPublish.ExpenseID, err)
			}
			logger.Info("Updated existing expense to COMPLETED", "expense_id", expToPublish.ExpenseID)
		}
	} else {
		// Create new expense document
		err = p.expenseRepo.Create(ctx, &expToPublish) // expToPublish already has status=COMPLETED and ProcessedAt set
		if err != nil {
			logger.Error("Failed to create expense in MongoDB", "expense_id", expToPublish.ExpenseID, "error", err)
			return fmt.Errorf("failed to create expense %s: %w", expToPublish.ExpenseID, err)
		}
		logger.Info("Successfully created expense in MongoDB", "expense_id", expToPublish.ExpenseID)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "expense_id", message.ExpenseID, "error", err,
		)
		return fmt.Errorf("expense write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.ExpenseID, message.ID, err)
	}

	logger.Info("Outbox message successfully processed and marked as PROCESSED", "outbox_id", message.ID, "expense_id", message.ExpenseID)
	return nil
}
