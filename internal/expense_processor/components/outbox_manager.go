package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/outbox"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/expense_processor/service"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry creates an outbox entry carrying the expense document for
// the processed request. The poller publishes it to the expense store.
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, request *shared.ExpenseRequest, payer *participant.Participant) error {
	logger := m.logger
	if request.CorrelationID != "" {
		logger = m.logger.With("correlation_id", request.CorrelationID)
	}

	outboxRepoTx := m.outboxRepo.WithTx(tx)

	expenseForOutbox := expense.FromRequest(request)
	expenseForOutbox.Status = shared.ExpenseStatusProcessing
	// ProcessedAt is set by the poller

	outboxMessage, err := outbox.NewMessage(expenseForOutbox)
	if err != nil {
		logger.Error("Failed to create new outbox message (marshal payload)",
			"expense_id", request.ExpenseID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for expense %s: %w", request.ExpenseID.String(), err)
	}

	if err = outboxRepoTx.Create(ctx, outboxMessage); err != nil {
		logger.Error("Failed to create outbox message",
			"expense_id", request.ExpenseID.String(),
			"payer_id", request.PayerID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for expense %s: %w", request.ExpenseID.String(), err)
	}
	logger.Info("Outbox message created successfully",
		"expense_id", request.ExpenseID.String(),
		"outbox_id", outboxMessage.ID,
	)

	return nil
}
