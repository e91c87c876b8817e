package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/expense_processor/service"
	"github.com/splitledger/internal/platform/messaging/producers"
)

// ExpenseEventHandler handles incoming expense request messages from Kafka
type ExpenseEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewExpenseEventHandler creates a new handler
func NewExpenseEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *ExpenseEventHandler {
	return &ExpenseEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages
func (h *ExpenseEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.ExpenseRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal expense request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received expense request for processing",
		"expense_id", request.ExpenseID.String(),
		"payer_id", request.PayerID.String(),
		"split_method", request.SplitMethod,
		"amount", request.Amount,
		"currency", request.Currency,
	)

	if err := h.processingService.ProcessExpense(ctx, &request); err != nil {
		logger.Error("Failed to process expense",
			"expense_id", request.ExpenseID.String(),
			"payer_id", request.PayerID.String(),
			"error", err,
		)
		return fmt.Errorf("processing expense %s failed: %w", request.ExpenseID.String(), err)
	}

	logger.Info("Successfully processed expense", "expense_id", request.ExpenseID.String())
	return nil // Success, commit offset
}
