package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/expense_processor/service"
)

// ParticipantManagerImpl implements the ParticipantManager interface
type ParticipantManagerImpl struct {
	participantRepo participant.Repository
	logger          *slog.Logger
}

// NewParticipantManager creates a new ParticipantManagerImpl
func NewParticipantManager(participantRepo participant.Repository, logger *slog.Logger) service.ParticipantManager {
	return &ParticipantManagerImpl{
		participantRepo: participantRepo,
		logger:          logger,
	}
}

// LockAndRecordPayment locks the payer row and bumps their paid total. The
// stat is advisory only; balances are always recomputed from the expense set.
func (m *ParticipantManagerImpl) LockAndRecordPayment(ctx context.Context, tx pgx.Tx, request *shared.ExpenseRequest) (*participant.Participant, error) {
	logger := m.logger
	if request.CorrelationID != "" {
		logger = m.logger.With("correlation_id", request.CorrelationID)
	}

	// Use the repository with the transaction
	participantRepoTx := m.participantRepo.WithTx(tx)

	// Lock the payer for update
	payer, err := participantRepoTx.LockForUpdate(ctx, request.PayerID)
	if err != nil {
		if errors.Is(err, participant.ErrParticipantNotFound{ParticipantID: request.PayerID}) {
			logger.Warn("Payer not found for lock", "expense_id", request.ExpenseID.String(), "payer_id", request.PayerID.String(), "original_error", err)
			return nil, err
		}
		logger.Error("Failed to lock payer", "expense_id", request.ExpenseID.String(), "payer_id", request.PayerID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock payer %s: %w", request.PayerID.String(), err)
	}
	logger.Info("Payer locked", "expense_id", request.ExpenseID.String(), "payer_id", payer.ID.String(), "total_paid", payer.TotalPaid, "ver", payer.Version)

	// Record the payment on the payer model
	if paymentErr := payer.RecordPayment(request.Amount); paymentErr != nil {
		logger.Error("Failed to record payment on payer model", "expense_id", request.ExpenseID.String(), "error", paymentErr)
		return nil, paymentErr
	}
	logger.Info("Payer paid total updated in memory", "expense_id", request.ExpenseID.String(), "new_total_paid", payer.TotalPaid, "new_ver", payer.Version)

	// Persist payer changes
	if err = participantRepoTx.Update(ctx, payer); err != nil {
		if errors.Is(err, participant.ErrConcurrentModification{ParticipantID: payer.ID}) {
			logger.Warn("Concurrent modification on payer update", "expense_id", request.ExpenseID.String(), "payer_id", payer.ID.String())
		} else {
			logger.Error("Failed to update payer in DB", "expense_id", request.ExpenseID.String(), "payer_id", payer.ID.String(), "error", err)
		}
		return nil, err
	}
	logger.Info("Payer updated in DB", "expense_id", request.ExpenseID.String(), "payer_id", payer.ID.String())

	return payer, nil
}
