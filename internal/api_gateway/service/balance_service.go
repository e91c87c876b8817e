package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/balance"
	"github.com/splitledger/internal/engine/settlement"
	"github.com/splitledger/internal/platform/messaging/producers"
)

// BalanceServiceImpl implements the BalanceService interface. Every balance
// read is a full recomputation over the participant's completed expenses; the
// generation tracker rejects results that were superseded by a newer
// computation for the same participant while in flight.
type BalanceServiceImpl struct {
	participantRepo participant.Repository
	expenseRepo     expense.Repository
	aggregator      *balance.Aggregator
	tracker         *balance.GenerationTracker
	producer        producers.MessagePublisher
	logger          *slog.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(
	logger *slog.Logger,
	participantRepo participant.Repository,
	expenseRepo expense.Repository,
	aggregator *balance.Aggregator,
	producer producers.MessagePublisher,
) BalanceService {
	return &BalanceServiceImpl{
		participantRepo: participantRepo,
		expenseRepo:     expenseRepo,
		aggregator:      aggregator,
		tracker:         balance.NewGenerationTracker(),
		producer:        producer,
		logger:          logger,
	}
}

// GetBalance recomputes the participant's balance from the full expense set.
// An empty currency defaults to the participant's display currency.
func (s *BalanceServiceImpl) GetBalance(ctx context.Context, participantID uuid.UUID, currency string, groupID *uuid.UUID) (*balance.Balance, error) {
	p, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = p.DisplayCurrency
	}

	generation := s.tracker.Begin(participantID)

	expenses, err := s.expenseRepo.ListInvolving(ctx, participantID, groupID)
	if err != nil {
		s.logger.Error("Failed to list expenses for balance",
			"participant_id", participantID.String(),
			"error", err,
		)
		return nil, err
	}

	bal, err := s.aggregator.Aggregate(ctx, expenses, participantID, currency)
	if err != nil {
		return nil, err
	}

	// A newer computation for this participant started while we were
	// aggregating; its result reflects a fresher expense set, so this one
	// must not be surfaced.
	if !s.tracker.IsCurrent(participantID, generation) {
		s.logger.Info("Balance computation superseded",
			"participant_id", participantID.String(),
			"generation", generation,
		)
		return nil, balance.ErrStaleComputation{ViewerID: participantID}
	}

	s.logger.Debug("Balance computed",
		"participant_id", participantID.String(),
		"currency", currency,
		"expense_count", len(expenses),
		"counterparties", len(bal.Details),
		"approximate", bal.Approximate,
	)

	return bal, nil
}

// SettleUp computes the current net against one counterparty and publishes the
// settlement expense that cancels it through the regular recording pipeline.
// Returns nil when the pair is already within the settle tolerance.
func (s *BalanceServiceImpl) SettleUp(ctx context.Context, participantID, counterpartyID uuid.UUID, currency string, groupID *uuid.UUID, correlationID string) (*shared.ExpenseRequest, error) {
	// The counterparty must exist before any expense names them as payer
	if _, err := s.participantRepo.GetByID(ctx, counterpartyID); err != nil {
		return nil, err
	}

	bal, err := s.GetBalance(ctx, participantID, currency, groupID)
	if err != nil {
		return nil, err
	}

	net := bal.Details[counterpartyID]

	req := settlement.Generate(net, participantID, counterpartyID, bal.Currency)
	if req == nil {
		s.logger.Info("Pair already settled, no settlement generated",
			"participant_id", participantID.String(),
			"counterparty_id", counterpartyID.String(),
			"net", net,
		)
		return nil, nil
	}

	req.GroupID = groupID
	req.CorrelationID = correlationID

	if err := s.producer.Publish(ctx, req.ExpenseID.String(), req); err != nil {
		s.logger.Error("Failed to publish settlement expense",
			"expense_id", req.ExpenseID.String(),
			"participant_id", participantID.String(),
			"counterparty_id", counterpartyID.String(),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Settlement expense published",
		"expense_id", req.ExpenseID.String(),
		"payer_id", req.PayerID.String(),
		"amount", req.Amount,
		"currency", req.Currency,
	)

	return req, nil
}
