package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/split"
	"github.com/splitledger/internal/platform/messaging/producers"
)

// ExpenseServiceImpl implements the ExpenseService interface
type ExpenseServiceImpl struct {
	expenseRepo expense.Repository
	producer    producers.MessagePublisher
	logger      *slog.Logger
}

// NewExpenseService creates a new expense service
func NewExpenseService(logger *slog.Logger, expenseRepo expense.Repository, producer producers.MessagePublisher) ExpenseService {
	return &ExpenseServiceImpl{
		expenseRepo: expenseRepo,
		producer:    producer,
		logger:      logger,
	}
}

// CreateExpense initiates expense recording, supporting idempotency via idempotencyKey.
// The split spec is validated before publishing so obviously malformed requests
// are rejected synchronously instead of landing in the failed set.
// Returns expense ID, existing document (if found via idempotencyKey), and any error
func (s *ExpenseServiceImpl) CreateExpense(ctx context.Context, expenseRequest *shared.ExpenseRequest) (string, *expense.Expense, error) {
	if err := split.Validate(expenseRequest.Amount, expenseRequest.SplitMethod, splitSpecOf(expenseRequest)); err != nil {
		s.logger.Warn("Rejected expense with invalid split",
			"payer_id", expenseRequest.PayerID.String(),
			"split_method", string(expenseRequest.SplitMethod),
			"error", err,
		)
		return "", nil, err
	}

	idempotencyKey := expenseRequest.IdempotencyKey

	if idempotencyKey != "" {
		existingExpense, err := s.expenseRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			s.logger.Error("Failed to check for existing expense with idempotency key",
				"idempotency_key", idempotencyKey,
				"error", err,
			)
			return "", nil, err
		}

		if existingExpense != nil {
			s.logger.Info("Found existing expense with idempotency key",
				"idempotency_key", idempotencyKey,
				"expense_id", existingExpense.ExpenseID,
				"status", string(existingExpense.Status),
			)
			return existingExpense.ExpenseID.String(), existingExpense, nil
		}
	}

	key := expenseRequest.ExpenseID.String()
	if err := s.producer.Publish(ctx, key, expenseRequest); err != nil {
		s.logger.Error("Failed to publish expense request",
			"payer_id", expenseRequest.PayerID,
			"amount", expenseRequest.Amount,
			"currency", expenseRequest.Currency,
			"error", err,
		)
		return "", nil, err
	}

	s.logger.Info("Expense request published",
		"expense_id", expenseRequest.ExpenseID,
		"payer_id", expenseRequest.PayerID,
		"amount", expenseRequest.Amount,
		"currency", expenseRequest.Currency,
	)

	return expenseRequest.ExpenseID.String(), nil, nil
}

// GetExpenseByID retrieves an expense by its ID. Returns nil if not found
func (s *ExpenseServiceImpl) GetExpenseByID(ctx context.Context, expenseID uuid.UUID) (*expense.Expense, error) {
	res, err := s.expenseRepo.GetByExpenseID(ctx, expenseID)
	if err != nil {
		var errExpenseNotFound expense.ErrExpenseNotFound
		if errors.As(err, &errExpenseNotFound) {
			s.logger.Info("Expense not found", "expense_id", expenseID.String())
			return nil, nil
		}
		s.logger.Error("Failed to get expense by ID", "expense_id", expenseID.String(), "error", err)
		return nil, err
	}
	return res, nil
}

// GetExpensesByParticipantID retrieves paginated expenses paid by a participant
// Returns documents, total count, and any error
func (s *ExpenseServiceImpl) GetExpensesByParticipantID(ctx context.Context, participantID uuid.UUID, page, perPage int) ([]*expense.Expense, int64, error) {
	offset := (page - 1) * perPage

	expenses, err := s.expenseRepo.GetByParticipantID(ctx, participantID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.expenseRepo.CountByParticipantID(ctx, participantID)
	if err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

// splitSpecOf converts the wire-level split values into an engine split spec
func splitSpecOf(req *shared.ExpenseRequest) split.Spec {
	spec := split.Spec{
		PayerID:      req.PayerID,
		Participants: req.Participants,
	}
	if len(req.SplitValues) > 0 {
		spec.Values = make(map[uuid.UUID]float64, len(req.SplitValues))
		for key, v := range req.SplitValues {
			id, err := uuid.Parse(key)
			if err != nil {
				continue
			}
			spec.Values[id] = v
		}
	}
	return spec
}
