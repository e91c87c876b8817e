package components

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/splitledger/internal/domain/outbox"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

func TestOutboxManager_CreateOutboxEntry(t *testing.T) {
	expenseID := uuid.New()
	payerID := uuid.New()
	now := time.Now()
	dbError := errors.New("db error")

	tests := []struct {
		name          string
		request       *shared.ExpenseRequest
		payer         *participant.Participant
		setupMocks    func(mockRepo *MockOutboxRepo)
		errorContains string
	}{
		{
			name: "successful outbox entry creation",
			request: &shared.ExpenseRequest{
				ExpenseID:    expenseID,
				PayerID:      payerID,
				Description:  "Dinner",
				Amount:       60,
				Currency:     "USD",
				SplitMethod:  shared.SplitMethodEqual,
				Participants: []uuid.UUID{payerID, uuid.New()},
				Category:     "Food",
				Timestamp:    now,
			},
			payer: &participant.Participant{
				ID:              payerID,
				DisplayCurrency: "USD",
			},
			setupMocks: func(mockRepo *MockOutboxRepo) {
				mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(msg *outbox.Message) bool {
					if msg.ExpenseID != expenseID || msg.Status != shared.OutboxStatusPending {
						return false
					}
					exp, err := msg.GetExpense()
					return err == nil && exp.Status == shared.ExpenseStatusProcessing
				})).Return(nil)
			},
			errorContains: "",
		},
		{
			name: "error creating outbox entry",
			request: &shared.ExpenseRequest{
				ExpenseID:    expenseID,
				PayerID:      payerID,
				Amount:       60,
				Currency:     "USD",
				SplitMethod:  shared.SplitMethodEqual,
				Participants: []uuid.UUID{payerID},
				Timestamp:    now,
			},
			payer: &participant.Participant{
				ID: payerID,
			},
			setupMocks: func(mockRepo *MockOutboxRepo) {
				mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(dbError)
			},
			errorContains: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockOutboxRepo{}
			logger := slog.Default()
			manager := NewOutboxManager(mockRepo, logger)

			tt.setupMocks(mockRepo)
			ctx := context.Background()

			err := manager.CreateOutboxEntry(ctx, nil, tt.request, tt.payer)

			if tt.errorContains != "" {
				assert.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.errorContains),
					"Expected error to contain '%s', got '%s'", tt.errorContains, err.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
