package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/splitledger/internal/api_gateway/service"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/balance"
	"github.com/splitledger/internal/engine/rates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetBalance(ctx context.Context, participantID uuid.UUID, currency string, groupID *uuid.UUID) (*balance.Balance, error) {
	args := m.Called(ctx, participantID, currency, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.Balance), args.Error(1)
}

func (m *MockBalanceService) SettleUp(ctx context.Context, participantID, counterpartyID uuid.UUID, currency string, groupID *uuid.UUID, correlationID string) (*shared.ExpenseRequest, error) {
	args := m.Called(ctx, participantID, counterpartyID, currency, groupID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.ExpenseRequest), args.Error(1)
}

func TestBalanceHandler_GetBalance(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		counterpartyA := uuid.MustParse("22222222-2222-2222-2222-222222222222")
		counterpartyB := uuid.MustParse("11111111-1111-1111-1111-111111111111")
		expected := &balance.Balance{
			TotalOwed: 25.00,
			TotalOwes: 5.00,
			Details: map[uuid.UUID]float64{
				counterpartyA: 25.00,
				counterpartyB: -5.00,
			},
			Currency: "USD",
		}
		mockService.On("GetBalance", mock.Anything, participantID, "", (*uuid.UUID)(nil)).Return(expected, nil)

		router := setupTestRouter()
		router.GET("/participants/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+participantID.String()+"/balance", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		var responseBody BalanceResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, participantID.String(), responseBody.ParticipantID)
		assert.Equal(t, 25.00, responseBody.TotalOwed)
		assert.Equal(t, 5.00, responseBody.TotalOwes)
		assert.False(t, responseBody.Approximate)
		// Details sorted by counterparty ID for a stable payload
		require.Len(t, responseBody.Details, 2)
		assert.Equal(t, counterpartyB.String(), responseBody.Details[0].ParticipantID)
		assert.Equal(t, -5.00, responseBody.Details[0].Net)
		assert.Equal(t, counterpartyA.String(), responseBody.Details[1].ParticipantID)
		mockService.AssertExpectations(t)
	})

	t.Run("CurrencyOverridePassedThrough", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		expected := &balance.Balance{Details: map[uuid.UUID]float64{}, Currency: "EUR"}
		mockService.On("GetBalance", mock.Anything, participantID, "EUR", (*uuid.UUID)(nil)).Return(expected, nil)

		router := setupTestRouter()
		router.GET("/participants/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+participantID.String()+"/balance?currency=EUR", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("BadCurrencyRejected", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/participants/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+uuid.New().String()+"/balance?currency=EURO", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GroupScope", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		groupID := uuid.New()
		expected := &balance.Balance{Details: map[uuid.UUID]float64{}, Currency: "USD"}
		mockService.On("GetBalance", mock.Anything, participantID, "", &groupID).Return(expected, nil)

		router := setupTestRouter()
		router.GET("/participants/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+participantID.String()+"/balance?group_id="+groupID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ParticipantNotFound", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		mockService.On("GetBalance", mock.Anything, participantID, "", (*uuid.UUID)(nil)).
			Return(nil, participant.ErrParticipantNotFound{ParticipantID: participantID})

		router := setupTestRouter()
		router.GET("/participants/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+participantID.String()+"/balance", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("RateUnavailable", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		mockService.On("GetBalance", mock.Anything, participantID, "", (*uuid.UUID)(nil)).
			Return(nil, rates.ErrRateUnavailable{From: "THB", To: "USD"})

		router := setupTestRouter()
		router.GET("/participants/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+participantID.String()+"/balance", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "RATE_UNAVAILABLE", response.Error.Code)
	})

	t.Run("StaleComputationConflict", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		mockService.On("GetBalance", mock.Anything, participantID, "", (*uuid.UUID)(nil)).
			Return(nil, balance.ErrStaleComputation{ViewerID: participantID})

		router := setupTestRouter()
		router.GET("/participants/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+participantID.String()+"/balance", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestBalanceHandler_SettleUp(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("SettlementPublished", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		counterpartyID := uuid.New()
		settlementReq := &shared.ExpenseRequest{
			ExpenseID:   uuid.New(),
			PayerID:     counterpartyID,
			Amount:      15.00,
			Currency:    "USD",
			SplitMethod: shared.SplitMethodCustomAmount,
			Category:    shared.CategorySettlement,
		}
		mockService.On("SettleUp", mock.Anything, participantID, counterpartyID, "", (*uuid.UUID)(nil), mock.AnythingOfType("string")).
			Return(settlementReq, nil)

		router := setupTestRouter()
		router.POST("/participants/:id/settlements", handler.SettleUp)

		jsonBody, _ := json.Marshal(SettleUpRequest{CounterpartyID: counterpartyID.String()})
		req, _ := http.NewRequest(http.MethodPost, "/participants/"+participantID.String()+"/settlements", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		data, ok := topLevelResponse.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, settlementReq.ExpenseID.String(), data["expense_id"])
		assert.Equal(t, counterpartyID.String(), data["payer_id"])
		assert.Equal(t, "PENDING", data["status"])
		mockService.AssertExpectations(t)
	})

	t.Run("AlreadySettledReturnsNoContent", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		counterpartyID := uuid.New()
		mockService.On("SettleUp", mock.Anything, participantID, counterpartyID, "", (*uuid.UUID)(nil), mock.AnythingOfType("string")).
			Return(nil, nil)

		router := setupTestRouter()
		router.POST("/participants/:id/settlements", handler.SettleUp)

		jsonBody, _ := json.Marshal(SettleUpRequest{CounterpartyID: counterpartyID.String()})
		req, _ := http.NewRequest(http.MethodPost, "/participants/"+participantID.String()+"/settlements", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("SelfSettlementRejected", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()

		router := setupTestRouter()
		router.POST("/participants/:id/settlements", handler.SettleUp)

		jsonBody, _ := json.Marshal(SettleUpRequest{CounterpartyID: participantID.String()})
		req, _ := http.NewRequest(http.MethodPost, "/participants/"+participantID.String()+"/settlements", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "SettleUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CounterpartyNotFound", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		participantID := uuid.New()
		counterpartyID := uuid.New()
		mockService.On("SettleUp", mock.Anything, participantID, counterpartyID, "", (*uuid.UUID)(nil), mock.AnythingOfType("string")).
			Return(nil, participant.ErrParticipantNotFound{ParticipantID: counterpartyID})

		router := setupTestRouter()
		router.POST("/participants/:id/settlements", handler.SettleUp)

		jsonBody, _ := json.Marshal(SettleUpRequest{CounterpartyID: counterpartyID.String()})
		req, _ := http.NewRequest(http.MethodPost, "/participants/"+participantID.String()+"/settlements", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("MissingCounterpartyRejected", func(t *testing.T) {
		mockService := new(MockBalanceService)
		handler := NewBalanceHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/participants/:id/settlements", handler.SettleUp)

		req, _ := http.NewRequest(http.MethodPost, "/participants/"+uuid.New().String()+"/settlements", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "SettleUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

var _ service.BalanceService = (*MockBalanceService)(nil)
