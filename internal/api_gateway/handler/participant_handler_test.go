package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitledger/internal/api_gateway/service"
	"github.com/splitledger/internal/domain/participant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockParticipantService struct {
	mock.Mock
}

func (m *MockParticipantService) CreateParticipant(ctx context.Context, displayName string, email string, displayCurrency string) (*participant.Participant, error) {
	args := m.Called(ctx, displayName, email, displayCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func (m *MockParticipantService) GetParticipantByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

func TestParticipantHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockParticipantService)
		handler := NewParticipantHandler(logger, mockService)

		now := time.Now()
		expected := &participant.Participant{
			ID:              uuid.New(),
			DisplayName:     "Ana",
			Email:           "ana@example.com",
			DisplayCurrency: "EUR",
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		mockService.On("CreateParticipant", mock.Anything, "Ana", "ana@example.com", "EUR").Return(expected, nil)

		router := setupTestRouter()
		router.POST("/participants", handler.Create)

		reqBody := CreateParticipantRequest{
			DisplayName:     "Ana",
			Email:           "ana@example.com",
			DisplayCurrency: "EUR",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/participants", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var topLevelResponse Response
		err := json.Unmarshal(rr.Body.Bytes(), &topLevelResponse)
		require.NoError(t, err)
		require.NotNil(t, topLevelResponse.Data)

		var responseBody ParticipantResponse
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, expected.ID.String(), responseBody.ID)
		assert.Equal(t, expected.DisplayName, responseBody.DisplayName)
		assert.Equal(t, expected.Email, responseBody.Email)
		assert.Equal(t, expected.DisplayCurrency, responseBody.DisplayCurrency)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockParticipantService)
		handler := NewParticipantHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/participants", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/participants", bytes.NewBufferString(`{"invalid`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidCurrencyLength", func(t *testing.T) {
		mockService := new(MockParticipantService)
		handler := NewParticipantHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/participants", handler.Create)

		reqBody := CreateParticipantRequest{
			DisplayName:     "Ana",
			Email:           "ana@example.com",
			DisplayCurrency: "EURO",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/participants", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateParticipant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockService := new(MockParticipantService)
		handler := NewParticipantHandler(logger, mockService)

		mockService.On("CreateParticipant", mock.Anything, "Ana", "ana@example.com", "EUR").
			Return(nil, participant.ErrDuplicateEmail{Email: "ana@example.com"})

		router := setupTestRouter()
		router.POST("/participants", handler.Create)

		reqBody := CreateParticipantRequest{
			DisplayName:     "Ana",
			Email:           "ana@example.com",
			DisplayCurrency: "EUR",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/participants", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "Participant with this email already exists", response.Error.Message)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockParticipantService)
		handler := NewParticipantHandler(logger, mockService)

		mockService.On("CreateParticipant", mock.Anything, "Ana", "ana@example.com", "EUR").
			Return(nil, errors.New("service unavailable"))

		router := setupTestRouter()
		router.POST("/participants", handler.Create)

		reqBody := CreateParticipantRequest{
			DisplayName:     "Ana",
			Email:           "ana@example.com",
			DisplayCurrency: "EUR",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/participants", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestParticipantHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockParticipantService)
		handler := NewParticipantHandler(logger, mockService)

		participantID := uuid.New()
		now := time.Now()
		expected := &participant.Participant{
			ID:              participantID,
			DisplayName:     "Ben",
			Email:           "ben@example.com",
			DisplayCurrency: "USD",
			TotalPaid:       120.50,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		mockService.On("GetParticipantByID", mock.Anything, participantID).Return(expected, nil)

		router := setupTestRouter()
		router.GET("/participants/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+participantID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Data)

		var responseBody ParticipantResponse
		dataBytes, marshalErr := json.Marshal(topLevelResponse.Data)
		require.NoError(t, marshalErr)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, expected.ID.String(), responseBody.ID)
		assert.Equal(t, expected.TotalPaid, responseBody.TotalPaid)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidUUID", func(t *testing.T) {
		mockService := new(MockParticipantService)
		handler := NewParticipantHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/participants/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/participants/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockParticipantService)
		handler := NewParticipantHandler(logger, mockService)

		participantID := uuid.New()
		mockService.On("GetParticipantByID", mock.Anything, participantID).
			Return(nil, participant.ErrParticipantNotFound{ParticipantID: participantID})

		router := setupTestRouter()
		router.GET("/participants/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/participants/"+participantID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

var _ service.ParticipantService = (*MockParticipantService)(nil)
