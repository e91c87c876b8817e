package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitledger/internal/api_gateway/middleware"
	"github.com/splitledger/internal/api_gateway/service"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/split"
)

// ExpenseHandler handles HTTP requests for expense recording operations
type ExpenseHandler struct {
	expenseService service.ExpenseService
	logger         *slog.Logger
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(logger *slog.Logger, expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// Create initiates recording of a new expense with idempotency support
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	payerID, err := uuid.Parse(req.PayerID)
	if err != nil {
		h.logger.Error("Invalid payer ID", "payer_id", req.PayerID, "error", err)
		RespondBadRequest(c, "Invalid payer ID")
		return
	}

	var groupID *uuid.UUID
	if req.GroupID != "" {
		gid, err := uuid.Parse(req.GroupID)
		if err != nil {
			h.logger.Error("Invalid group ID", "group_id", req.GroupID, "error", err)
			RespondBadRequest(c, "Invalid group ID")
			return
		}
		groupID = &gid
	}

	participants := make([]uuid.UUID, 0, len(req.Participants))
	for _, raw := range req.Participants {
		pid, err := uuid.Parse(raw)
		if err != nil {
			h.logger.Error("Invalid participant ID in split set", "participant_id", raw, "error", err)
			RespondBadRequest(c, "Invalid participant ID in split set")
			return
		}
		participants = append(participants, pid)
	}

	for key := range req.SplitValues {
		if _, err := uuid.Parse(key); err != nil {
			h.logger.Error("Invalid participant ID in split values", "participant_id", key, "error", err)
			RespondBadRequest(c, "Invalid participant ID in split values")
			return
		}
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	expenseRequest := &shared.ExpenseRequest{
		ExpenseID:      uuid.New(),
		PayerID:        payerID,
		GroupID:        groupID,
		Description:    req.Description,
		Amount:         req.Amount,
		Currency:       req.Currency,
		SplitMethod:    shared.SplitMethod(req.SplitMethod),
		Participants:   participants,
		SplitValues:    req.SplitValues,
		Category:       req.Category,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  middleware.GetCorrelationID(c),
		Timestamp:      time.Now(),
	}

	expenseID, existing, err := h.expenseService.CreateExpense(c.Request.Context(), expenseRequest)
	if err != nil {
		var invalidSplit split.ErrInvalidSplit
		if errors.As(err, &invalidSplit) {
			RespondBadRequest(c, "Invalid split: "+invalidSplit.Reason)
			return
		}
		h.logger.Error("Failed to create expense", "error", err)
		RespondInternalError(c)
		return
	}
	if existing != nil {
		RespondOK(c, mapExpenseToResponse(existing))
		return
	}

	RespondAccepted(c, gin.H{
		"expense_id": expenseID,
		"status":     "PENDING",
	})
}

// GetByID retrieves expense details by ID, returns 404 if not found
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid expense ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid expense ID")
		return
	}

	exp, err := h.expenseService.GetExpenseByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get expense", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if exp == nil {
		RespondNotFound(c, "Expense not found")
		return
	}

	response := mapExpenseToResponse(exp)
	RespondOK(c, response)
}

// GetByParticipantID retrieves paginated expense history paid by a participant
func (h *ExpenseHandler) GetByParticipantID(c *gin.Context) {
	participantIDParam := c.Param("id")
	participantID, err := uuid.Parse(participantIDParam)
	if err != nil {
		h.logger.Error("Invalid participant ID", "participant_id", participantIDParam, "error", err)
		RespondBadRequest(c, "Invalid participant ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	expenses, total, err := h.expenseService.GetExpensesByParticipantID(
		c.Request.Context(),
		participantID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get expenses", "participant_id", participantIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	var responses []ExpenseResponse
	for _, exp := range expenses {
		responses = append(responses, mapExpenseToResponse(exp))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// mapExpenseToResponse maps an expense document to a response DTO
func mapExpenseToResponse(exp *expense.Expense) ExpenseResponse {
	response := ExpenseResponse{
		ExpenseID:     exp.ExpenseID.String(),
		PayerID:       exp.PayerID.String(),
		Description:   exp.Description,
		Amount:        exp.Amount,
		Currency:      exp.Currency,
		SplitMethod:   string(exp.SplitMethod),
		SplitValues:   exp.SplitValues,
		Category:      exp.Category,
		Status:        string(exp.Status),
		FailureReason: exp.FailureReason,
		CreatedAt:     exp.CreatedAt.Format(time.RFC3339),
	}

	if exp.GroupID != nil {
		response.GroupID = exp.GroupID.String()
	}
	for _, pid := range exp.Participants {
		response.Participants = append(response.Participants, pid.String())
	}
	if exp.ProcessedAt != nil {
		response.ProcessedAt = exp.ProcessedAt.Format(time.RFC3339)
	}

	return response
}
