package handler

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitledger/internal/api_gateway/middleware"
	"github.com/splitledger/internal/api_gateway/service"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/engine/balance"
	"github.com/splitledger/internal/engine/rates"
)

// BalanceHandler handles HTTP requests for balance reconciliation operations
type BalanceHandler struct {
	balanceService service.BalanceService
	logger         *slog.Logger
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(logger *slog.Logger, balanceService service.BalanceService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		logger:         logger,
	}
}

// GetBalance recomputes and returns the participant's net balances. The
// optional currency query overrides the participant's display currency; the
// optional group_id query scopes the computation to one group.
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	idParam := c.Param("id")
	participantID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid participant ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid participant ID")
		return
	}

	currency := c.Query("currency")
	if currency != "" && len(currency) != 3 {
		RespondBadRequest(c, "Currency must be a 3-letter code")
		return
	}

	var groupID *uuid.UUID
	if raw := c.Query("group_id"); raw != "" {
		gid, err := uuid.Parse(raw)
		if err != nil {
			h.logger.Error("Invalid group ID", "group_id", raw, "error", err)
			RespondBadRequest(c, "Invalid group ID")
			return
		}
		groupID = &gid
	}

	bal, err := h.balanceService.GetBalance(c.Request.Context(), participantID, currency, groupID)
	if err != nil {
		h.respondBalanceError(c, idParam, err)
		return
	}

	RespondOK(c, mapBalanceToResponse(participantID, bal))
}

// SettleUp generates the expense that zeroes out the balance with one
// counterparty. Responds 204 when the pair is already settled, 202 when a
// settlement expense was published.
func (h *BalanceHandler) SettleUp(c *gin.Context) {
	idParam := c.Param("id")
	participantID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid participant ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid participant ID")
		return
	}

	var req SettleUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	counterpartyID, err := uuid.Parse(req.CounterpartyID)
	if err != nil {
		h.logger.Error("Invalid counterparty ID", "counterparty_id", req.CounterpartyID, "error", err)
		RespondBadRequest(c, "Invalid counterparty ID")
		return
	}
	if counterpartyID == participantID {
		RespondBadRequest(c, "Cannot settle up with yourself")
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

	settlementReq, err := h.balanceService.SettleUp(
		c.Request.Context(),
		participantID,
		counterpartyID,
		req.Currency,
		groupID,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		h.respondBalanceError(c, idParam, err)
		return
	}

	if settlementReq == nil {
		RespondNoContent(c)
		return
	}

	RespondAccepted(c, gin.H{
		"expense_id": settlementReq.ExpenseID.String(),
		"payer_id":   settlementReq.PayerID.String(),
		"amount":     settlementReq.Amount,
		"currency":   settlementReq.Currency,
		"status":     "PENDING",
	})
}

// respondBalanceError maps balance computation errors to HTTP responses
func (h *BalanceHandler) respondBalanceError(c *gin.Context, idParam string, err error) {
	var notFound participant.ErrParticipantNotFound
	if errors.As(err, &notFound) {
		RespondNotFound(c, "Participant not found")
		return
	}

	var rateUnavailable rates.ErrRateUnavailable
	if errors.As(err, &rateUnavailable) {
		RespondUnprocessable(c, "RATE_UNAVAILABLE", rateUnavailable.Error())
		return
	}

	var stale balance.ErrStaleComputation
	if errors.As(err, &stale) {
		RespondConflict(c, "Balance was recomputed concurrently, retry the request")
		return
	}

	h.logger.Error("Failed to compute balance", "id", idParam, "error", err)
	RespondInternalError(c)
}

// mapBalanceToResponse maps a computed balance to a response DTO with
// counterparties in deterministic order
func mapBalanceToResponse(participantID uuid.UUID, bal *balance.Balance) BalanceResponse {
	details := make([]BalanceDetail, 0, len(bal.Details))
	for pid, net := range bal.Details {
		details = append(details, BalanceDetail{
			ParticipantID: pid.String(),
			Net:           net,
		})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].ParticipantID < details[j].ParticipantID
	})

	return BalanceResponse{
		ParticipantID: participantID.String(),
		Currency:      bal.Currency,
		TotalOwed:     bal.TotalOwed,
		TotalOwes:     bal.TotalOwes,
		Approximate:   bal.Approximate,
		Details:       details,
	}
}
