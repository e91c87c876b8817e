package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/splitledger/internal/api_gateway/service"
	"github.com/splitledger/internal/domain/participant"
)

// ParticipantHandler handles HTTP requests for participant operations
type ParticipantHandler struct {
	participantService service.ParticipantService
	logger             *slog.Logger
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(logger *slog.Logger, participantService service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		logger:             logger,
	}
}

// Create handles registration of a new participant, validating the request and
// checking for duplicate emails
func (h *ParticipantHandler) Create(c *gin.Context) {
	var req CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.participantService.CreateParticipant(c.Request.Context(), req.DisplayName, req.Email, req.DisplayCurrency)
	if err != nil {
		var duplicateEmailErr participant.ErrDuplicateEmail
		if errors.As(err, &duplicateEmailErr) {
			h.logger.Warn("Attempt to register participant with duplicate email", "email", duplicateEmailErr.Email)
			RespondConflict(c, "Participant with this email already exists")
			return
		}
		h.logger.Error("Failed to create participant", "error", err)
		RespondInternalError(c)
		return
	}

	response := mapParticipantToResponse(p)
	RespondCreated(c, response)
}

// GetByID retrieves a participant by its ID, returning 404 if not found
func (h *ParticipantHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid participant ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid participant ID")
		return
	}

	p, err := h.participantService.GetParticipantByID(c.Request.Context(), id)
	if err != nil {
		var notFound participant.ErrParticipantNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Participant not found")
			return
		}
		h.logger.Error("Failed to get participant", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	response := mapParticipantToResponse(p)
	RespondOK(c, response)
}

// mapParticipantToResponse maps a participant entity to a response DTO
func mapParticipantToResponse(p *participant.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:              p.ID.String(),
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		DisplayCurrency: p.DisplayCurrency,
		TotalPaid:       p.TotalPaid,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}
