package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/participant"
)

// ParticipantServiceImpl implements the ParticipantService interface
type ParticipantServiceImpl struct {
	participantRepo participant.Repository
}

// NewParticipantService creates a new participant service
func NewParticipantService(participantRepo participant.Repository) ParticipantService {
	return &ParticipantServiceImpl{
		participantRepo: participantRepo,
	}
}

// CreateParticipant registers a new participant, checking for duplicate emails
func (s *ParticipantServiceImpl) CreateParticipant(ctx context.Context, displayName string, email string, displayCurrency string) (*participant.Participant, error) {
	existing, err := s.participantRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, participant.ErrDuplicateEmail{Email: email}
	}

	p, err := participant.NewParticipant(displayName, email, displayCurrency)
	if err != nil {
		return nil, err
	}

	if err := s.participantRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetParticipantByID retrieves a participant by its ID, returns ErrParticipantNotFound if not found
func (s *ParticipantServiceImpl) GetParticipantByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	return s.participantRepo.GetByID(ctx, id)
}
