package participant

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines participant persistence operations
type Repository interface {
	Create(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Participant, error)
	GetByEmail(ctx context.Context, email string) (*Participant, error)
	Update(ctx context.Context, p *Participant) error

	// LockForUpdate acquires a pessimistic lock for expense processing
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Participant, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	ParticipantID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for participant: " + e.ParticipantID.String()
}

// ErrParticipantNotFound indicates missing participant
type ErrParticipantNotFound struct {
	ParticipantID uuid.UUID
}

func (e ErrParticipantNotFound) Error() string {
	return "participant not found: " + e.ParticipantID.String()
}

// Is implements the errors.Is interface for ErrParticipantNotFound
func (e ErrParticipantNotFound) Is(target error) bool {
	t, ok := target.(ErrParticipantNotFound)
	if !ok {
		return false
	}
	if t.ParticipantID == uuid.Nil {
		return true
	}
	return e.ParticipantID == t.ParticipantID
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "participant with email already exists: " + e.Email
}
