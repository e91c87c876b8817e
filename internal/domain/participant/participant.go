package participant

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyDisplayName      = errors.New("display name cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrInvalidPayment        = errors.New("payment amount must be positive")
)

// Participant represents a party who can pay for or be charged a share of an expense
type Participant struct {
	ID              uuid.UUID `json:"id"`
	DisplayName     string    `json:"display_name"`
	Email           string    `json:"email"`
	DisplayCurrency string    `json:"display_currency"` // Currency balances are presented in
	TotalPaid       float64   `json:"total_paid"`       // Denormalized stat, never consulted by the engine
	Version         int       `json:"version"`          // For optimistic locking
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewParticipant creates a new participant with the given details
func NewParticipant(displayName string, email string, displayCurrency string) (*Participant, error) {
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}
	if len(displayCurrency) != 3 { // Basic validation for currency code length
		return nil, ErrInvalidCurrencyFormat
	}

	return &Participant{
		ID:              uuid.New(),
		DisplayName:     displayName,
		Email:           email,
		DisplayCurrency: displayCurrency,
		TotalPaid:       0,
		Version:         1,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}, nil
}

// RecordPayment adds a recorded expense amount to the participant's paid total.
// The amount is in the participant's recording currency; the stat is advisory
// and is not part of any balance computation.
func (p *Participant) RecordPayment(amount float64) error {
	if amount <= 0 {
		return ErrInvalidPayment
	}

	p.TotalPaid += amount
	p.UpdatedAt = time.Now()
	p.Version++
	return nil
}
