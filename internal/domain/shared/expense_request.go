package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSplitMethod = errors.New("invalid split method")
	ErrInvalidCurrency    = errors.New("invalid currency")
)

// ExpenseRequest defines a Kafka message for expense recording.
// SplitValues carries per-participant amounts for CUSTOM_AMOUNT splits and
// per-participant percentages for CUSTOM_PERCENTAGE splits; it is empty for
// EQUAL splits. Keys are participant IDs in string form so the payload
// round-trips through JSON without a custom codec.
type ExpenseRequest struct {
	ExpenseID      uuid.UUID          `json:"expense_id"`
	PayerID        uuid.UUID          `json:"payer_id"`
	GroupID        *uuid.UUID         `json:"group_id,omitempty"`
	Description    string             `json:"description"`
	Amount         float64            `json:"amount"`
	Currency       string             `json:"currency"`
	SplitMethod    SplitMethod        `json:"split_method"`
	Participants   []uuid.UUID        `json:"participants"`
	SplitValues    map[string]float64 `json:"split_values,omitempty"`
	Category       string             `json:"category"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	CorrelationID  string             `json:"correlation_id"`
	Timestamp      time.Time          `json:"timestamp"`
}
