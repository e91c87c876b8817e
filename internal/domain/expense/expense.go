package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/shared"
)

// Expense represents a recorded expense document in the ledger store.
// SplitValues mirrors the raw split spec from the recording request: amounts
// for CUSTOM_AMOUNT, percentages for CUSTOM_PERCENTAGE, empty for EQUAL.
type Expense struct {
	ExpenseID      uuid.UUID            `json:"expense_id" bson:"expense_id"`
	PayerID        uuid.UUID            `json:"payer_id" bson:"payer_id"`
	GroupID        *uuid.UUID           `json:"group_id,omitempty" bson:"group_id,omitempty"`
	Description    string               `json:"description" bson:"description"`
	Amount         float64              `json:"amount" bson:"amount"`
	Currency       string               `json:"currency" bson:"currency"`
	SplitMethod    shared.SplitMethod   `json:"split_method" bson:"split_method"`
	Participants   []uuid.UUID          `json:"participants" bson:"participants"`
	SplitValues    map[string]float64   `json:"split_values,omitempty" bson:"split_values,omitempty"`
	Category       string               `json:"category" bson:"category"`
	IdempotencyKey string               `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	CorrelationID  string               `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Status         shared.ExpenseStatus `json:"status" bson:"status"`
	FailureReason  string               `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
	ProcessedAt    *time.Time           `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}

// FromRequest builds a ledger document from a recording request
func FromRequest(req *shared.ExpenseRequest) *Expense {
	return &Expense{
		ExpenseID:      req.ExpenseID,
		PayerID:        req.PayerID,
		GroupID:        req.GroupID,
		Description:    req.Description,
		Amount:         req.Amount,
		Currency:       req.Currency,
		SplitMethod:    req.SplitMethod,
		Participants:   req.Participants,
		SplitValues:    req.SplitValues,
		Category:       req.Category,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  req.CorrelationID,
		CreatedAt:      req.Timestamp,
	}
}

// IsSettlement reports whether the expense was generated to zero out a balance
func (e *Expense) IsSettlement() bool {
	return e.Category == shared.CategorySettlement
}
