package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/shared"
)

// Message stores a recorded expense for reliable publication to the ledger store
type Message struct {
	ID            int64               `json:"id"`
	ExpenseID     uuid.UUID           `json:"expense_id"`
	PayerID       uuid.UUID           `json:"payer_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(exp *expense.Expense) (*Message, error) {
	payload, err := json.Marshal(exp)
	if err != nil {
		return nil, err
	}

	return &Message{
		ExpenseID: exp.ExpenseID,
		PayerID:   exp.PayerID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetExpense extracts the expense document from the payload
func (m *Message) GetExpense() (*expense.Expense, error) {
	var exp expense.Expense
	if err := json.Unmarshal(m.Payload, &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}
