package handler

// CreateParticipantRequest represents a request to register a new participant
type CreateParticipantRequest struct {
	DisplayName     string `json:"display_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	DisplayCurrency string `json:"display_currency" binding:"required,len=3"`
}

// ParticipantResponse represents a participant in API responses
type ParticipantResponse struct {
	ID              string  `json:"id"`
	DisplayName     string  `json:"display_name"`
	Email           string  `json:"email"`
	DisplayCurrency string  `json:"display_currency"`
	TotalPaid       float64 `json:"total_paid"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// CreateExpenseRequest represents a request to record a new expense
type CreateExpenseRequest struct {
	PayerID        string             `json:"payer_id" binding:"required,uuid"`
	GroupID        string             `json:"group_id,omitempty" binding:"omitempty,uuid"`
	Description    string             `json:"description"`
	Amount         float64            `json:"amount" binding:"required,gt=0"`
	Currency       string             `json:"currency" binding:"required,len=3"`
	SplitMethod    string             `json:"split_method" binding:"required,oneof=EQUAL CUSTOM_AMOUNT CUSTOM_PERCENTAGE"`
	Participants   []string           `json:"participants" binding:"required,min=1,dive,uuid"`
	SplitValues    map[string]float64 `json:"split_values,omitempty"`
	Category       string             `json:"category,omitempty"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ExpenseID     string             `json:"expense_id"`
	PayerID       string             `json:"payer_id"`
	GroupID       string             `json:"group_id,omitempty"`
	Description   string             `json:"description"`
	Amount        float64            `json:"amount"`
	Currency      string             `json:"currency"`
	SplitMethod   string             `json:"split_method"`
	Participants  []string           `json:"participants"`
	SplitValues   map[string]float64 `json:"split_values,omitempty"`
	Category      string             `json:"category,omitempty"`
	Status        string             `json:"status"`
	FailureReason string             `json:"failure_reason,omitempty"`
	CreatedAt     string             `json:"created_at"`
	ProcessedAt   string             `json:"processed_at,omitempty"`
}

// ExpenseListResponse represents a list of expenses in API responses
type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

// BalanceDetail represents the net position against one counterparty.
// A positive net means the counterparty owes the viewer.
type BalanceDetail struct {
	ParticipantID string  `json:"participant_id"`
	Net           float64 `json:"net"`
}

// BalanceResponse represents a participant's reconciled balance
type BalanceResponse struct {
	ParticipantID string          `json:"participant_id"`
	Currency      string          `json:"currency"`
	TotalOwed     float64         `json:"total_owed"`
	TotalOwes     float64         `json:"total_owes"`
	Approximate   bool            `json:"approximate"`
	Details       []BalanceDetail `json:"details"`
}

// SettleUpRequest represents a request to settle the balance with one counterparty
type SettleUpRequest struct {
	CounterpartyID string `json:"counterparty_id" binding:"required,uuid"`
	Currency       string `json:"currency,omitempty" binding:"omitempty,len=3"`
	GroupID        string `json:"group_id,omitempty" binding:"omitempty,uuid"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
