package shared

// SplitMethod defines how an expense amount is divided among participants
type SplitMethod string

const (
	SplitMethodEqual            SplitMethod = "EQUAL"
	SplitMethodCustomAmount     SplitMethod = "CUSTOM_AMOUNT"
	SplitMethodCustomPercentage SplitMethod = "CUSTOM_PERCENTAGE"
)

// CategorySettlement marks synthetic expenses generated to zero out a balance
const CategorySettlement = "Settlement"

// ExpenseStatus defines expense processing states
type ExpenseStatus string

const (
	ExpenseStatusPending    ExpenseStatus = "PENDING"
	ExpenseStatusProcessing ExpenseStatus = "PROCESSING"
	ExpenseStatusCompleted  ExpenseStatus = "COMPLETED"
	ExpenseStatusFailed     ExpenseStatus = "FAILED"
)

// FailureReason defines expense failure categories
type FailureReason string

const (
	FailureReasonPayerNotFound   FailureReason = "PAYER_NOT_FOUND"
	FailureReasonInvalidSplit    FailureReason = "INVALID_SPLIT"
	FailureReasonInvalidAmount   FailureReason = "INVALID_AMOUNT"
	FailureReasonInvalidCurrency FailureReason = "INVALID_CURRENCY"
	FailureReasonRecordingFailed FailureReason = "RECORDING_FAILED" // Generic reason if more specific one isn't identified
	FailureReasonCommitFailed    FailureReason = "COMMIT_FAILED"
	FailureReasonUnknownError    FailureReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
