package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/shared"
)

const (
	// ExpenseCollectionName is the name of the expense collection in MongoDB
	ExpenseCollectionName = "expenses"
)

// ExpenseRepository implements the expense.Repository interface for MongoDB
type ExpenseRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewExpenseRepository creates a new MongoDB expense repository
func NewExpenseRepository(logger *slog.Logger, db *mongo.Database) expense.Repository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new expense document after checking for duplicates.
// Returns ErrDuplicateExpense if a document with the same expense ID exists.
func (r *ExpenseRepository) Create(ctx context.Context, exp *expense.Expense) error {
	collection := r.db.Collection(ExpenseCollectionName)

	// Check if the expense already exists
	existing, err := r.GetByExpenseID(ctx, exp.ExpenseID)
	if err != nil && !errors.Is(err, expense.ErrExpenseNotFound{}) {
		r.logger.Error("Failed to check for existing expense",
			"expense_id", exp.ExpenseID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing expense: %w", err)
	}

	if existing != nil {
		return expense.ErrDuplicateExpense{ExpenseID: exp.ExpenseID}
	}

	_, err = collection.InsertOne(ctx, exp)
	if err != nil {
		r.logger.Error("Failed to create expense",
			"expense_id", exp.ExpenseID.String(),
			"error", err)
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetByExpenseID retrieves an expense document by its expense ID.
// Returns ErrExpenseNotFound if no document exists for the given ID.
func (r *ExpenseRepository) GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*expense.Expense, error) {
	collection := r.db.Collection(ExpenseCollectionName)

	filter := bson.M{"expense_id": expenseID}
	var exp expense.Expense
	err := collection.FindOne(ctx, filter).Decode(&exp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, expense.ErrExpenseNotFound{ExpenseID: expenseID}
		}
		r.logger.Error("Failed to get expense",
			"expense_id", expenseID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return &exp, nil
}

// GetByIdempotencyKey retrieves an expense document using its idempotency key.
// Returns nil if no document exists, enabling idempotent expense recording.
func (r *ExpenseRepository) GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*expense.Expense, error) {
	if idempotencyKey == "" {
		return nil, errors.New("idempotency key cannot be empty")
	}

	collection := r.db.Collection(ExpenseCollectionName)

	filter := bson.M{"idempotency_key": idempotencyKey}
	var exp expense.Expense
	err := collection.FindOne(ctx, filter).Decode(&exp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No expense recorded with this idempotency key
		}
		r.logger.Error("Failed to get expense by idempotency key",
			"idempotency_key", idempotencyKey,
			"error", err)
		return nil, fmt.Errorf("failed to get expense by idempotency key: %w", err)
	}

	return &exp, nil
}

// GetByParticipantID retrieves paginated expenses where the participant paid.
// Results are sorted by creation time in descending order (newest first).
func (r *ExpenseRepository) GetByParticipantID(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*expense.Expense, error) {
	collection := r.db.Collection(ExpenseCollectionName)

	filter := bson.M{"payer_id": participantID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get expenses",
			"participant_id", participantID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer cursor.Close(ctx)

	var expenses []*expense.Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		r.logger.Error("Failed to decode expenses",
			"participant_id", participantID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode expenses: %w", err)
	}

	return expenses, nil
}

// CountByParticipantID counts the total number of expenses paid by a participant
func (r *ExpenseRepository) CountByParticipantID(ctx context.Context, participantID uuid.UUID) (int64, error) {
	collection := r.db.Collection(ExpenseCollectionName)

	filter := bson.M{"payer_id": participantID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count expenses",
			"participant_id", participantID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	return count, nil
}

// ListInvolving retrieves every completed expense where the participant is the
// payer or a member of the split set, optionally scoped to one group. This is
// the input set for balance aggregation, which recomputes from scratch, so no
// pagination is applied.
func (r *ExpenseRepository) ListInvolving(ctx context.Context, participantID uuid.UUID, groupID *uuid.UUID) ([]*expense.Expense, error) {
	collection := r.db.Collection(ExpenseCollectionName)

	filter := bson.M{
		"status": shared.ExpenseStatusCompleted,
		"$or": bson.A{
			bson.M{"payer_id": participantID},
			bson.M{"participants": participantID},
		},
	}
	if groupID != nil {
		filter["group_id"] = *groupID
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1}) // Oldest first for a stable fold order

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list expenses involving participant",
			"participant_id", participantID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list expenses involving participant: %w", err)
	}
	defer cursor.Close(ctx)

	var expenses []*expense.Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		r.logger.Error("Failed to decode expenses involving participant",
			"participant_id", participantID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode expenses involving participant: %w", err)
	}

	return expenses, nil
}

// UpdateStatus updates the expense's status, failure reason, and processed timestamp.
// Returns ErrExpenseNotFound if the document doesn't exist.
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, expenseID uuid.UUID, status shared.ExpenseStatus, reason string) error {
	collection := r.db.Collection(ExpenseCollectionName)

	filter := bson.M{"expense_id": expenseID}
	update := bson.M{
		"$set": bson.M{
			"status":         status,
			"failure_reason": reason,
			"processed_at":   time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update expense status",
			"expense_id", expenseID.String(),
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to update expense status: %w", err)
	}

	if result.MatchedCount == 0 {
		return expense.ErrExpenseNotFound{ExpenseID: expenseID}
	}

	return nil
}

// GetByTimeRange retrieves paginated expenses within the specified time window.
// Results are sorted by creation time in descending order for recent-first access.
func (r *ExpenseRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*expense.Expense, error) {
	collection := r.db.Collection(ExpenseCollectionName)

	filter := bson.M{
		"created_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get expenses by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to get expenses by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var expenses []*expense.Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		r.logger.Error("Failed to decode expenses",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to decode expenses: %w", err)
	}

	return expenses, nil
}
