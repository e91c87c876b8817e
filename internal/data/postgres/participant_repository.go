// Package postgres provides PostgreSQL implementations of the domain
// repositories. Participants and the expense outbox live here; recorded
// expense documents live in the MongoDB ledger store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/platform/persistence"
)

// ParticipantRepository implements the participant.Repository interface for PostgreSQL
type ParticipantRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewParticipantRepository creates a new PostgreSQL participant repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewParticipantRepository(logger *slog.Logger, db *persistence.PostgresDB) participant.Repository {
	return &ParticipantRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls. The returned repository will
// use the provided transaction for all database operations.
func (r *ParticipantRepository) WithTx(tx pgx.Tx) participant.Repository {
	return &ParticipantRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new participant. A unique-constraint violation on the email
// column is mapped to ErrDuplicateEmail.
func (r *ParticipantRepository) Create(ctx context.Context, p *participant.Participant) error {
	query := `
		INSERT INTO participants (id, display_name, email, display_currency, total_paid, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		p.ID,
		p.DisplayName,
		p.Email,
		p.DisplayCurrency,
		p.TotalPaid,
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return participant.ErrDuplicateEmail{Email: p.Email}
		}
		r.logger.Error("Failed to create participant", "error", err)
		return fmt.Errorf("failed to create participant: %w", err)
	}

	return nil
}

// GetByID retrieves a participant by its ID
func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	query := `
		SELECT id, display_name, email, display_currency, total_paid, version, created_at, updated_at
		FROM participants
		WHERE id = $1
	`

	var p participant.Participant
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.DisplayName,
		&p.Email,
		&p.DisplayCurrency,
		&p.TotalPaid,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, participant.ErrParticipantNotFound{ParticipantID: id}
		}
		r.logger.Error("Failed to get participant", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return &p, nil
}

// GetByEmail retrieves a participant by email
func (r *ParticipantRepository) GetByEmail(ctx context.Context, email string) (*participant.Participant, error) {
	query := `
		SELECT id, display_name, email, display_currency, total_paid, version, created_at, updated_at
		FROM participants
		WHERE email = $1
	`

	var p participant.Participant
	err := r.querier.QueryRow(ctx, query, email).Scan(
		&p.ID,
		&p.DisplayName,
		&p.Email,
		&p.DisplayCurrency,
		&p.TotalPaid,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Return nil, nil when no participant exists with the given email
		}
		r.logger.Error("Failed to get participant by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get participant by email: %w", err)
	}

	return &p, nil
}

// Update updates an existing participant in the database
func (r *ParticipantRepository) Update(ctx context.Context, p *participant.Participant) error {
	query := `
		UPDATE participants
		SET display_name = $1, email = $2, display_currency = $3, total_paid = $4, version = $5, updated_at = $6
		WHERE id = $7 AND version = $8
	`

	result, err := r.querier.Exec(ctx, query,
		p.DisplayName,
		p.Email,
		p.DisplayCurrency,
		p.TotalPaid,
		p.Version,
		p.UpdatedAt,
		p.ID,
		p.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update participant", "id", p.ID.String(), "error", err)
		return fmt.Errorf("failed to update participant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return participant.ErrConcurrentModification{ParticipantID: p.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the participant and returns its
// current state. This should be used within a transaction when expense
// processing needs to bump the paid total consistently.
func (r *ParticipantRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	query := `
		SELECT id, display_name, email, display_currency, total_paid, version, created_at, updated_at
		FROM participants
		WHERE id = $1
		FOR UPDATE
	`

	var p participant.Participant
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.DisplayName,
		&p.Email,
		&p.DisplayCurrency,
		&p.TotalPaid,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, participant.ErrParticipantNotFound{ParticipantID: id}
		}
		r.logger.Error("Failed to lock participant for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock participant for update: %w", err)
	}

	return &p, nil
}
