package components

import (
	"log/slog"

	"github.com/splitledger/internal/config"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/outbox"
	"github.com/splitledger/internal/domain/participant"
	"github.com/splitledger/internal/expense_processor/service"
	"github.com/splitledger/internal/platform/persistence"
)

// CreateProcessingService creates a new ProcessingService with all its dependencies.
func CreateProcessingService(
	pgDB *persistence.PostgresDB,
	participantRepo participant.Repository,
	outboxRepo outbox.Repository,
	expenseRepo expense.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	validator := NewExpenseValidator(expenseRepo, logger)
	participantManager := NewParticipantManager(participantRepo, logger)
	outboxManager := NewOutboxManager(outboxRepo, logger)
	failureRecorder := NewFailureRecorder(expenseRepo, logger)

	baseService := service.NewProcessingService(
		pgDB,
		validator,
		participantManager,
		outboxManager,
		failureRecorder,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
