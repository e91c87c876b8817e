package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/splitledger/internal/api_gateway/handler"
	"github.com/splitledger/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	participantHandler *handler.ParticipantHandler,
	expenseHandler *handler.ExpenseHandler,
	balanceHandler *handler.BalanceHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Participant operations
		participants := v1.Group("/participants")
		{
			participants.POST("", participantHandler.Create)
			participants.GET("/:id", participantHandler.GetByID)
			participants.GET("/:id/expenses", expenseHandler.GetByParticipantID)
			participants.GET("/:id/balance", balanceHandler.GetBalance)
			participants.POST("/:id/settlements", balanceHandler.SettleUp)
		}

		// Expense operations
		expenses := v1.Group("/expenses")
		{
			expenses.POST("", expenseHandler.Create)
			expenses.GET("/:id", expenseHandler.GetByID)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
