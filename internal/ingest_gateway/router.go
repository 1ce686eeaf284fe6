package ingest_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retail-receipt-ingest/internal/ingest_gateway/handler"
	"github.com/retail-receipt-ingest/internal/ingest_gateway/middleware"
)

// setupRouter configures routes and middleware for the gateway.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	telegramWebhook *handler.TelegramWebhookHandler,
	viberWebhook *handler.ViberWebhookHandler,
	transactionHandler *handler.TransactionHandler,
	storeHandler *handler.StoreHandler,
	employeeHandler *handler.EmployeeHandler,
	extractionLogHandler *handler.ExtractionLogHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// Chat platform webhooks
	webhooks := r.Group("/webhook")
	{
		webhooks.POST("/telegram", telegramWebhook.Handle)
		webhooks.POST("/viber", viberWebhook.Handle)
	}

	// Dashboard API
	v1 := r.Group("/api/v1")
	{
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		stores := v1.Group("/stores")
		{
			stores.POST("", storeHandler.Create)
			stores.GET("", storeHandler.List)
			stores.GET("/:id/employees", storeHandler.ListEmployees)
		}

		employees := v1.Group("/employees")
		{
			employees.POST("", employeeHandler.Create)
			employees.POST("/:id/onboard-token", employeeHandler.IssueOnboardToken)
		}

		v1.GET("/extraction-log/:chat_id", extractionLogHandler.ListByChat)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
