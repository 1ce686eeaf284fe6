// Package ingest_gateway wires the HTTP surface of the service: the chat
// platform webhooks, the mock Viber endpoint and the dashboard API.
package ingest_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retail-receipt-ingest/internal/config"
	"github.com/retail-receipt-ingest/internal/domain/extraction"
	"github.com/retail-receipt-ingest/internal/domain/store"
	"github.com/retail-receipt-ingest/internal/domain/transaction"
	"github.com/retail-receipt-ingest/internal/ingest_gateway/handler"
)

// Server handles HTTP requests and manages the gateway's lifecycle.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures the gateway HTTP server.
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	sessionFlow handler.SessionFlow,
	transactions transaction.Repository,
	stores store.Repository,
	employees store.EmployeeRepository,
	extractionLog extraction.Repository,
	botUsername string,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	telegramWebhook := handler.NewTelegramWebhookHandler(log, sessionFlow)
	viberWebhook := handler.NewViberWebhookHandler(log, transactions, stores, cfg.Uploads.Dir)
	transactionHandler := handler.NewTransactionHandler(log, transactions)
	storeHandler := handler.NewStoreHandler(log, stores, employees)
	employeeHandler := handler.NewEmployeeHandler(log, employees, stores, botUsername)
	extractionLogHandler := handler.NewExtractionLogHandler(log, extractionLog)

	setupRouter(log, httpRouter, telegramWebhook, viberWebhook, transactionHandler, storeHandler, employeeHandler, extractionLogHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
