package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retail-receipt-ingest/internal/commands"
	"github.com/retail-receipt-ingest/internal/config"
	"github.com/retail-receipt-ingest/internal/data/mongo"
	"github.com/retail-receipt-ingest/internal/data/postgres"
	"github.com/retail-receipt-ingest/internal/domain/session"
	"github.com/retail-receipt-ingest/internal/extraction"
	"github.com/retail-receipt-ingest/internal/flow"
	"github.com/retail-receipt-ingest/internal/ingest_gateway"
	"github.com/retail-receipt-ingest/internal/logger"
	"github.com/retail-receipt-ingest/internal/platform/persistence"
	"github.com/retail-receipt-ingest/internal/sessionstore"
	"github.com/retail-receipt-ingest/internal/telegram"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ingest_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	loc, err := time.LoadLocation(cfg.Session.Timezone)
	if err != nil {
		log.Error("Invalid business timezone", "timezone", cfg.Session.Timezone, "error", err)
		os.Exit(1)
	}

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Session state lives in Redis when configured, otherwise in-process.
	var sessions session.Store
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(appCtx, log, &cfg.Redis)
		if err != nil {
			log.Error("Failed to initialize Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		sessions = sessionstore.NewRedisStore(redisClient, cfg.Session.IdleTimeout)
	} else {
		log.Info("REDIS_ADDR not set, using in-process session store")
		sessions = sessionstore.NewMemoryStore()
	}

	transactionRepo := postgres.NewTransactionRepository(postgresDB.Pool(), log)
	storeRepo := postgres.NewStoreRepository(postgresDB.Pool(), log)
	employeeRepo := postgres.NewEmployeeRepository(postgresDB.Pool(), log)
	extractionLogRepo := mongo.NewExtractionLogRepository(mongoDB.Database(), log)

	botClient, err := telegram.NewClient(cfg.Telegram.Token, log)
	if err != nil {
		log.Error("Failed to initialize Telegram client", "error", err)
		os.Exit(1)
	}

	extractor, err := extraction.NewModelExtractor(appCtx, log, &cfg.Extraction, extractionLogRepo, loc)
	if err != nil {
		log.Error("Failed to initialize extraction adapter", "error", err)
		os.Exit(1)
	}

	sessionFlow := flow.NewManager(flow.Deps{
		Sessions:     sessions,
		Extractor:    extractor,
		Transactions: transactionRepo,
		Stores:       storeRepo,
		Employees:    employeeRepo,
		Classifier:   commands.NewRuleClassifier(),
		Files:        botClient,
		Replier:      botClient,
		Logger:       log,
	}, cfg.Session.RequiredFields, cfg.Session.IdleTimeout, loc)

	server := ingest_gateway.NewServer(log, cfg, sessionFlow, transactionRepo, storeRepo, employeeRepo, extractionLogRepo, botClient.Username())
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}
