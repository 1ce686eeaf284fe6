package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retail-receipt-ingest/internal/config"
	"github.com/retail-receipt-ingest/internal/data/mongo"
	"github.com/retail-receipt-ingest/internal/data/postgres"
	"github.com/retail-receipt-ingest/internal/extraction"
	"github.com/retail-receipt-ingest/internal/inbox"
	"github.com/retail-receipt-ingest/internal/logger"
	"github.com/retail-receipt-ingest/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("inbox_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	if cfg.Mail.Host == "" {
		log.Error("MAIL_IMAP_HOST is required for the inbox processor")
		os.Exit(1)
	}

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

	transactionRepo := postgres.NewTransactionRepository(postgresDB.Pool(), log)
	storeRepo := postgres.NewStoreRepository(postgresDB.Pool(), log)
	extractionLogRepo := mongo.NewExtractionLogRepository(mongoDB.Database(), log)

	extractor, err := extraction.NewModelExtractor(appCtx, log, &cfg.Extraction, extractionLogRepo, loc)
	if err != nil {
		log.Error("Failed to initialize extraction adapter", "error", err)
		os.Exit(1)
	}

	fetcher := inbox.NewIMAPFetcher(&cfg.Mail, log)

	processor, err := inbox.NewProcessor(
		fetcher, extractor, transactionRepo, storeRepo, log,
		cfg.WorkerPool.Size, cfg.Mail.PollInterval, cfg.Mail.FetchMax, loc,
	)
	if err != nil {
		log.Error("Failed to initialize inbox processor", "error", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		processor.Run(appCtx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	cancelAppCtx()
	<-done

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	processor.Close()
	postgresDB.Close()
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Shutdown complete")
}
