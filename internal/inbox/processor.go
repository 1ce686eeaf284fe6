package inbox

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"
	"github.com/panjf2000/ants/v2"

	"github.com/retail-receipt-ingest/internal/domain/store"
	"github.com/retail-receipt-ingest/internal/domain/transaction"
	"github.com/retail-receipt-ingest/internal/extraction"
)

// Processor polls the mailbox and runs each message through the batch
// extractor on a worker pool. One email may settle several transfers; every
// extracted candidate becomes its own transaction row.
type Processor struct {
	fetcher      Fetcher
	extractor    extraction.BatchExtractor
	transactions transaction.Repository
	stores       store.Repository
	pool         *ants.Pool
	logger       *slog.Logger

	loc          *time.Location
	pollInterval time.Duration
	fetchMax     int
}

func NewProcessor(
	fetcher Fetcher,
	batchExtractor extraction.BatchExtractor,
	transactions transaction.Repository,
	stores store.Repository,
	logger *slog.Logger,
	poolSize int,
	pollInterval time.Duration,
	fetchMax int,
	loc *time.Location,
) (*Processor, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Processor{
		fetcher:      fetcher,
		extractor:    batchExtractor,
		transactions: transactions,
		stores:       stores,
		pool:         pool,
		logger:       logger,
		loc:          loc,
		pollInterval: pollInterval,
		fetchMax:     fetchMax,
	}, nil
}

// Run polls until the context is cancelled. A failed poll is logged and
// retried on the next tick.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("Inbox processor started", "poll_interval", p.pollInterval.String())

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		p.poll(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("Inbox processor stopping")
			return
		case <-ticker.C:
		}
	}
}

// Close releases the worker pool.
func (p *Processor) Close() {
	p.pool.Release()
}

func (p *Processor) poll(ctx context.Context) {
	messages, err := p.fetcher.FetchUnseen(p.fetchMax)
	if err != nil {
		p.logger.Error("Mailbox fetch failed", "error", err)
		return
	}
	if len(messages) == 0 {
		return
	}

	p.logger.Info("Fetched unseen messages", "count", len(messages))

	var wg sync.WaitGroup
	for _, msg := range messages {
		msg := msg
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			p.processMessage(ctx, msg)
		}); err != nil {
			wg.Done()
			p.logger.Error("Failed to submit message to worker pool", "uid", msg.UID, "error", err)
		}
	}
	wg.Wait()
}

// processMessage parses one email and inserts every transaction the
// extractor finds in it.
func (p *Processor) processMessage(ctx context.Context, msg Message) {
	log := p.logger.With("uid", msg.UID, "from", msg.From)

	env, err := enmime.ReadEnvelope(bytes.NewReader(msg.Raw))
	if err != nil {
		log.Error("Failed to parse MIME envelope", "error", err)
		return
	}

	body := env.Text
	if body == "" {
		body = env.HTML
	}
	if body == "" && msg.Subject == "" {
		log.Warn("Message has no usable content, skipping")
		return
	}

	candidates, err := p.extractor.FromEmail(ctx, msg.Subject+"\n\n"+body)
	if err != nil {
		log.Warn("Email extraction yielded nothing", "error", err)
		return
	}

	inserted := 0
	for _, cand := range candidates {
		if err := p.insertCandidate(ctx, cand); err != nil {
			log.Warn("Skipping extracted candidate", "error", err)
			continue
		}
		inserted++
	}

	log.Info("Email processed", "extracted", len(candidates), "inserted", inserted)
}

func (p *Processor) insertCandidate(ctx context.Context, cand *transaction.Candidate) error {
	storeID, err := uuid.Parse(cand.StoreID)
	if err != nil {
		return fmt.Errorf("candidate has no resolvable store id: %w", err)
	}
	if _, err := p.stores.GetByID(ctx, storeID); err != nil {
		return fmt.Errorf("store lookup failed: %w", err)
	}

	amount, err := transaction.ParseAmount(cand.Amount)
	if err != nil {
		return err
	}

	date, err := transaction.ParseDate(cand.Date, p.loc)
	if err != nil {
		return err
	}

	txType := cand.Type
	if !transaction.Filled(txType) {
		txType = transaction.TypeEwallet
	}

	tx := &transaction.Transaction{
		ID:        uuid.New(),
		StoreID:   storeID,
		Type:      txType,
		Amount:    amount,
		Date:      date,
		Source:    transaction.SourceEmail,
		Reference: cand.Reference,
		Sender:    cand.Sender,
		Status:    transaction.StatusRecorded,
		CreatedAt: time.Now(),
	}

	if err := p.transactions.Insert(ctx, tx); err != nil {
		return fmt.Errorf("failed to insert email transaction: %w", err)
	}

	return nil
}
