package extraction

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/retail-receipt-ingest/internal/config"
	"github.com/retail-receipt-ingest/internal/domain/extraction"
	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// ModelExtractor implements Extractor and BatchExtractor on top of the
// GenAI completion API. Every model call is recorded to the audit log
// best-effort; audit failures are logged and swallowed.
type ModelExtractor struct {
	client     *genai.Client
	httpClient *http.Client
	auditRepo  extraction.Repository
	logger     *slog.Logger
	model      string
	maxTokens  int
	timeout    time.Duration
	loc        *time.Location
}

// NewModelExtractor creates the GenAI-backed extractor. The API key is read
// from the environment by the client itself (GEMINI_API_KEY).
func NewModelExtractor(ctx context.Context, logger *slog.Logger, cfg *config.ExtractionConfig, auditRepo extraction.Repository, loc *time.Location) (*ModelExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &ModelExtractor{
		client:     client,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		auditRepo:  auditRepo,
		logger:     logger,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		timeout:    cfg.Timeout,
		loc:        loc,
	}, nil
}

// FromImage downloads the receipt image and asks the model for a structured
// candidate. When the reply holds no parseable JSON, the amount-regex
// fallback runs over the raw reply text (the model tends to echo OCR text
// even when it refuses to emit the schema).
func (e *ModelExtractor) FromImage(ctx context.Context, chatID int64, imageURL string, sentAt time.Time) (*transaction.Candidate, error) {
	imageData, mimeType, err := e.download(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt image: %w", err)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: receiptPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
		},
	}}

	raw, err := e.generate(ctx, contents)
	candidate, parseErr := e.parseOne(raw, err, sentAt)
	e.audit(ctx, transaction.SourceTelegram, chatID, extraction.InputImage, raw, parseErr == nil, err)
	return candidate, parseErr
}

// FromText asks the model for a structured candidate from a raw message.
// The fallback regex also considers the user's own text, which often names
// the amount directly ("received 500 from Juan").
func (e *ModelExtractor) FromText(ctx context.Context, chatID int64, text string, sentAt time.Time) (*transaction.Candidate, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: receiptPrompt + "\n\nMessage:\n" + text},
		},
	}}

	raw, err := e.generate(ctx, contents)
	candidate, parseErr := e.parseOne(raw+"\n"+text, err, sentAt)
	e.audit(ctx, transaction.SourceTelegram, chatID, extraction.InputText, raw, parseErr == nil, err)
	return candidate, parseErr
}

// FromEmail extracts every received-money transaction from an email body.
// No fallback here: a batch channel with no structured data is simply empty.
func (e *ModelExtractor) FromEmail(ctx context.Context, body string) ([]*transaction.Candidate, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: emailPrompt + "\n\n" + body},
		},
	}}

	raw, err := e.generate(ctx, contents)
	if err != nil {
		e.audit(ctx, transaction.SourceEmail, 0, extraction.InputText, raw, false, err)
		return nil, ErrNoData
	}

	candidates, parseErr := parseCandidates(raw)
	e.audit(ctx, transaction.SourceEmail, 0, extraction.InputText, raw, parseErr == nil, nil)
	if parseErr != nil {
		return nil, parseErr
	}

	for _, c := range candidates {
		c.Type = transaction.TypeEwallet
		c.Source = transaction.SourceEmail
	}
	return candidates, nil
}

// generate runs one model call under the configured deadline.
func (e *ModelExtractor) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Models.GenerateContent(callCtx, e.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(e.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	return resp.Text(), nil
}

// parseOne resolves a single-candidate reply, falling back to the amount
// regex over fallbackText when structured parsing fails.
func (e *ModelExtractor) parseOne(fallbackText string, callErr error, sentAt time.Time) (*transaction.Candidate, error) {
	if callErr != nil {
		e.logger.Error("extraction model call failed", "error", callErr)
		return nil, ErrNoData
	}

	candidates, err := parseCandidates(fallbackText)
	if err == nil {
		candidate := candidates[0]
		applyDefaults(candidate, sentAt, e.loc)
		return candidate, nil
	}

	if candidate, ok := fallbackCandidate(fallbackText, sentAt, e.loc); ok {
		e.logger.Info("structured parse failed, using amount fallback")
		return candidate, nil
	}

	return nil, ErrNoData
}

// audit records the attempt; failures only log.
func (e *ModelExtractor) audit(ctx context.Context, channel string, chatID int64, inputKind, raw string, parsed bool, callErr error) {
	if e.auditRepo == nil {
		return
	}
	rec := extraction.NewRecord(channel, chatID, inputKind, e.model, raw, parsed, callErr)
	if err := e.auditRepo.Create(ctx, rec); err != nil {
		e.logger.Warn("failed to record extraction attempt", "error", err)
	}
}

// download fetches the image bytes and sniffs the MIME type.
func (e *ModelExtractor) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d fetching image", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return data, http.DetectContentType(data), nil
}
