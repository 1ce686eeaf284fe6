package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retail-receipt-ingest/internal/domain/store"
	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// simulatedOCRAmount stands in for real slip OCR on the Viber channel until
// that integration exists; rows land as pending_validation so the dashboard
// can spot them.
const simulatedOCRAmount = 100.0

// ViberWebhookHandler is the mock Viber ingestion endpoint: a multipart
// form with the slip image, stored locally and recorded for later manual
// validation.
type ViberWebhookHandler struct {
	logger       *slog.Logger
	transactions transaction.Repository
	stores       store.Repository
	uploadsDir   string
}

func NewViberWebhookHandler(logger *slog.Logger, transactions transaction.Repository, stores store.Repository, uploadsDir string) *ViberWebhookHandler {
	return &ViberWebhookHandler{
		logger:       logger,
		transactions: transactions,
		stores:       stores,
		uploadsDir:   uploadsDir,
	}
}

// Handle processes POST /webhook/viber: form fields store_id, sender and an
// image file part named "image".
func (h *ViberWebhookHandler) Handle(c *gin.Context) {
	storeID, err := uuid.Parse(c.PostForm("store_id"))
	if err != nil {
		RespondBadRequest(c, "store_id must be a valid UUID")
		return
	}

	sender := c.PostForm("sender")
	if sender == "" {
		RespondBadRequest(c, "sender is required")
		return
	}

	if _, err := h.stores.GetByID(c.Request.Context(), storeID); err != nil {
		var notFound store.ErrStoreNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "store not found")
			return
		}
		h.logger.Error("Store lookup failed", "error", err)
		RespondInternalError(c)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		RespondBadRequest(c, "image file is required")
		return
	}

	id := uuid.New()
	imagePath := filepath.Join(h.uploadsDir, fmt.Sprintf("viber_%s%s", id, filepath.Ext(file.Filename)))
	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		h.logger.Error("Failed to create uploads dir", "error", err)
		RespondInternalError(c)
		return
	}
	if err := c.SaveUploadedFile(file, imagePath); err != nil {
		h.logger.Error("Failed to save uploaded image", "error", err)
		RespondInternalError(c)
		return
	}

	now := time.Now()
	tx := &transaction.Transaction{
		ID:        id,
		StoreID:   storeID,
		Type:      transaction.TypeCash,
		Amount:    simulatedOCRAmount,
		Date:      now,
		Source:    transaction.SourceViber,
		Reference: "VIBER-" + id.String()[:8],
		Sender:    sender,
		Status:    transaction.StatusPendingValidation,
		ImagePath: imagePath,
		CreatedAt: now,
	}

	if err := h.transactions.Insert(c.Request.Context(), tx); err != nil {
		h.logger.Error("Failed to insert viber transaction", "error", err)
		RespondInternalError(c)
		return
	}

	h.logger.Info("Viber slip recorded for validation", "transaction_id", tx.ID.String(), "store_id", storeID.String())
	RespondCreated(c, toTransactionResponse(tx))
}
