package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/retail-receipt-ingest/internal/domain/extraction"
)

// ExtractionLogHandler exposes the model-call audit trail for a chat, used
// when diagnosing why a slip failed to parse.
type ExtractionLogHandler struct {
	logger  *slog.Logger
	records extraction.Repository
}

func NewExtractionLogHandler(logger *slog.Logger, records extraction.Repository) *ExtractionLogHandler {
	return &ExtractionLogHandler{
		logger:  logger,
		records: records,
	}
}

// ListByChat handles GET /api/v1/extraction-log/:chat_id.
func (h *ExtractionLogHandler) ListByChat(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		RespondBadRequest(c, "chat_id must be an integer")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.records.ListByChat(c.Request.Context(), chatID, limit)
	if err != nil {
		h.logger.Error("Failed to list extraction records", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, records)
}
