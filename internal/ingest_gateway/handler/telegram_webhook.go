package handler

import (
	"context"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gin-gonic/gin"

	"github.com/retail-receipt-ingest/internal/flow"
	"github.com/retail-receipt-ingest/internal/telegram"
)

// SessionFlow is the conversation engine behind the webhook.
type SessionFlow interface {
	HandleUpdate(ctx context.Context, in *telegram.Inbound) flow.Result
}

// TelegramWebhookHandler receives Bot API updates. It always acknowledges
// with 200 so the platform does not redeliver; ok is false only when the
// chat has no registered store.
type TelegramWebhookHandler struct {
	logger *slog.Logger
	flow   SessionFlow
}

func NewTelegramWebhookHandler(logger *slog.Logger, sessionFlow SessionFlow) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		logger: logger,
		flow:   sessionFlow,
	}
}

// Handle processes POST /webhook/telegram.
func (h *TelegramWebhookHandler) Handle(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("Malformed telegram update", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	in, ok := telegram.FromUpdate(&update)
	if !ok {
		// Edits, callbacks and other non-message updates are acknowledged
		// and dropped.
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	result := h.flow.HandleUpdate(c.Request.Context(), in)
	c.JSON(http.StatusOK, gin.H{"ok": result.OK})
}
