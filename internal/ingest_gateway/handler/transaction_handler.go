package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// TransactionHandler serves the dashboard's transaction browsing and
// soft-delete endpoints.
type TransactionHandler struct {
	logger       *slog.Logger
	transactions transaction.Repository
}

func NewTransactionHandler(logger *slog.Logger, transactions transaction.Repository) *TransactionHandler {
	return &TransactionHandler{
		logger:       logger,
		transactions: transactions,
	}
}

// List handles GET /api/v1/transactions with filtering and pagination.
func (h *TransactionHandler) List(c *gin.Context) {
	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter, err := buildFilter(req)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	txs, total, err := h.transactions.List(c.Request.Context(), filter, req.Page, req.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, 200, toTransactionResponses(txs), req.Page, req.PerPage, int(total))
}

// GetByID handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID format")
		return
	}

	tx, err := h.transactions.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound transaction.ErrTransactionNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, toTransactionResponse(tx))
}

// Delete handles DELETE /api/v1/transactions/:id (soft delete).
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID format")
		return
	}

	if err := h.transactions.SoftDelete(c.Request.Context(), id); err != nil {
		var notFound transaction.ErrTransactionNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to delete transaction", "error", err)
		RespondInternalError(c)
		return
	}

	h.logger.Info("Transaction soft-deleted", "transaction_id", id.String())
	RespondNoContent(c)
}

func buildFilter(req ListTransactionsRequest) (transaction.Filter, error) {
	var filter transaction.Filter

	if req.StoreID != "" {
		id, err := uuid.Parse(req.StoreID)
		if err != nil {
			return filter, errors.New("store_id must be a valid UUID")
		}
		filter.StoreID = &id
	}
	filter.Source = req.Source

	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return filter, errors.New("from must be formatted as YYYY-MM-DD")
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return filter, errors.New("to must be formatted as YYYY-MM-DD")
		}
		// Inclusive upper bound for the whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	return filter, nil
}
