package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/retail-receipt-ingest/internal/domain/store"
	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

// CreateStoreRequest is the dashboard payload for registering a store.
type CreateStoreRequest struct {
	Name       string `json:"name" binding:"required"`
	TelegramID int64  `json:"telegram_id"`
}

// CreateEmployeeRequest is the dashboard payload for adding an employee.
type CreateEmployeeRequest struct {
	StoreID string `json:"store_id" binding:"required,uuid"`
	Name    string `json:"name" binding:"required"`
}

// ListTransactionsRequest captures the query filters for the transaction
// listing endpoint.
type ListTransactionsRequest struct {
	StoreID string `form:"store_id" binding:"omitempty,uuid"`
	Source  string `form:"source" binding:"omitempty,oneof=telegram viber email"`
	From    string `form:"from" binding:"omitempty"`
	To      string `form:"to" binding:"omitempty"`
	Page    int    `form:"page,default=1" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page,default=20" binding:"omitempty,min=1,max=100"`
}

// TransactionResponse is the outward shape of a transaction row.
type TransactionResponse struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	Source    string    `json:"source"`
	Reference string    `json:"reference"`
	Sender    string    `json:"sender"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransactionResponse(tx *transaction.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:        tx.ID,
		StoreID:   tx.StoreID,
		Type:      tx.Type,
		Amount:    tx.Amount,
		Date:      tx.Date,
		Source:    tx.Source,
		Reference: tx.Reference,
		Sender:    tx.Sender,
		Status:    tx.Status,
		CreatedAt: tx.CreatedAt,
	}
}

func toTransactionResponses(txs []*transaction.Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

// OnboardTokenResponse returns a freshly issued onboarding token for an
// employee, ready to be embedded in a bot deep link.
type OnboardTokenResponse struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Token      string    `json:"token"`
	BotLink    string    `json:"bot_link,omitempty"`
}

// EmployeeResponse is the outward shape of an employee row. The onboarding
// token is never exposed here; it is only returned by the token endpoint.
type EmployeeResponse struct {
	ID           uuid.UUID `json:"id"`
	StoreID      uuid.UUID `json:"store_id"`
	Name         string    `json:"name"`
	BotConfirmed bool      `json:"bot_confirmed"`
	CreatedAt    time.Time `json:"created_at"`
}

func toEmployeeResponse(e *store.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:           e.ID,
		StoreID:      e.StoreID,
		Name:         e.Name,
		BotConfirmed: e.BotConfirmed,
		CreatedAt:    e.CreatedAt,
	}
}
