package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/retail-receipt-ingest/internal/domain/transaction"
)

func setupTransactionRouter(repo transaction.Repository) *gin.Engine {
	r := gin.New()
	h := NewTransactionHandler(testLogger(), repo)
	r.GET("/api/v1/transactions", h.List)
	r.GET("/api/v1/transactions/:id", h.GetByID)
	r.DELETE("/api/v1/transactions/:id", h.Delete)
	return r
}

func TestTransactionHandler_List(t *testing.T) {
	repo := new(mockTransactionRepo)
	tx := sampleTransactionRow()

	repo.On("List", mock.Anything, mock.MatchedBy(func(f transaction.Filter) bool {
		return f.Source == transaction.SourceTelegram && f.StoreID == nil
	}), 1, 20).Return([]*transaction.Transaction{tx}, int64(1), nil)

	r := setupTransactionRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?source=telegram", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tx.ID.String())
	assert.Contains(t, w.Body.String(), `"total_items":1`)
	repo.AssertExpectations(t)
}

func TestTransactionHandler_List_InvalidSource(t *testing.T) {
	repo := new(mockTransactionRepo)
	r := setupTransactionRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?source=fax", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionHandler_List_DateRange(t *testing.T) {
	repo := new(mockTransactionRepo)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f transaction.Filter) bool {
		return f.From != nil && f.To != nil && f.To.After(*f.From)
	}), 1, 20).Return([]*transaction.Transaction{}, int64(0), nil)

	r := setupTransactionRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?from=2024-01-01&to=2024-01-31", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestTransactionHandler_Delete(t *testing.T) {
	repo := new(mockTransactionRepo)
	id := uuid.New()
	repo.On("SoftDelete", mock.Anything, id).Return(nil)

	r := setupTransactionRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/"+id.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}

func TestTransactionHandler_Delete_NotFound(t *testing.T) {
	repo := new(mockTransactionRepo)
	id := uuid.New()
	repo.On("SoftDelete", mock.Anything, id).Return(transaction.ErrTransactionNotFound{TransactionID: id})

	r := setupTransactionRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/"+id.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionHandler_GetByID_BadID(t *testing.T) {
	repo := new(mockTransactionRepo)
	r := setupTransactionRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
