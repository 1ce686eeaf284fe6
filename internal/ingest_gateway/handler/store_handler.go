package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retail-receipt-ingest/internal/domain/store"
)

// StoreHandler serves the dashboard's store management endpoints.
type StoreHandler struct {
	logger    *slog.Logger
	stores    store.Repository
	employees store.EmployeeRepository
}

func NewStoreHandler(logger *slog.Logger, stores store.Repository, employees store.EmployeeRepository) *StoreHandler {
	return &StoreHandler{
		logger:    logger,
		stores:    stores,
		employees: employees,
	}
}

// Create handles POST /api/v1/stores.
func (h *StoreHandler) Create(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s, err := store.NewStore(req.Name, req.TelegramID)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.stores.Create(c.Request.Context(), s); err != nil {
		var dup store.ErrDuplicateTelegramID
		if errors.As(err, &dup) {
			RespondConflict(c, "A store is already registered for this telegram id")
			return
		}
		h.logger.Error("Failed to create store", "error", err)
		RespondInternalError(c)
		return
	}

	h.logger.Info("Store created", "store_id", s.ID.String(), "name", s.Name)
	RespondCreated(c, s)
}

// List handles GET /api/v1/stores.
func (h *StoreHandler) List(c *gin.Context) {
	stores, err := h.stores.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list stores", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, stores)
}

// ListEmployees handles GET /api/v1/stores/:id/employees.
func (h *StoreHandler) ListEmployees(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid store ID format")
		return
	}

	employees, err := h.employees.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		h.logger.Error("Failed to list employees", "error", err)
		RespondInternalError(c)
		return
	}

	out := make([]*EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	RespondOK(c, out)
}
