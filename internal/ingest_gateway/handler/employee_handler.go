package handler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retail-receipt-ingest/internal/domain/store"
)

// EmployeeHandler serves employee creation and onboarding-token issuance.
type EmployeeHandler struct {
	logger      *slog.Logger
	employees   store.EmployeeRepository
	stores      store.Repository
	botUsername string
}

func NewEmployeeHandler(logger *slog.Logger, employees store.EmployeeRepository, stores store.Repository, botUsername string) *EmployeeHandler {
	return &EmployeeHandler{
		logger:      logger,
		employees:   employees,
		stores:      stores,
		botUsername: botUsername,
	}
}

// Create handles POST /api/v1/employees.
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		RespondBadRequest(c, "store_id must be a valid UUID")
		return
	}

	if _, err := h.stores.GetByID(c.Request.Context(), storeID); err != nil {
		var notFound store.ErrStoreNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Store not found")
			return
		}
		h.logger.Error("Store lookup failed", "error", err)
		RespondInternalError(c)
		return
	}

	e, err := store.NewEmployee(storeID, req.Name)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.employees.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("Failed to create employee", "error", err)
		RespondInternalError(c)
		return
	}

	h.logger.Info("Employee created", "employee_id", e.ID.String(), "store_id", storeID.String())
	RespondCreated(c, toEmployeeResponse(e))
}

// IssueOnboardToken handles POST /api/v1/employees/:id/onboard-token. Each
// call replaces any previously issued token.
func (h *EmployeeHandler) IssueOnboardToken(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid employee ID format")
		return
	}

	e, err := h.employees.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound store.ErrEmployeeNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Employee not found")
			return
		}
		h.logger.Error("Failed to get employee", "error", err)
		RespondInternalError(c)
		return
	}

	token := e.IssueOnboardToken()
	if err := h.employees.Update(c.Request.Context(), e); err != nil {
		h.logger.Error("Failed to store onboarding token", "error", err)
		RespondInternalError(c)
		return
	}

	resp := &OnboardTokenResponse{
		EmployeeID: e.ID,
		Token:      token,
	}
	if h.botUsername != "" {
		resp.BotLink = fmt.Sprintf("https://t.me/%s?start=%s", h.botUsername, token)
	}

	h.logger.Info("Onboarding token issued", "employee_id", e.ID.String())
	RespondCreated(c, resp)
}
