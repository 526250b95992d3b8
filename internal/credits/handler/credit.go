package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"hopper/internal/credits/service"
	apperrors "hopper/pkg/errors"
	httputil "hopper/pkg/http"
	"hopper/pkg/logger"
	"hopper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CreditHandler struct {
	service service.CreditService
	log     *logger.Logger
}

func NewCreditHandler(service service.CreditService, log *logger.Logger) *CreditHandler {
	return &CreditHandler{
		service: service,
		log:     log,
	}
}

// Balance reports the company's standing for an optional reference date
// (RFC3339, defaults to now).
func (h *CreditHandler) Balance(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	companyID := query.Get("company_id")
	if companyID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "The 'company_id' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Balance", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	at := time.Now().UTC()
	if atStr := query.Get("at"); atStr != "" {
		parsed, err := time.Parse(time.RFC3339, atStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid at format, must be RFC3339")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Balance", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		at = parsed
	}

	balance, err := h.service.BalanceAt(r.Context(), companyID, at)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Balance", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, balance); err != nil {
		h.log.Error("failed to write success response", "handler", "Balance", "operation", "WriteSuccess", "error", err)
	}
}

type openPeriodRequest struct {
	CompanyID   string    `json:"company_id"`
	PeriodStart time.Time `json:"period_start"`
}

func (h *CreditHandler) OpenPeriod(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req openPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "OpenPeriod", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	entry, err := h.service.OpenPeriod(r.Context(), req.CompanyID, req.PeriodStart)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "OpenPeriod", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, entry); err != nil {
		h.log.Error("failed to write created response", "handler", "OpenPeriod", "operation", "WriteCreated", "error", err)
	}
}

func (h *CreditHandler) Adjust(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var adjustment model.CreditAdjustment
	if err := json.NewDecoder(r.Body).Decode(&adjustment); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Adjust", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Adjust(r.Context(), &adjustment); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Adjust", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CreditHandler) History(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "The 'company_id' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "History", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "History", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	entries, total, err := h.service.History(r.Context(), companyID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "History", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, entries, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "History", "operation", "WritePaginated", "error", err)
	}
}

func (h *CreditHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/credits/balance", h.Balance)
	router.POST("/api/v1/credits/periods", h.OpenPeriod)
	router.POST("/api/v1/credits/adjustments", h.Adjust)
	router.GET("/api/v1/credits/history", h.History)
}
