package handler

import (
	"encoding/json"
	"net/http"

	"hopper/internal/contracts/service"
	httputil "hopper/pkg/http"
	"hopper/pkg/logger"
	"hopper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ContractHandler struct {
	service service.ContractService
	log     *logger.Logger
}

func NewContractHandler(service service.ContractService, log *logger.Logger) *ContractHandler {
	return &ContractHandler{
		service: service,
		log:     log,
	}
}

func (h *ContractHandler) CreateCompany(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var company model.Company
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateCompany", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateCompany(r.Context(), &company); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateCompany", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, company); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateCompany", "operation", "WriteCreated", "error", err)
	}
}

func (h *ContractHandler) GetCompany(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	company, err := h.service.GetCompanyByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCompany", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, company); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCompany", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var contract model.Contract
	if err := json.NewDecoder(r.Body).Decode(&contract); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &contract); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, contract); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ContractHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	contract, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, contract); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ContractHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "The 'company_id' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Search", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	contracts, total, err := h.service.ListByCompany(r.Context(), companyID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, contracts, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ContractUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	contract, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, contract); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ContractHandler) CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateUser", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateUser(r.Context(), &user); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateUser", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateUser", "operation", "WriteCreated", "error", err)
	}
}

type assignRequest struct {
	ContractID string `json:"contract_id"`
}

func (h *ContractHandler) AssignUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AssignUser", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.AssignUser(r.Context(), ps.ByName("id"), req.ContractID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AssignUser", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ContractHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "The 'company_id' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ListUsers", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListUsers", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	users, total, err := h.service.ListUsers(r.Context(), companyID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListUsers", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, users, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListUsers", "operation", "WritePaginated", "error", err)
	}
}

func (h *ContractHandler) DeactivateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeactivateUser(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeactivateUser", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ContractHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/companies", h.CreateCompany)
	router.GET("/api/v1/companies/id/:id", h.GetCompany)

	router.POST("/api/v1/contracts", h.Create)
	router.GET("/api/v1/contracts/id/:id", h.GetByID)
	router.GET("/api/v1/contracts/search", h.Search)
	router.PATCH("/api/v1/contracts/id/:id", h.Update)

	router.POST("/api/v1/users", h.CreateUser)
	router.GET("/api/v1/users", h.ListUsers)
	router.PUT("/api/v1/users/id/:id/contract", h.AssignUser)
	router.POST("/api/v1/users/id/:id/deactivate", h.DeactivateUser)
}
