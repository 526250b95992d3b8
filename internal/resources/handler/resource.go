package handler

import (
	"encoding/json"
	"net/http"

	"hopper/internal/resources/service"
	httputil "hopper/pkg/http"
	"hopper/pkg/logger"
	"hopper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ResourceHandler struct {
	service service.ResourceService
	log     *logger.Logger
}

func NewResourceHandler(service service.ResourceService, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{
		service: service,
		log:     log,
	}
}

func (h *ResourceHandler) CreateSite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var site model.Site
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateSite", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateSite(r.Context(), &site); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateSite", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, site); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateSite", "operation", "WriteCreated", "error", err)
	}
}

func (h *ResourceHandler) GetSite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	site, err := h.service.GetSiteByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSite", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, site); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSite", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResourceHandler) ListSites(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSites", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	sites, total, err := h.service.ListSites(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListSites", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, sites, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListSites", "operation", "WritePaginated", "error", err)
	}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var resource model.Resource
	if err := json.NewDecoder(r.Body).Decode(&resource); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &resource); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, resource); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ResourceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resource, err := h.service.FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, resource); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResourceHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	siteID := query.Get("site_id")
	if siteID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "The 'site_id' query parameter is required",
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

	resources, total, err := h.service.ListBySite(r.Context(), siteID, query.Get("type"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, resources, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ResourceUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	resource, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, resource); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *ResourceHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.SetStatus(r.Context(), ps.ByName("id"), req.Status); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ResourceHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sites", h.CreateSite)
	router.GET("/api/v1/sites", h.ListSites)
	router.GET("/api/v1/sites/id/:id", h.GetSite)

	router.POST("/api/v1/resources", h.Create)
	router.GET("/api/v1/resources/id/:id", h.GetByID)
	router.GET("/api/v1/resources/search", h.Search)
	router.PATCH("/api/v1/resources/id/:id", h.Update)
	router.PUT("/api/v1/resources/id/:id/status", h.SetStatus)
}
