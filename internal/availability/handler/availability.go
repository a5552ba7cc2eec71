package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"flpsaude/internal/availability/service"
	apperrors "flpsaude/pkg/errors"
	httputil "flpsaude/pkg/http"
	"flpsaude/pkg/logger"
	"flpsaude/pkg/model"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) CreateRule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rule model.RecurringRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.CreateRule(r.Context(), &rule); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, rule); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateRule", "error", err)
	}
}

func (h *AvailabilityHandler) GetRules(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if professionalID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("'professional_id' query parameter is required"))
		return
	}

	rules, err := h.service.GetRulesByProfessional(r.Context(), professionalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, rules); err != nil {
		h.log.Error("failed to write success response", "handler", "GetRules", "error", err)
	}
}

func (h *AvailabilityHandler) UpdateRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		httputil.WriteError(w, apperrors.InvalidInput("ID parameter is required"))
		return
	}

	var updates model.RecurringRuleUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.UpdateRule(r.Context(), id, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) DeleteRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		httputil.WriteError(w, apperrors.InvalidInput("ID parameter is required"))
		return
	}

	if err := h.service.DeleteRule(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) CreateOverride(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var override model.AvailabilityOverride
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.CreateOverride(r.Context(), &override); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, override); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateOverride", "error", err)
	}
}

func (h *AvailabilityHandler) GetOverrides(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if professionalID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("'professional_id' query parameter is required"))
		return
	}

	overrides, err := h.service.GetOverridesByProfessional(r.Context(), professionalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, overrides); err != nil {
		h.log.Error("failed to write success response", "handler", "GetOverrides", "error", err)
	}
}

func (h *AvailabilityHandler) UpdateOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		httputil.WriteError(w, apperrors.InvalidInput("ID parameter is required"))
		return
	}

	var updates model.AvailabilityOverrideUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.UpdateOverride(r.Context(), id, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) DeleteOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		httputil.WriteError(w, apperrors.InvalidInput("ID parameter is required"))
		return
	}

	if err := h.service.DeleteOverride(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/availability/rules", h.CreateRule)
	router.GET("/api/v1/availability/rules", h.GetRules)
	router.PATCH("/api/v1/availability/rules/id/:id", h.UpdateRule)
	router.DELETE("/api/v1/availability/rules/id/:id", h.DeleteRule)

	router.POST("/api/v1/availability/overrides", h.CreateOverride)
	router.GET("/api/v1/availability/overrides", h.GetOverrides)
	router.PATCH("/api/v1/availability/overrides/id/:id", h.UpdateOverride)
	router.DELETE("/api/v1/availability/overrides/id/:id", h.DeleteOverride)
}
