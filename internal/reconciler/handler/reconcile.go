package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"flpsaude/internal/reconciler/service"
	apperrors "flpsaude/pkg/errors"
	httputil "flpsaude/pkg/http"
	"flpsaude/pkg/logger"
)

type reconcileRequest struct {
	ProfessionalID string `json:"professional_id,omitempty"`
}

type reconcileResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Logs    []string `json:"logs"`
	Error   string   `json:"error,omitempty"`
}

type ReconcilerHandler struct {
	service service.ReconcilerService
	log     *logger.Logger
}

func NewReconcilerHandler(service service.ReconcilerService, log *logger.Logger) *ReconcilerHandler {
	return &ReconcilerHandler{
		service: service,
		log:     log,
	}
}

// Reconcile triggers a run. An empty body, or a body without
// professional_id, reconciles every professional.
func (h *ReconcilerHandler) Reconcile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	summary, err := h.service.Run(r.Context(), req.ProfessionalID)
	if err != nil {
		resp := reconcileResponse{
			Success: false,
			Logs:    summary.Logs,
			Error:   err.Error(),
		}
		if writeErr := httputil.WriteJSON(w, http.StatusInternalServerError, resp); writeErr != nil {
			h.log.Error("failed to write reconcile response", "handler", "Reconcile", "error", writeErr)
		}
		return
	}

	resp := reconcileResponse{
		Success: true,
		Message: fmt.Sprintf("reconciled %d professionals (%d failed): %d inserted, %d deleted",
			summary.Professionals, summary.Failed, summary.Inserted, summary.Deleted),
		Logs: summary.Logs,
	}
	if err := httputil.WriteJSON(w, http.StatusOK, resp); err != nil {
		h.log.Error("failed to write reconcile response", "handler", "Reconcile", "error", err)
	}
}

func (h *ReconcilerHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/slots/reconcile", h.Reconcile)
}
