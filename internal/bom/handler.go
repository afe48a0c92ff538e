package bom

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fabriq-erp/fabriq/internal/platform/httpx"
)

// CycleCounter receives truncated-cycle observations for monitoring.
type CycleCounter interface {
	CountCycles(n int)
}

// Handler exposes the cost read path.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cycles  CycleCounter
}

// NewHandler constructs Handler. cycles may be nil.
func NewHandler(logger *slog.Logger, service *Service, cycles CycleCounter) *Handler {
	return &Handler{logger: logger, service: service, cycles: cycles}
}

// MountRoutes registers cost routes; mounted under /products.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/cost", h.GetCost)
}

func (h *Handler) GetCost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}

	allowCached := r.URL.Query().Get("cached") == "1"

	breakdown, err := h.service.ProductCost(r.Context(), id, allowCached)
	if err != nil {
		h.logger.Error("resolve product cost", slog.Int64("product_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.cycles != nil && breakdown.CyclesDetected > 0 {
		h.cycles.CountCycles(breakdown.CyclesDetected)
	}
	httpx.JSON(w, http.StatusOK, breakdown)
}
