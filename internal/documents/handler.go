package documents

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gemdesk/gemdesk/internal/platform/httpx"
)

// Handler serves the delivery act endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.Ping)
	r.Post("/delivery-acts", h.GenerateAct)
}

// Ping reports converter availability so the UI can disable the act
// buttons instead of failing late.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("pdf converter ping failed", "error", err)
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "pdf converter unreachable")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GenerateAct renders a delivery act and streams the PDF.
func (h *Handler) GenerateAct(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	pdf, fileName, err := h.service.GenerateAct(r.Context(), req)
	if err != nil {
		if fields, ok := httpx.ValidatorFields(err); ok {
			httpx.ValidationProblem(w, fields)
			return
		}
		if errors.Is(err, ErrUnknownActType) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown act type")
			return
		}
		h.logger.Error("act generation failed", "type", req.Type, "error", err)
		httpx.Problem(w, http.StatusBadGateway, "Document Generation Failed", "could not render the delivery act")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
