package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/httpx"
	"github.com/gemdesk/gemdesk/internal/shared"
)

// Handler serves the order screens.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers order routes. All of them are reads.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/messages", h.Messages)
}

// List searches orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)
	snap, err := h.service.Search(r.Context(), viewKey(r), page, size, parseFilters(r))
	if err != nil && !errors.Is(err, listing.ErrStale) {
		h.logger.Error("list orders failed", "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

// Show fetches one order.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrInvalidID) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
			return
		}
		h.logger.Error("get order failed", "id", id, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Messages returns the order's message thread.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	messages, err := h.service.Messages(r.Context(), id)
	if err != nil {
		h.logger.Error("order messages failed", "id", id, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	if messages == nil {
		messages = []Message{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// Export streams the currently loaded page as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	controller := h.service.View(viewKey(r))
	if !controller.Loaded() {
		page, size := paging(r)
		if _, err := h.service.Search(r.Context(), viewKey(r), page, size, parseFilters(r)); err != nil && !errors.Is(err, listing.ErrStale) {
			h.logger.Error("export orders failed", "error", err)
			httpx.RespondUpstreamError(w, err)
			return
		}
	}
	snap := controller.Snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	w.Header().Set("X-Export-Scope", "current-page")
	if err := listing.WriteCSV(w, exportColumns, snap.Content); err != nil {
		h.logger.Error("export orders write failed", "error", err)
	}
}

var exportColumns = []listing.Column[Order]{
	{Header: "ID", Value: func(o Order) string { return strconv.FormatInt(o.ID, 10) }},
	{Header: "Number", Value: func(o Order) string { return o.Number }},
	{Header: "Type", Value: func(o Order) string { return o.Type }},
	{Header: "Status", Value: func(o Order) string { return o.Status }},
	{Header: "Customer", Value: func(o Order) string { return o.CustomerName }},
	{Header: "Total", Value: func(o Order) string { return strconv.FormatFloat(o.Total, 'f', 2, 64) }},
}

func parseFilters(r *http.Request) ListFilters {
	query := r.URL.Query()
	filters := ListFilters{
		Number: query.Get("number"),
		Type:   query.Get("type"),
		Status: query.Get("status"),
	}
	if raw := query.Get("partnerId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filters.PartnerID = &id
		}
	}
	return filters
}

func paging(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = shared.DefaultPageSize
	}
	return page, size
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return 0, false
	}
	return id, true
}

func viewKey(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.ID
	}
	return "anonymous"
}
