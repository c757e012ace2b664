package inventory

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

// Handler serves the inventory screens.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/by-code/{code}", h.LookupByCode)
	r.Get("/{id}", h.Show)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List searches inventory items.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)
	snap, err := h.service.Search(r.Context(), viewKey(r), page, size, parseFilters(r))
	if err != nil && !errors.Is(err, listing.ErrStale) {
		h.logger.Error("list inventory failed", "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

// Show fetches one item.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get inventory item failed", "id", id, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// LookupByCode resolves a tag code scanned at the counter.
func (h *Handler) LookupByCode(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.LookupByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, ErrEmptyCode) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "empty item code")
			return
		}
		h.logger.Error("inventory code lookup failed", "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

type mutationResponse struct {
	Item Item                   `json:"item"`
	View listing.Snapshot[Item] `json:"view"`
}

// Create registers a new unit.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var draft CreateItemRequest
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	created, snap, err := h.service.Create(r.Context(), viewKey(r), draft)
	if err != nil {
		h.respondMutationError(w, "create item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, mutationResponse{Item: created, View: snap})
}

// Update patches a unit.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch UpdateItemRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	updated, snap, err := h.service.Update(r.Context(), viewKey(r), id, patch)
	if err != nil {
		h.respondMutationError(w, "update item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, mutationResponse{Item: updated, View: snap})
}

// Delete retires a unit record entirely.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Delete(r.Context(), viewKey(r), id)
	if err != nil {
		h.respondMutationError(w, "delete item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"view": snap})
}

// Export streams the currently loaded page as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	controller := h.service.View(viewKey(r))
	if !controller.Loaded() {
		page, size := paging(r)
		if _, err := h.service.Search(r.Context(), viewKey(r), page, size, parseFilters(r)); err != nil && !errors.Is(err, listing.ErrStale) {
			h.logger.Error("export inventory failed", "error", err)
			httpx.RespondUpstreamError(w, err)
			return
		}
	}
	snap := controller.Snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	w.Header().Set("X-Export-Scope", "current-page")
	if err := listing.WriteCSV(w, exportColumns, snap.Content); err != nil {
		h.logger.Error("export inventory write failed", "error", err)
	}
}

var exportColumns = []listing.Column[Item]{
	{Header: "ID", Value: func(i Item) string { return strconv.FormatInt(i.ID, 10) }},
	{Header: "Code", Value: func(i Item) string { return i.Code }},
	{Header: "Product ID", Value: func(i Item) string { return strconv.FormatInt(i.ProductID, 10) }},
	{Header: "Status", Value: func(i Item) string { return i.Status }},
	{Header: "Location", Value: func(i Item) string { return i.Location }},
	{Header: "Condition", Value: func(i Item) string { return i.Condition }},
}

func (h *Handler) respondMutationError(w http.ResponseWriter, op string, err error) {
	if fields, ok := httpx.ValidatorFields(err); ok {
		httpx.ValidationProblem(w, fields)
		return
	}
	if errors.Is(err, ErrInvalidID) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid item id")
		return
	}
	h.logger.Error(op+" failed", "error", err)
	httpx.RespondUpstreamError(w, err)
}

func parseFilters(r *http.Request) ListFilters {
	query := r.URL.Query()
	filters := ListFilters{
		Code:     query.Get("code"),
		Status:   query.Get("status"),
		Location: query.Get("location"),
	}
	if raw := query.Get("productId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filters.ProductID = &id
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid item id")
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
