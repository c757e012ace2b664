package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/httpx"
	"github.com/gemdesk/gemdesk/internal/shared"
)

// Handler serves the product screens.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Show)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List searches products with the full filter set.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)
	snap, err := h.service.Search(r.Context(), viewKey(r), page, size, parseFilters(r))
	if err != nil && !errors.Is(err, listing.ErrStale) {
		h.logger.Error("list products failed", "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

// Show fetches one product.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get product failed", "id", id, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

type mutationResponse struct {
	Product Product                   `json:"product"`
	View    listing.Snapshot[Product] `json:"view"`
}

// Create submits a new product draft.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var draft CreateProductRequest
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	created, snap, err := h.service.Create(r.Context(), viewKey(r), draft)
	if err != nil {
		h.respondMutationError(w, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, mutationResponse{Product: created, View: snap})
}

// Update patches a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch UpdateProductRequest
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	updated, snap, err := h.service.Update(r.Context(), viewKey(r), id, patch)
	if err != nil {
		h.respondMutationError(w, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, mutationResponse{Product: updated, View: snap})
}

// Delete removes a product after the UI-side confirmation.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Delete(r.Context(), viewKey(r), id)
	if err != nil {
		h.respondMutationError(w, "delete product", err)
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
			h.logger.Error("export products failed", "error", err)
			httpx.RespondUpstreamError(w, err)
			return
		}
	}
	snap := controller.Snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	w.Header().Set("X-Export-Scope", "current-page")
	if err := listing.WriteCSV(w, exportColumns, snap.Content); err != nil {
		h.logger.Error("export products write failed", "error", err)
	}
}

var exportColumns = []listing.Column[Product]{
	{Header: "ID", Value: func(p Product) string { return strconv.FormatInt(p.ID, 10) }},
	{Header: "Name", Value: func(p Product) string { return p.Name }},
	{Header: "SKU", Value: func(p Product) string { return p.SKU }},
	{Header: "Status", Value: func(p Product) string { return p.Status }},
	{Header: "Rent Price", Value: func(p Product) string { return strconv.FormatFloat(p.RentPrice, 'f', 2, 64) }},
	{Header: "Sale Price", Value: func(p Product) string { return strconv.FormatFloat(p.SalePrice, 'f', 2, 64) }},
}

func (h *Handler) respondMutationError(w http.ResponseWriter, op string, err error) {
	if fields, ok := httpx.ValidatorFields(err); ok {
		httpx.ValidationProblem(w, fields)
		return
	}
	if errors.Is(err, ErrInvalidID) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	h.logger.Error(op+" failed", "error", err)
	httpx.RespondUpstreamError(w, err)
}

func parseFilters(r *http.Request) ListFilters {
	query := r.URL.Query()
	filters := ListFilters{
		Name:   query.Get("name"),
		Status: query.Get("status"),
	}
	for _, raw := range query["categoryIds"] {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
				filters.CategoryIDs = append(filters.CategoryIDs, id)
			}
		}
	}
	if raw := query.Get("partnerId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filters.PartnerID = &id
		}
	}
	if raw := query.Get("priceMin"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			filters.PriceMin = &v
		}
	}
	if raw := query.Get("priceMax"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			filters.PriceMax = &v
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
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
