package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
	"github.com/gemdesk/gemdesk/internal/platform/httpx"
	"github.com/gemdesk/gemdesk/internal/shared"
)

// FilterFunc shapes the search filters for one entity from raw query
// parameters. Blank values are dropped later by the backend adapter.
type FilterFunc func(url.Values) backend.Filters

// Handler serves the JSON list/detail/mutation endpoints for one catalog
// entity.
type Handler[T any] struct {
	logger  *slog.Logger
	service *Service[T]
	entity  string
	filters FilterFunc
	columns []listing.Column[T]
}

// NewHandler constructs a Handler.
func NewHandler[T any](logger *slog.Logger, service *Service[T], entity string, filters FilterFunc, columns []listing.Column[T]) *Handler[T] {
	if filters == nil {
		filters = NameFilter
	}
	return &Handler[T]{logger: logger, service: service, entity: entity, filters: filters, columns: columns}
}

// Service exposes the vertical's service for cross-module reads, such as
// category names on delivery acts.
func (h *Handler[T]) Service() *Service[T] {
	return h.service
}

// NameFilter is the default filter set for reference data: a single
// free-text name search.
func NameFilter(query url.Values) backend.Filters {
	return backend.Filters{"name": query.Get("name")}
}

// MountRoutes registers the vertical under the current route group.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Show)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List searches a page for the session's view state.
func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	page, size := parsePaging(r)
	snap, err := h.service.View(viewKey(r)).Search(r.Context(), page, size, h.filters(r.URL.Query()))
	if err != nil && !errors.Is(err, listing.ErrStale) {
		h.logger.Error("list failed", "entity", h.entity, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

// Show fetches one entity by id.
func (h *Handler[T]) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entity, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get failed", "entity", h.entity, "id", id, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entity)
}

type mutationResponse[T any] struct {
	Entity T                   `json:"entity"`
	View   listing.Snapshot[T] `json:"view"`
}

// Create submits a new entity and returns it with the refreshed view.
func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var draft T
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	created, snap, err := h.service.Create(r.Context(), viewKey(r), draft)
	if err != nil {
		h.respondMutationError(w, "create", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, mutationResponse[T]{Entity: created, View: snap})
}

// Update replaces an entity and returns it with the refreshed view.
func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch T
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	updated, snap, err := h.service.Update(r.Context(), viewKey(r), id, patch)
	if err != nil {
		h.respondMutationError(w, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, mutationResponse[T]{Entity: updated, View: snap})
}

// Delete removes an entity. The refreshed view never leaves the operator
// on an empty trailing page.
func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Delete(r.Context(), viewKey(r), id)
	if err != nil {
		h.respondMutationError(w, "delete", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"view": snap})
}

// Export streams the currently loaded page as CSV. The scope is the loaded
// page only, surfaced through the X-Export-Scope header.
func (h *Handler[T]) Export(w http.ResponseWriter, r *http.Request) {
	controller := h.service.View(viewKey(r))
	if !controller.Loaded() {
		page, size := parsePaging(r)
		if _, err := controller.Search(r.Context(), page, size, h.filters(r.URL.Query())); err != nil && !errors.Is(err, listing.ErrStale) {
			h.logger.Error("export search failed", "entity", h.entity, "error", err)
			httpx.RespondUpstreamError(w, err)
			return
		}
	}
	snap := controller.Snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.entity+`.csv"`)
	w.Header().Set("X-Export-Scope", "current-page")
	if err := listing.WriteCSV(w, h.columns, snap.Content); err != nil {
		h.logger.Error("export write failed", "entity", h.entity, "error", err)
	}
}

func (h *Handler[T]) respondMutationError(w http.ResponseWriter, op string, err error) {
	if fields, ok := httpx.ValidatorFields(err); ok {
		httpx.ValidationProblem(w, fields)
		return
	}
	if errors.Is(err, ErrInvalidID) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entity id")
		return
	}
	h.logger.Error(op+" failed", "entity", h.entity, "error", err)
	httpx.RespondUpstreamError(w, err)
}

func parsePaging(r *http.Request) (page, size int) {
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entity id")
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
