package partners

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/partners/onboarding"
	"github.com/gemdesk/gemdesk/internal/platform/httpx"
	"github.com/gemdesk/gemdesk/internal/shared"
)

// 10 MB cap for uploaded partner documents.
const maxDocumentSize = 10 << 20

// Handler serves the partner list and detail screens. Partner creation
// lives in the nested onboarding handler.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	onboarding *onboarding.Handler
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, onboarding *onboarding.Handler) *Handler {
	return &Handler{logger: logger, service: service, onboarding: onboarding}
}

// MountRoutes registers the partner endpoints under the current group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/export", h.Export)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/documents", h.UploadDocument)
	r.Route("/onboarding", h.onboarding.MountRoutes)
}

// List searches a partner page for the session's view state.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, size := paging(r)
	query := r.URL.Query()
	snap, err := h.service.Search(r.Context(), viewKey(r), page, size, query.Get("name"), query.Get("status"))
	if err != nil && !errors.Is(err, listing.ErrStale) {
		h.logger.Error("partner list failed", "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

// Show fetches one partner by id.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	partner, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("partner get failed", "id", id, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, partner)
}

// Delete removes a partner and returns the refreshed view.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Delete(r.Context(), viewKey(r), id)
	if err != nil {
		if errors.Is(err, ErrInvalidID) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid partner id")
			return
		}
		h.logger.Error("partner delete failed", "id", id, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"view": snap})
}

// UploadDocument forwards a signed agreement or identity scan upstream.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	if err := h.service.UploadDocument(r.Context(), id, header.Filename, file); err != nil {
		h.logger.Error("document upload failed", "partner_id", id, "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"fileName": header.Filename})
}

// Export streams the currently loaded partner page as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	controller := h.service.View(viewKey(r))
	if !controller.Loaded() {
		page, size := paging(r)
		query := r.URL.Query()
		if _, err := h.service.Search(r.Context(), viewKey(r), page, size, query.Get("name"), query.Get("status")); err != nil && !errors.Is(err, listing.ErrStale) {
			h.logger.Error("partner export search failed", "error", err)
			httpx.RespondUpstreamError(w, err)
			return
		}
	}
	snap := controller.Snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="partners.csv"`)
	w.Header().Set("X-Export-Scope", "current-page")
	if err := listing.WriteCSV(w, exportColumns, snap.Content); err != nil {
		h.logger.Error("partner export write failed", "error", err)
	}
}

var exportColumns = []listing.Column[Partner]{
	{Header: "ID", Value: func(p Partner) string { return strconv.FormatInt(p.ID, 10) }},
	{Header: "Name", Value: Partner.DisplayName},
	{Header: "Kind", Value: func(p Partner) string { return p.Kind }},
	{Header: "FIN", Value: func(p Partner) string { return p.FIN }},
	{Header: "Email", Value: func(p Partner) string { return p.Email }},
	{Header: "Phone", Value: func(p Partner) string { return p.Phone }},
	{Header: "Status", Value: func(p Partner) string { return p.Status }},
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid partner id")
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
