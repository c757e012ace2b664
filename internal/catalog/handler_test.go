package catalog

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/gemdesk/gemdesk/internal/listing"
	"github.com/gemdesk/gemdesk/internal/platform/backend"
	"github.com/gemdesk/gemdesk/internal/platform/httpx"
)

func newCategoryHandler(t *testing.T, upstream http.Handler) (*Handler[Category], *httptest.Server, func()) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	client := backend.NewClient(srv.URL, time.Second, nil)
	service := NewService[Category](client, "/categories", validator.New())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, service, "categories", nil, []listing.Column[Category]{
		{Header: "ID", Value: func(c Category) string { return strconv.FormatInt(c.ID, 10) }},
		{Header: "Name", Value: func(c Category) string { return c.Name }},
	})

	router := chi.NewRouter()
	router.Route("/catalog/categories", handler.MountRoutes)
	api := httptest.NewServer(router)
	return handler, api, func() {
		api.Close()
		srv.Close()
	}
}

func TestListReturnsViewSnapshot(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "gold", r.URL.Query().Get("name"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{
			"content":[{"id":1,"name":"Rings"},{"id":2,"name":"Necklaces"}],
			"number":0,"size":10,"totalElements":12
		}}}`))
	})
	_, api, done := newCategoryHandler(t, upstream)
	defer done()

	resp, err := http.Get(api.URL + "/catalog/categories/?name=gold&size=10")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap struct {
		Content       []Category `json:"content"`
		Page          int        `json:"page"`
		TotalElements int        `json:"totalElements"`
		TotalPages    int        `json:"totalPages"`
		Label         string     `json:"label"`
		HasNext       bool       `json:"hasNext"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.Len(t, snap.Content, 2)
	require.Equal(t, "Rings", snap.Content[0].Name)
	require.Equal(t, 12, snap.TotalElements)
	require.Equal(t, 2, snap.TotalPages)
	require.Equal(t, "Page 1 of 2", snap.Label)
	require.True(t, snap.HasNext)
}

func TestCreateMapsUpstreamValidationToInlineErrors(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":[{"field":"name","message":"already exists"}]}`))
	})
	_, api, done := newCategoryHandler(t, upstream)
	defer done()

	resp, err := http.Post(api.URL+"/catalog/categories/", "application/json",
		strings.NewReader(`{"name":"Rings"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var problem httpx.ProblemDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	require.Equal(t, "Validation Failed", problem.Title)
	require.Len(t, problem.Errors, 1)
	require.Equal(t, "name", problem.Errors[0].Field)
	require.Equal(t, "already exists", problem.Errors[0].Message)
}

func TestCreateRejectsInvalidDraftBeforeUpstream(t *testing.T) {
	hits := 0
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	})
	_, api, done := newCategoryHandler(t, upstream)
	defer done()

	resp, err := http.Post(api.URL+"/catalog/categories/", "application/json",
		strings.NewReader(`{"description":"no name"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, 0, hits)

	var problem httpx.ProblemDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	require.Equal(t, "name", problem.Errors[0].Field)
	require.Equal(t, "is required", problem.Errors[0].Message)
}

func TestShowUnknownIDIs404(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, api, done := newCategoryHandler(t, upstream)
	defer done()

	resp, err := http.Get(api.URL + "/catalog/categories/99")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportStreamsCurrentPageCSV(t *testing.T) {
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"id":1,"name":"Rings","description":"Gold rings"}],
			"number":0,"size":10,"totalElements":1}`))
	})
	_, api, done := newCategoryHandler(t, upstream)
	defer done()

	resp, err := http.Get(api.URL + "/catalog/categories/export")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "current-page", resp.Header.Get("X-Export-Scope"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "categories.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "Rings")
}

func TestDeleteReturnsRefreshedView(t *testing.T) {
	deleted := false
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			deleted = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"id":2,"name":"Necklaces"}],"number":0,"size":10,"totalElements":1}`))
	})
	_, api, done := newCategoryHandler(t, upstream)
	defer done()

	req, err := http.NewRequest(http.MethodDelete, api.URL+"/catalog/categories/1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, deleted)

	var result struct {
		View struct {
			Content []Category `json:"content"`
		} `json:"view"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.View.Content, 1)
	require.Equal(t, "Necklaces", result.View.Content[0].Name)
}
