package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFiltersQueryDropsBlankValues(t *testing.T) {
	var nilPartner *int64
	price := 150.5
	status := ""
	filters := Filters{
		"name":        "  ",
		"status":      &status,
		"partnerId":   nilPartner,
		"categoryIds": []int64{3, 7},
		"colors":      []string{"", "red"},
		"priceMin":    price,
		"active":      true,
	}

	values := filters.Query(2, 10)

	require.Equal(t, "2", values.Get("page"))
	require.Equal(t, "10", values.Get("size"))
	require.NotContains(t, values, "name")
	require.NotContains(t, values, "status")
	require.NotContains(t, values, "partnerId")
	require.Equal(t, []string{"3", "7"}, values["categoryIds"])
	require.Equal(t, []string{"red"}, values["colors"])
	require.Equal(t, "150.5", values.Get("priceMin"))
	require.Equal(t, "true", values.Get("active"))
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, StaticToken("secret-token"))
	_, err := client.Get(context.Background(), "/things/1", nil)
	require.NoError(t, err)
	require.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClientDecodesValidationEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"data":[{"field":"email","message":"Email format is invalid"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Post(context.Background(), "/partners", map[string]string{"email": "nope"})
	require.Error(t, err)

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	require.Len(t, fields, 1)
	require.Equal(t, "email", fields[0].Field)
	require.Equal(t, "Email format is invalid", fields[0].Message)
}

func TestClientDecodesMessageEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"upstream exploded"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Get(context.Background(), "/things", nil)
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, http.StatusInternalServerError, remote.Status)
	require.Equal(t, "upstream exploded", remote.Message)
	require.False(t, remote.IsValidation())
}

func TestClientMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Get(context.Background(), "/things/99", nil)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestClientUploadSendsMultipart(t *testing.T) {
	var contentType, fileName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		fileName = header.Filename
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Upload(context.Background(), "/partners/1/documents", "file", "agreement.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	require.Contains(t, contentType, "multipart/form-data")
	require.Equal(t, "agreement.pdf", fileName)
}
