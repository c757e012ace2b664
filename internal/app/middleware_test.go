package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gemdesk/gemdesk/internal/shared"
)

func newSessionConfig(t *testing.T) MiddlewareConfig {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return MiddlewareConfig{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		SessionManager: shared.NewSessionManager(client, "gemdesk_session", "secret", time.Hour, false),
		CSRFManager:    shared.NewCSRFManager("secret"),
	}
}

func TestSessionWriterForwardsFlush(t *testing.T) {
	mw := sessionMiddleware(newSessionConfig(t))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok, "streaming handlers need http.Flusher through the session layer")
		_, _ = io.WriteString(w, "chunk")
		f.Flush()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	require.True(t, rec.Flushed)
	// The session cookie still goes out ahead of the first byte.
	require.NotEmpty(t, rec.Result().Cookies())
	require.Equal(t, "chunk", rec.Body.String())
}

func TestSessionWriterCommitsBeforeFirstByte(t *testing.T) {
	mw := sessionMiddleware(newSessionConfig(t))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		require.NotNil(t, sess)
		sess.Set("greeting", "salam")
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, "gemdesk_session", cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)
}
