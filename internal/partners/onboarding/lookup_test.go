package onboarding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

func TestLookupRejectsShortIdentifier(t *testing.T) {
	lookuper := NewLookuper(backend.NewClient("http://127.0.0.1:0", time.Second, nil), nil, time.Second)

	_, err := lookuper.Lookup(context.Background(), "AB12")
	require.ErrorIs(t, err, ErrIdentifierTooShort)
}

func TestLookupFoundNormalizesNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/by-fin/1ABCDEF", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"userId":42,"firstName":"AYSEL","lastName":"MAMMADOVA","email":"aysel@example.com"}}`))
	}))
	defer srv.Close()

	lookuper := NewLookuper(backend.NewClient(srv.URL, time.Second, nil), nil, time.Second)

	result, err := lookuper.Lookup(context.Background(), " 1abcdef ")
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, int64(42), result.Person.UserID)
	require.Equal(t, "Aysel", result.Person.FirstName)
	require.Equal(t, "Mammadova", result.Person.LastName)
	require.Equal(t, "1ABCDEF", result.Person.FIN)
}

func TestLookupMissIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	lookuper := NewLookuper(backend.NewClient(srv.URL, time.Second, nil), nil, time.Second)

	result, err := lookuper.Lookup(context.Background(), "9ZYXWVU")
	require.NoError(t, err)
	require.False(t, result.Found)
	require.Nil(t, result.Person)
}

func TestLookupSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The caller gives up while the registry request is in flight. The
	// flight is shared with concurrent waiters and must complete anyway.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":9,"firstName":"KAMRAN","lastName":"GULIYEV"}`))
	}))
	defer srv.Close()

	lookuper := NewLookuper(backend.NewClient(srv.URL, time.Second, nil), nil, time.Second)

	result, err := lookuper.Lookup(ctx, "3ASDFGH")
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, "Kamran", result.Person.FirstName)
}

func TestLookupServesRepeatFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = cache.Close() }()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":7,"firstName":"LEYLA","lastName":"ALIYEVA"}`))
	}))
	defer srv.Close()

	lookuper := NewLookuper(backend.NewClient(srv.URL, time.Second, nil), cache, time.Minute)

	first, err := lookuper.Lookup(context.Background(), "5QWERTY")
	require.NoError(t, err)
	require.True(t, first.Found)

	second, err := lookuper.Lookup(context.Background(), "5qwerty")
	require.NoError(t, err)
	require.True(t, second.Found)
	require.Equal(t, "Leyla", second.Person.FirstName)
	require.Equal(t, 1, hits)
}
