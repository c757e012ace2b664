// Package onboarding sequences the multi-step partner registration flow:
// identifier lookup, conditional user creation and partner registration,
// with a persisted marker so a half-committed flow can be finished later.
package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

// MinLookupLength is the identifier length that arms the automatic lookup
// on the dashboard form.
const MinLookupLength = 7

// ErrIdentifierTooShort rejects lookups below the arming threshold.
var ErrIdentifierTooShort = errors.New("onboarding: identifier too short")

// RegistryPerson is the registry record behind a known identifier.
type RegistryPerson struct {
	UserID    int64  `json:"userId"`
	FIN       string `json:"fin"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// LookupResult distinguishes the found and not-found branches. A miss is
// a valid outcome that unlocks manual entry, never an error.
type LookupResult struct {
	Found  bool            `json:"found"`
	Person *RegistryPerson `json:"person,omitempty"`
}

// Lookuper resolves identifiers against the upstream user registry.
// Concurrent lookups for the same identifier are collapsed with
// singleflight and results are cached briefly, so the keystroke-driven
// form cannot stampede the registry.
type Lookuper struct {
	client *backend.Client
	cache  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	caser  cases.Caser
}

// NewLookuper constructs a Lookuper. cache may be nil in tests.
func NewLookuper(client *backend.Client, cache *redis.Client, ttl time.Duration) *Lookuper {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Lookuper{
		client: client,
		cache:  cache,
		ttl:    ttl,
		caser:  cases.Title(language.Und),
	}
}

// Lookup resolves an identifier to a registry person.
func (l *Lookuper) Lookup(ctx context.Context, fin string) (LookupResult, error) {
	fin = strings.ToUpper(strings.TrimSpace(fin))
	if len(fin) < MinLookupLength {
		return LookupResult{}, ErrIdentifierTooShort
	}

	if cached, ok := l.fromCache(ctx, fin); ok {
		return cached, nil
	}

	// Waiters piggyback on the leader's flight; detach the fetch so a
	// canceled leader does not fail everyone behind it.
	detached := context.WithoutCancel(ctx)
	value, err, _ := l.group.Do(fin, func() (any, error) {
		return l.fetch(detached, fin)
	})
	if err != nil {
		return LookupResult{}, err
	}
	result := value.(LookupResult)
	l.toCache(detached, fin, result)
	return result, nil
}

func (l *Lookuper) fetch(ctx context.Context, fin string) (LookupResult, error) {
	raw, err := l.client.Get(ctx, "/users/by-fin/"+fin, nil)
	if errors.Is(err, backend.ErrNotFound) {
		return LookupResult{Found: false}, nil
	}
	if err != nil {
		return LookupResult{}, err
	}
	person, err := backend.DecodeEntity[RegistryPerson](raw)
	if err != nil {
		return LookupResult{}, err
	}
	person.FIN = fin
	// The registry stores names in upper case; normalize for prefill.
	person.FirstName = l.properCase(person.FirstName)
	person.LastName = l.properCase(person.LastName)
	return LookupResult{Found: true, Person: &person}, nil
}

func (l *Lookuper) properCase(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	return l.caser.String(strings.ToLower(name))
}

func (l *Lookuper) cacheKey(fin string) string {
	return "onboarding:lookup:" + fin
}

func (l *Lookuper) fromCache(ctx context.Context, fin string) (LookupResult, bool) {
	if l.cache == nil {
		return LookupResult{}, false
	}
	data, err := l.cache.Get(ctx, l.cacheKey(fin)).Bytes()
	if err != nil {
		return LookupResult{}, false
	}
	var result LookupResult
	if err := json.Unmarshal(data, &result); err != nil {
		return LookupResult{}, false
	}
	return result, true
}

func (l *Lookuper) toCache(ctx context.Context, fin string, result LookupResult) {
	if l.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = l.cache.Set(ctx, l.cacheKey(fin), data, l.ttl).Err()
}
