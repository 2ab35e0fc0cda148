package authority

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusboard/internal/apperr"
	"campusboard/internal/db"
	"campusboard/internal/models"
)

type fakeVerifier struct {
	tokens map[string]Identity
	calls  int
}

func (f *fakeVerifier) VerifyCredential(_ context.Context, credential string) (Identity, error) {
	f.calls++
	id, ok := f.tokens[credential]
	if !ok {
		return Identity{}, errors.New("signature invalid")
	}
	return id, nil
}

type fakeProfiles map[string]*models.Account

func (f fakeProfiles) GetAccountBySubject(_ context.Context, subject string) (*models.Account, error) {
	if subject == "broken" {
		return nil, errors.New("connection reset")
	}
	a, ok := f[subject]
	if !ok {
		return nil, db.ErrAccountNotFound
	}
	return a, nil
}

type memoryCache struct {
	mu   sync.Mutex
	vals map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{vals: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vals[key], nil
}

func (m *memoryCache) Set(key string, val []byte, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = val
	m.ttls[key] = exp
	return nil
}

func TestResolveCaller(t *testing.T) {
	member := &models.Account{ID: uuid.New(), Subject: "sub-member", Role: models.RoleMember}
	verifier := &fakeVerifier{tokens: map[string]Identity{
		"good":      {Subject: "sub-member"},
		"orphan":    {Subject: "sub-orphan"},
		"anonymous": {},
		"dbfail":    {Subject: "broken"},
	}}
	auth := New(verifier, fakeProfiles{"sub-member": member}, nil, time.Minute)
	ctx := context.Background()

	got, err := auth.ResolveCaller(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, member, got)

	tests := []struct {
		name       string
		credential string
		code       apperr.Code
	}{
		{"missing", "", apperr.Unauthenticated},
		{"blank", "   ", apperr.Unauthenticated},
		{"invalid", "forged", apperr.Unauthenticated},
		{"no subject", "anonymous", apperr.Unauthenticated},
		{"no profile", "orphan", apperr.Unauthenticated},
		{"profile store down", "dbfail", apperr.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ResolveCaller(ctx, tt.credential)
			assert.Equal(t, tt.code, apperr.CodeOf(err))
		})
	}
}

func TestResolveCaller_ProfileMissingIsDistinct(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]Identity{"orphan": {Subject: "sub-orphan"}}}
	auth := New(verifier, fakeProfiles{}, nil, time.Minute)

	_, err := auth.ResolveCaller(context.Background(), "orphan")
	assert.ErrorIs(t, err, ErrProfileMissing)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = auth.ResolveCaller(context.Background(), "forged")
	assert.NotErrorIs(t, err, ErrProfileMissing)
}

func TestResolveCaller_CachesSubjectNotRole(t *testing.T) {
	account := &models.Account{ID: uuid.New(), Subject: "sub-1", Role: models.RoleMember}
	profiles := fakeProfiles{"sub-1": account}
	verifier := &fakeVerifier{tokens: map[string]Identity{"tok": {Subject: "sub-1"}}}
	cache := newMemoryCache()
	auth := New(verifier, profiles, cache, time.Minute)
	ctx := context.Background()

	_, err := auth.ResolveCaller(ctx, "tok")
	require.NoError(t, err)

	account.Role = models.RoleMod
	got, err := auth.ResolveCaller(ctx, "tok")
	require.NoError(t, err)

	assert.Equal(t, 1, verifier.calls)
	assert.Equal(t, models.RoleMod, got.Role)
	for key := range cache.vals {
		assert.NotContains(t, key, "tok")
	}
}

func TestResolveCaller_CacheTTLBoundedByExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	verifier := &fakeVerifier{tokens: map[string]Identity{
		"short":   {Subject: "s", Expiry: now.Add(30 * time.Second)},
		"long":    {Subject: "s", Expiry: now.Add(time.Hour)},
		"expired": {Subject: "s", Expiry: now.Add(-time.Second)},
	}}
	cache := newMemoryCache()
	auth := New(verifier, fakeProfiles{"s": {Subject: "s"}}, cache, 5*time.Minute)
	auth.now = func() time.Time { return now }
	ctx := context.Background()

	for _, tok := range []string{"short", "long", "expired"} {
		_, err := auth.ResolveCaller(ctx, tok)
		require.NoError(t, err)
	}

	assert.Equal(t, 30*time.Second, cache.ttls[cacheKey("short")])
	assert.Equal(t, 5*time.Minute, cache.ttls[cacheKey("long")])
	_, cached := cache.ttls[cacheKey("expired")]
	assert.False(t, cached)
}
