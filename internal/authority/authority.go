// Package authority turns a bearer credential into the caller's Account.
package authority

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusboard/internal/apperr"
	"campusboard/internal/db"
	"campusboard/internal/logging"
	"campusboard/internal/models"
	"campusboard/internal/oops"
)

// ErrProfileMissing means the credential is valid but no account exists for
// its subject. It is treated as unauthenticated.
var ErrProfileMissing = fmt.Errorf("%w: no profile for verified subject", apperr.ErrUnauthenticated)

// Identity is what the identity provider vouches for.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Expiry  time.Time
}

// Verifier validates a credential with the identity provider.
type Verifier interface {
	VerifyCredential(ctx context.Context, credential string) (Identity, error)
}

// Profiles looks up accounts. A missing account is db.ErrAccountNotFound.
type Profiles interface {
	GetAccountBySubject(ctx context.Context, subject string) (*models.Account, error)
}

// Cache stores verified subjects. Get returns nil, nil on a miss, which is
// how fiber storage backends behave.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// Authority resolves callers. Only the credential-to-subject step is
// cached; the account and its role are read on every request.
type Authority struct {
	verifier Verifier
	profiles Profiles
	cache    Cache
	ttl      time.Duration
	now      func() time.Time
}

// New builds an Authority. cache may be nil to disable caching.
func New(verifier Verifier, profiles Profiles, cache Cache, ttl time.Duration) *Authority {
	return &Authority{
		verifier: verifier,
		profiles: profiles,
		cache:    cache,
		ttl:      ttl,
		now:      time.Now,
	}
}

// ResolveCaller returns the account for credential, or an error that
// classifies as Unauthenticated.
func (a *Authority) ResolveCaller(ctx context.Context, credential string) (*models.Account, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, apperr.ErrUnauthenticated
	}

	subject, err := a.subject(ctx, credential)
	if err != nil {
		logging.Debug().Err(err).Msg("credential rejected")
		return nil, apperr.ErrUnauthenticated
	}

	account, err := a.profiles.GetAccountBySubject(ctx, subject)
	if errors.Is(err, db.ErrAccountNotFound) {
		logging.Info().Str("subject", subject).Msg("verified subject has no profile")
		return nil, ErrProfileMissing
	}
	if err != nil {
		return nil, oops.New(err, "failed to load profile")
	}
	return account, nil
}

func (a *Authority) subject(ctx context.Context, credential string) (string, error) {
	key := cacheKey(credential)
	if a.cache != nil {
		cached, err := a.cache.Get(key)
		if err != nil {
			logging.Warn().Err(err).Msg("token cache read failed")
		} else if len(cached) > 0 {
			return string(cached), nil
		}
	}

	identity, err := a.verifier.VerifyCredential(ctx, credential)
	if err != nil {
		return "", err
	}
	if identity.Subject == "" {
		return "", errors.New("credential has no subject")
	}

	if a.cache != nil {
		ttl := a.ttl
		if !identity.Expiry.IsZero() {
			if remaining := identity.Expiry.Sub(a.now()); remaining < ttl {
				ttl = remaining
			}
		}
		if ttl > 0 {
			if err := a.cache.Set(key, []byte(identity.Subject), ttl); err != nil {
				logging.Warn().Err(err).Msg("token cache write failed")
			}
		}
	}
	return identity.Subject, nil
}

// cacheKey never stores the raw credential.
func cacheKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return "campusboard:token:" + hex.EncodeToString(sum[:])
}
