package services

import (
	"context"
	"creatorstats/internal/clients"
	"creatorstats/internal/models"
	"creatorstats/internal/providers"
	"creatorstats/internal/storage"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrOAuthState is returned when a callback does not belong to the sign-in in progress.
var ErrOAuthState = errors.New("oauth state does not match the pending sign-in")

func (f *Fetcher[C]) authorizer() (clients.Authorizer[C], error) {
	auth, ok := f.client.(clients.Authorizer[C])
	if !ok {
		return nil, clients.ErrOAuthUnsupported
	}
	if missing := auth.OAuthApp().Missing(); len(missing) > 0 {
		return nil, &models.ConfigurationError{Platform: f.Platform(), Missing: missing}
	}
	return auth, nil
}

// AuthURL stores a fresh state value and returns the platform's consent page for it.
// A newer sign-in replaces any pending one.
func (f *Fetcher[C]) AuthURL() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	auth, err := f.authorizer()
	if err != nil {
		return "", err
	}
	state := uuid.NewString()
	if err := storage.Save(f.store, f.Platform().OAuthStateKey(), state); err != nil {
		return "", err
	}
	return auth.AuthURL(state), nil
}

// CompleteOAuth exchanges the authorization code and stores the resulting
// credentials. The pending state is consumed whatever the outcome of the exchange.
func (f *Fetcher[C]) CompleteOAuth(ctx context.Context, code, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	auth, err := f.authorizer()
	if err != nil {
		return err
	}
	p := f.Platform()
	var pending string
	ok, err := storage.Load(f.store, p.OAuthStateKey(), &pending)
	if err != nil {
		return err
	}
	if !ok || pending == "" || pending != state {
		return ErrOAuthState
	}
	if err := f.store.Remove(p.OAuthStateKey()); err != nil {
		return err
	}

	cfg, err := f.loadConfig()
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: unreadable config replaced by sign-in: %s", p, err)
	}
	cfg, err = auth.Exchange(ctx, cfg, code, f.clock.Now())
	if err != nil {
		return &models.RemoteCallError{Platform: p, StatusCode: clients.StatusCode(err), Err: err}
	}
	if err := storage.Save(f.store, p.ConfigKey(), cfg); err != nil {
		return err
	}
	if err := f.store.Remove(p.CacheKey()); err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: failed to drop cache of previous account: %s", p, err)
	}
	f.logger.Infof(providers.TypeFetch, "%s: signed in with OAuth", p)
	return nil
}

// refreshCredentials renews an expiring token before an upstream call. Token
// requests are not counted against the call budget. On failure the current
// credentials are used as they are.
func (f *Fetcher[C]) refreshCredentials(ctx context.Context, cfg C, now time.Time) C {
	auth, ok := f.client.(clients.Authorizer[C])
	if !ok {
		return cfg
	}
	renewed, refreshed, err := auth.Refresh(ctx, cfg, now)
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "%s: token refresh failed: %s", f.Platform(), err)
		return cfg
	}
	if !refreshed {
		return cfg
	}
	if err := storage.Save(f.store, f.Platform().ConfigKey(), renewed); err != nil {
		f.logger.Errorf(providers.TypeFetch, "%s: failed to store renewed token: %s", f.Platform(), err)
	}
	f.logger.Infof(providers.TypeFetch, "%s: access token renewed", f.Platform())
	return renewed
}
