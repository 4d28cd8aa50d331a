package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// TokenCache holds one client-credentials access token and refreshes it
// single-flight: concurrent callers hitting an expired token trigger exactly
// one upstream fetch.
type TokenCache struct {
	cc     *clientcredentials.Config
	leeway time.Duration

	mu    sync.RWMutex
	token *oauth2.Token
	group singleflight.Group
}

// NewTokenCache resolves the token endpoint either from an explicit URL or
// through OIDC discovery on the issuer.
func NewTokenCache(ctx context.Context, cfg *Config) (*TokenCache, error) {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		if cfg.IssuerURL == "" {
			return nil, fmt.Errorf("registry token endpoint is not configured")
		}
		provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("discovering registry issuer, %v", err)
		}
		tokenURL = provider.Endpoint().TokenURL
	}

	return &TokenCache{
		cc: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       cfg.Scopes,
		},
		leeway: 30 * time.Second,
	}, nil
}

func (t *TokenCache) Token(ctx context.Context) (string, error) {
	t.mu.RLock()
	token := t.token
	t.mu.RUnlock()
	if t.usable(token) {
		return token.AccessToken, nil
	}

	fetched, err, _ := t.group.Do("token", func() (any, error) {
		t.mu.RLock()
		current := t.token
		t.mu.RUnlock()
		if t.usable(current) {
			return current, nil
		}

		fresh, err := t.cc.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching registry token, %v", err)
		}

		t.mu.Lock()
		t.token = fresh
		t.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return "", err
	}

	return fetched.(*oauth2.Token).AccessToken, nil
}

func (t *TokenCache) usable(token *oauth2.Token) bool {
	return token != nil && token.AccessToken != "" &&
		(token.Expiry.IsZero() || time.Until(token.Expiry) > t.leeway)
}
