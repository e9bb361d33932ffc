package clients

import (
	"context"
	"creatorstats/internal/models"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// ErrOAuthUnsupported is returned for platforms that have no authorization-code sign-in.
var ErrOAuthUnsupported = errors.New("platform does not support OAuth sign-in")

var (
	googleEndpoint = oauth2.Endpoint{
		AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:  "https://oauth2.googleapis.com/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	instagramEndpoint = oauth2.Endpoint{
		AuthURL:   "https://api.instagram.com/oauth/authorize",
		TokenURL:  "https://api.instagram.com/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
)

// OAuthApp is the application registered with a platform's developer console.
type OAuthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

func (a OAuthApp) Missing() []string {
	var missing []string
	if a.ClientID == "" {
		missing = append(missing, "clientId")
	}
	if a.ClientSecret == "" {
		missing = append(missing, "clientSecret")
	}
	if a.RedirectURI == "" {
		missing = append(missing, "redirectUri")
	}
	return missing
}

func (a OAuthApp) config(endpoint oauth2.Endpoint, scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		RedirectURL:  a.RedirectURI,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
}

// Authorizer is implemented by clients that can sign an account in through the
// authorization-code flow and keep its token fresh.
type Authorizer[C models.ServiceConfig] interface {
	OAuthApp() OAuthApp
	AuthURL(state string) string
	// Exchange trades an authorization code for credentials merged into cfg.
	Exchange(ctx context.Context, cfg C, code string, now time.Time) (C, error)
	// Refresh renews a token close to expiry. It reports false when nothing was renewed.
	Refresh(ctx context.Context, cfg C, now time.Time) (C, bool, error)
}

// oauthContext makes the oauth2 package use our HTTP client for token requests.
func oauthContext(ctx context.Context, httpClient *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, httpClient)
}

// tokenError keeps the token endpoint's status visible to StatusCode.
func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return fmt.Errorf("token endpoint: %w", &HTTPStatusError{StatusCode: re.Response.StatusCode, Body: string(re.Body)})
	}
	return fmt.Errorf("token endpoint: %w", err)
}

// bearerClient wraps httpClient so every request carries token.
func bearerClient(ctx context.Context, httpClient *http.Client, token string) *http.Client {
	hc := oauth2.NewClient(oauthContext(ctx, httpClient), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = httpClient.Timeout
	return hc
}
