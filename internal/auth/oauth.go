// Package auth wraps the external identity provider handshake and the
// login-time user upsert. The HTTP redirect mechanics live in the handler
// layer; this package turns an authorization code into a normalized Profile
// and a Profile into a local user, so the upsert rule can be exercised
// without a live provider.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/iliyamo/job-application-tracker/internal/config"
)

// Profile is the normalized result of a successful federation pass.
// AccessToken is the long-lived delegated token and may be empty: the
// provider only hands it out on the first consent.
type Profile struct {
	ExternalID  string
	Name        string
	Email       string
	AccessToken string
}

// Provider drives the authorization-code flow against the identity provider
// using its configured endpoints. It holds no per-request state.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	client      *http.Client
}

// NewProvider builds a Provider from the application config.
func NewProvider(cfg config.Config) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       strings.Fields(cfg.OAuthScopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
		userInfoURL: cfg.OAuthUserInfoURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL returns the provider authorization URL the browser is
// redirected to when the login flow starts.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// userInfo mirrors the provider's userinfo document. Only the fields the
// service needs are decoded.
type userInfo struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FetchProfile exchanges an authorization code for tokens and resolves the
// provider's userinfo endpoint into a normalized Profile. No local state is
// touched; the caller decides what to do with the result.
func (p *Provider) FetchProfile(ctx context.Context, code string) (Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("code exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	tok.SetAuthHeader(req)
	resp, err := p.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Profile{}, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Profile{}, fmt.Errorf("userinfo decode: %w", err)
	}
	if info.Sub == "" {
		return Profile{}, fmt.Errorf("userinfo missing subject")
	}

	return Profile{
		ExternalID:  info.Sub,
		Name:        info.Name,
		Email:       info.Email,
		AccessToken: tok.AccessToken,
	}, nil
}
