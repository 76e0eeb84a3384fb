package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/desertthunder/reelist/internal/shared"
)

// OAuthProvider runs the authorization code flow against one OAuth2 provider.
type OAuthProvider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
}

// NewOAuthProvider builds a provider from configuration. Client credentials are required.
func NewOAuthProvider(cfg shared.OAuthConfig) (*OAuthProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: oauth client_id and client_secret", shared.ErrMissingCredentials)
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" || cfg.UserInfoURL == "" {
		return nil, fmt.Errorf("%w: oauth auth_url, token_url and userinfo_url are required", shared.ErrInvalidConfig)
	}

	name := cfg.Provider
	if name == "" {
		name = "oauth"
	}

	return &OAuthProvider{
		name: name,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
	}, nil
}

// Name returns the configured provider name
func (p *OAuthProvider) Name() string { return p.name }

// Config returns the OAuth2 configuration
func (p *OAuthProvider) Config() *oauth2.Config { return p.config }

// AuthURL returns the consent page URL for the given CSRF state.
func (p *OAuthProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for a token.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %w", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Identify resolves the token's owner from the userinfo endpoint.
//
// OpenID Connect providers return "sub"; providers that return a numeric "id" are also accepted.
func (p *OAuthProvider) Identify(ctx context.Context, token *oauth2.Token) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: userinfo request failed: %w", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("%w: userinfo returned status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var info struct {
		Sub   string      `json:"sub"`
		ID    json.Number `json:"id"`
		Email string      `json:"email"`
		Name  string      `json:"name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return Identity{}, fmt.Errorf("%w: invalid userinfo: %w", shared.ErrAuthFailed, err)
	}

	subject := info.Sub
	if subject == "" {
		subject = info.ID.String()
	}
	if subject == "" {
		return Identity{}, fmt.Errorf("%w: userinfo has no subject", shared.ErrAuthFailed)
	}

	return Identity{Provider: p.name, Subject: subject, Email: info.Email, Name: info.Name}, nil
}

// ResolveIdentity exchanges code and identifies the token owner.
func (p *OAuthProvider) ResolveIdentity(ctx context.Context, code string) (Identity, error) {
	token, err := p.Exchange(ctx, code)
	if err != nil {
		return Identity{}, err
	}
	return p.Identify(ctx, token)
}
