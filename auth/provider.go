package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Identity is the stable result of a completed provider handshake.
type Identity struct {
	// UserID is the provider's stable unique identifier for the user.
	UserID string

	// Email and Name are optional profile fields.
	Email string
	Name  string
}

// Provider performs the redirect-based OAuth handshake with one external
// issuer. Implementations are stateless; CSRF state nonces live in the
// SessionStore.
type Provider interface {
	// Name identifies the provider (e.g. "google").
	Name() string

	// AuthCodeURL returns the URL to redirect the user to.
	AuthCodeURL(state string) string

	// Exchange trades the callback code for the user's identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// OAuth2Config describes one OAuth2 provider endpoint set.
type OAuth2Config struct {
	// Name identifies the provider in sign-in URLs and sessions.
	Name string

	ClientID     string
	ClientSecret string

	// AuthURL and TokenURL are the provider's OAuth2 endpoints.
	AuthURL  string
	TokenURL string

	// UserInfoURL is fetched with the exchanged token to obtain the
	// stable user id ("sub" or "id" field) and profile.
	UserInfoURL string

	// RedirectURL is this application's callback URL.
	RedirectURL string

	Scopes []string
}

// Validate checks the configuration for required fields.
func (c *OAuth2Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: provider name is required", ErrInvalidConfig)
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: client credentials are required", ErrInvalidConfig)
	}
	if c.AuthURL == "" || c.TokenURL == "" || c.UserInfoURL == "" {
		return fmt.Errorf("%w: auth, token, and userinfo URLs are required", ErrInvalidConfig)
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("%w: redirect URL is required", ErrInvalidConfig)
	}
	return nil
}

// GoogleConfig returns an OAuth2Config preset for Google sign-in.
func GoogleConfig(clientID, clientSecret, redirectURL string) *OAuth2Config {
	return &OAuth2Config{
		Name:         "google",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthURL:      "https://accounts.google.com/o/oauth2/auth",
		TokenURL:     "https://oauth2.googleapis.com/token",
		UserInfoURL:  "https://openidconnect.googleapis.com/v1/userinfo",
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

// OAuth2Provider implements Provider using the standard authorization-code
// flow plus a userinfo request.
type OAuth2Provider struct {
	name        string
	oauth       *oauth2.Config
	userInfoURL string

	// httpClient overrides the client used for userinfo requests (tests).
	httpClient *http.Client
}

// NewOAuth2Provider creates a provider from the given endpoint configuration.
func NewOAuth2Provider(cfg *OAuth2Config) (*OAuth2Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &OAuth2Provider{
		name: cfg.Name,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
	}, nil
}

// Name returns the provider name.
func (p *OAuth2Provider) Name() string {
	return p.name
}

// AuthCodeURL returns the provider URL to redirect the user to.
func (p *OAuth2Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for a token and resolves the
// user's identity via the userinfo endpoint.
func (p *OAuth2Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", ErrAuthFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request: %v", ErrAuthFailed, err)
	}
	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request: %v", ErrAuthFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned %d", ErrAuthFailed, resp.StatusCode)
	}

	var info struct {
		Sub   string `json:"sub"`
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrAuthFailed, err)
	}

	userID := info.Sub
	if userID == "" {
		userID = info.ID
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: userinfo has no stable user id", ErrAuthFailed)
	}

	return &Identity{UserID: userID, Email: info.Email, Name: info.Name}, nil
}
