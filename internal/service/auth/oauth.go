package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/askdoc/askdoc-api/internal/config"
	"golang.org/x/oauth2"
)

// Identity provider endpoints (Google OAuth2).
const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"

	// revokeTimeout bounds the upstream revocation call.
	revokeTimeout = 10 * time.Second
)

// UserInfo holds the provider-verified identity returned after a
// successful authorization code exchange.
type UserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OAuthService wraps the external identity provider: building the
// authorization URL, exchanging an authorization code for credentials,
// and revoking tokens. The OAuth protocol itself is the provider's
// concern; this service only consumes its three operations.
type OAuthService interface {
	// AuthURL returns the provider authorization URL for the given state.
	AuthURL(state string) string

	// Exchange trades an authorization code for the provider-verified
	// user identity. Returns ErrExchangeFailed if the provider rejects
	// the code.
	Exchange(ctx context.Context, code string) (*UserInfo, error)

	// Revoke invalidates the given provider token upstream.
	// Returns ErrRevokeFailed if the provider refuses.
	Revoke(ctx context.Context, token string) error
}

// googleOAuthService implements OAuthService against Google's endpoints.
type googleOAuthService struct {
	config *oauth2.Config
	client *http.Client
	logger *slog.Logger
}

// NewOAuthService creates an OAuthService from the auth configuration.
func NewOAuthService(cfg config.AuthConfig, logger *slog.Logger) OAuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &googleOAuthService{
		config: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		client: &http.Client{Timeout: revokeTimeout},
		logger: logger.With("component", "oauth_service"),
	}
}

// AuthURL returns the provider authorization URL for the given state.
func (s *googleOAuthService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the provider-verified user identity.
func (s *googleOAuthService) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("authorization code exchange rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	token.SetAuthHeader(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request failed: %v", ErrExchangeFailed, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Error("failed to close userinfo response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Warn("userinfo request returned non-OK status",
			"status", resp.StatusCode,
			"body_length", len(body))
		return nil, fmt.Errorf("%w: userinfo status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: failed to decode userinfo: %v", ErrExchangeFailed, err)
	}

	if info.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", ErrExchangeFailed)
	}

	s.logger.Info("authorization code exchanged", "email", info.Email)
	return &info, nil
}

// Revoke invalidates the given provider token upstream.
func (s *googleOAuthService) Revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		googleRevokeURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRevokeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRevokeFailed, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Error("failed to close revoke response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("token revocation returned non-OK status", "status", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrRevokeFailed, resp.StatusCode)
	}

	s.logger.Info("provider token revoked")
	return nil
}
