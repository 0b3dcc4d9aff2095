package api

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/askdoc/askdoc-api/internal/api/shared"
	"github.com/askdoc/askdoc-api/internal/domain"
	"github.com/askdoc/askdoc-api/internal/service/auth"
	"github.com/askdoc/askdoc-api/internal/store"
)

// stateCookieName carries the OAuth state between login and callback.
const stateCookieName = "askdoc_oauth_state"

// TokenResponse is returned after a successful OAuth callback.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
}

// ValidateTokenRequest contains the payload for validating a token.
type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ValidateTokenResponse reports the outcome of a token validation.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

// LogoutRequest contains the provider token to revoke.
type LogoutRequest struct {
	Token string `json:"token" validate:"required"`
}

// AuthHandler handles login, OAuth callback, token validation and logout.
type AuthHandler struct {
	oauthService auth.OAuthService
	jwtService   auth.JWTService
	userStore    store.UserStore
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	oauthService auth.OAuthService,
	jwtService auth.JWTService,
	userStore store.UserStore,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		oauthService: oauthService,
		jwtService:   jwtService,
		userStore:    userStore,
		logger:       logger.With("component", "auth_handler"),
	}
}

// Login handles GET /api/auth/login.
// It generates a state value, stores it in a short-lived cookie, and
// redirects the client to the identity provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to initiate login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauthService.AuthURL(state), http.StatusFound)
}

// Callback handles GET /api/auth/callback.
// It verifies the state, exchanges the authorization code for the
// provider-verified identity, upserts the user record, and issues a
// local access token.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With(slog.String("trace_id", shared.GetTraceID(r.Context())))

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusUnauthorized, "Invalid OAuth state", err)
		return
	}

	// One-shot: clear the state cookie regardless of outcome.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing authorization code")
		return
	}

	info, err := h.oauthService.Exchange(r.Context(), code)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	user, err := domain.NewUser(info.Email, info.Name)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to create user record", err)
		return
	}

	if err := h.userStore.Upsert(r.Context(), user); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusServiceUnavailable, "Failed to persist user record", err)
		return
	}

	// Upsert may have resolved to an existing user; re-read for the
	// canonical ID.
	stored, err := h.userStore.GetByEmail(r.Context(), user.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusServiceUnavailable, "Failed to load user record", err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), stored.ID, stored.Email)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to issue access token", err)
		return
	}

	log.Info("user authenticated", slog.String("user_id", stored.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		Email:       stored.Email,
	})
}

// ValidateToken handles POST /api/auth/validate.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req ValidateTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, "Token is required", err)
		return
	}

	claims, err := h.jwtService.ValidateToken(r.Context(), req.Token)
	if err != nil {
		shared.RespondWithJSON(w, r, http.StatusUnauthorized, ValidateTokenResponse{
			Valid: false,
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID.String(),
		Email:  claims.Email,
	})
}

// Logout handles POST /api/auth/logout.
// It revokes the provider token upstream. The local JWT cannot be
// revoked and simply expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, "Token is required", err)
		return
	}

	if err := h.oauthService.Revoke(r.Context(), req.Token); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadGateway, "Failed to revoke token with provider", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// generateState produces an unguessable OAuth state value.
func generateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
