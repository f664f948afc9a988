package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dayloop/dayloop-api/internal/api/shared"
	"github.com/dayloop/dayloop-api/internal/platform/logger"
	"github.com/dayloop/dayloop-api/internal/service"
	"github.com/dayloop/dayloop-api/internal/store"
)

// Cookie names for browser clients. Tokens are also returned in the body
// for clients that prefer the Authorization header.
const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// AuthHandler handles authentication-related API requests: registration,
// login, token refresh, and logout.
type AuthHandler struct {
	userService    *service.UserService
	sessionService *service.SessionService
	refreshTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// refreshTTL bounds the refresh cookie's lifetime and should match the
// refresh token lifetime.
func NewAuthHandler(
	userService *service.UserService,
	sessionService *service.SessionService,
	refreshTTL time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	if sessionService == nil {
		panic("sessionService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		userService:    userService,
		sessionService: sessionService,
		refreshTTL:     refreshTTL,
		logger:         logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Fullname: req.Fullname,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewUserResponse(user), "User registered successfully")
}

// Login handles POST /auth/login. On success the token pair is returned in
// the body and mirrored into HttpOnly cookies.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	pair, err := h.sessionService.Issue(r.Context(), user)
	if err != nil {
		log.Error("failed to issue session", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "Failed to create session")
		return
	}

	h.setAuthCookies(w, pair)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         NewUserResponse(user),
	}, "Login successful")
}

// RefreshToken handles POST /auth/refresh-token. The incoming refresh
// token is read from the body first, then from the refresh cookie. A
// successful rotation invalidates the presented token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	// The body is optional when the cookie carries the token.
	_ = shared.DecodeJSON(r, &req)

	token := req.RefreshToken
	if token == "" {
		if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
			token = cookie.Value
		}
	}

	pair, user, err := h.sessionService.Rotate(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh session")
		return
	}

	h.setAuthCookies(w, pair)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         NewUserResponse(user),
	}, "Token refreshed successfully")
}

// Logout handles POST /auth/logout. It clears the stored refresh token and
// expires both cookies. Outstanding access tokens stay valid until their
// expiry; only the refresh slot is revoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	if err := h.sessionService.Revoke(r.Context(), userID); err != nil {
		// A deleted user still gets their cookies cleared.
		if !errors.Is(err, store.ErrUserNotFound) {
			HandleAPIError(w, r, err, "Failed to log out")
			return
		}
	}

	h.clearAuthCookies(w)
	shared.RespondWithJSON(w, r, http.StatusOK, nil, "Logged out successfully")
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, pair *service.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  pair.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  time.Now().Add(h.refreshTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
