package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/platform/logger"
	"github.com/dayloop/dayloop-api/internal/service/auth"
	"github.com/dayloop/dayloop-api/internal/store"
)

// TokenPair is the result of issuing or rotating a session: a short-lived
// access token, its expiry, and the long-lived refresh token that replaces
// any previously stored one.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// SessionService manages the access/refresh token lifecycle.
//
// Each user has a single refresh token slot: issuing a new pair overwrites
// whatever was stored, so logging in on a second device invalidates the
// first device's refresh token. Access tokens are stateless and stay valid
// until they expire even after logout; only the refresh slot is revocable.
type SessionService struct {
	db         *sql.DB
	userStore  store.UserStore
	jwtService auth.JWTService
	logger     *slog.Logger

	// runInTx wraps check-then-write sequences; overridable in tests.
	runInTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	db *sql.DB,
	userStore store.UserStore,
	jwtService auth.JWTService,
	logger *slog.Logger,
) *SessionService {
	if db == nil {
		panic("db cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionService{
		db:         db,
		userStore:  userStore,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "session_service")),
		runInTx:    store.RunInTransaction,
	}
}

// Issue generates a fresh token pair for the user and persists the refresh
// token, overwriting any previously stored one.
func (s *SessionService) Issue(ctx context.Context, user *domain.User) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pair, err := s.generatePair(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.userStore.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		log.Error("failed to persist refresh token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("session issued", slog.String("user_id", user.ID.String()))
	return pair, nil
}

// Rotate exchanges a presented refresh token for a fresh pair.
//
// The presented token must be signature-valid, unexpired, and byte-identical
// to the stored one. A valid-but-mismatched token means it was already
// rotated away (or the user logged out), most likely a replayed token;
// Rotate returns auth.ErrRefreshTokenMismatch and leaves the stored slot
// untouched so the legitimate session keeps working.
//
// The stored-token comparison and the overwrite happen inside one database
// transaction. Concurrent rotations of the same token are last-write-wins:
// whichever commits second owns the slot, and the other pair's refresh
// token fails its next rotation with a mismatch.
func (s *SessionService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, *domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if refreshToken == "" {
		return nil, nil, auth.ErrMissingToken
	}

	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	var (
		pair *TokenPair
		user *domain.User
	)
	txErr := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		u, err := txStore.GetByID(ctx, claims.UserID)
		if err != nil {
			return err
		}

		if u.RefreshToken == nil || *u.RefreshToken != refreshToken {
			log.Warn("refresh token mismatch, possible replay",
				slog.String("user_id", u.ID.String()))
			return auth.ErrRefreshTokenMismatch
		}

		p, err := s.generatePair(ctx, u)
		if err != nil {
			return err
		}

		if err := txStore.UpdateRefreshToken(ctx, u.ID, &p.RefreshToken); err != nil {
			return err
		}

		pair = p
		user = u
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	log.Debug("session rotated", slog.String("user_id", user.ID.String()))
	return pair, user, nil
}

// Revoke clears the user's stored refresh token, ending the refreshable
// session. Revoking a user with no stored token is a no-op; outstanding
// access tokens remain valid until they expire.
func (s *SessionService) Revoke(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.userStore.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return err
		}
		log.Error("failed to clear refresh token",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return err
	}

	log.Debug("session revoked", slog.String("user_id", userID.String()))
	return nil
}

// Authenticate validates an access token and loads the user it identifies.
// The stored refresh slot is never consulted; access tokens are stateless.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, auth.ErrMissingToken
	}

	claims, err := s.jwtService.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *SessionService) generatePair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := s.jwtService.GenerateAccessToken(ctx, auth.TokenIdentity{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := s.jwtService.GenerateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().UTC().Add(s.jwtService.AccessTokenLifetime()),
	}, nil
}
