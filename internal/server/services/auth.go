// Package services contains the server-side business logic. This file
// implements AuthService: registration, login, refresh-token rotation,
// revocation, and access-token verification.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/velotrans/tms/internal/common"
	"github.com/velotrans/tms/internal/dbx"
	"github.com/velotrans/tms/internal/logging"
	"github.com/velotrans/tms/internal/server/auth"
	"github.com/velotrans/tms/internal/server/config"
	"github.com/velotrans/tms/internal/server/models"
	"github.com/velotrans/tms/internal/server/repositories/repomanager"
)

// refreshSecretBytes is the number of random bytes behind each opaque refresh
// token; the plaintext is twice as many hex characters.
const refreshSecretBytes = 32

// Credentials bundles a freshly issued token pair with its owner. The
// RefreshToken plaintext exists only here; the store keeps a bcrypt hash.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService handles the full credential lifecycle. Refresh tokens are
// opaque random secrets rather than signed tokens so the server can revoke
// them before their natural expiry; hashing them at rest mirrors the
// password-hash discipline.
type AuthService struct {
	db              *sql.DB
	repos           repomanager.RepositoryManager
	logger          logging.Logger
	jwtSecret       []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
}

func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:              db,
		repos:           repos,
		logger:          logger.With("module", "auth_service"),
		jwtSecret:       []byte(cfg.SecretKey),
		accessValidity:  cfg.AccessTokenValidity,
		refreshValidity: cfg.RefreshTokenValidity,
	}
}

// Register creates a user and signs them in. Unknown role strings collapse to
// employee. A taken email yields common.ErrAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, password, role string) (*Credentials, error) {
	normalized, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashSecret(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        normalized,
		PasswordHash: hash,
		Role:         models.ParseRole(role),
	}

	var creds *Credentials
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repos.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		creds, err = s.issuePair(ctx, tx, created)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "email", user.Email, "role", user.Role)
	return creds, nil
}

// Login verifies credentials and issues a new token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Credentials, error) {
	normalized, err := validateEmail(email)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.repos.Users(s.db).GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !compareSecret(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	var creds *Credentials
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds, err = s.issuePair(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}
	return creds, nil
}

// Refresh exchanges a live refresh token for a new pair. The matched record
// is revoked in the same transaction that persists its replacement, so a
// rotated token can never be replayed.
func (s *AuthService) Refresh(ctx context.Context, plaintext string) (*Credentials, error) {
	var creds *Credentials
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		record, err := s.resolveRefreshToken(ctx, tx, plaintext)
		if err != nil {
			return err
		}
		if err := s.repos.RefreshTokens(tx).DeleteByID(ctx, record.ID); err != nil {
			return fmt.Errorf("revoking refresh token: %w", err)
		}
		user, err := s.repos.Users(tx).GetByID(ctx, record.UserID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidOrExpiredToken
			}
			return fmt.Errorf("looking up user: %w", err)
		}
		creds, err = s.issuePair(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidOrExpiredToken) {
			return nil, common.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("refreshing tokens: %w", err)
	}
	return creds, nil
}

// Logout revokes the record behind the given refresh token. Unknown tokens
// are a no-op so logout stays idempotent.
func (s *AuthService) Logout(ctx context.Context, plaintext string) error {
	record, err := s.resolveRefreshToken(ctx, s.db, plaintext)
	if err != nil {
		if errors.Is(err, common.ErrInvalidOrExpiredToken) {
			return nil
		}
		return err
	}
	return s.repos.RefreshTokens(s.db).DeleteByID(ctx, record.ID)
}

// LogoutAll revokes every refresh token owned by the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.repos.RefreshTokens(s.db).DeleteByUser(ctx, userID)
}

// Me returns the user behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, userID)
}

// VerifyAccessToken checks signature and expiry. It never returns an error:
// any failure means nil claims, and the caller proceeds as anonymous.
func (s *AuthService) VerifyAccessToken(token string) *auth.Claims {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil
	}
	return claims
}

// SweepExpired lazily removes lapsed refresh-token records.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repos.RefreshTokens(s.db).DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweeping refresh tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info(ctx, "swept expired refresh tokens", "count", n)
	}
	return n, nil
}

// resolveRefreshToken finds the live record matching the candidate secret.
// Hashes are salted per record, so there is no direct lookup: each live row's
// hash is recomputed against the candidate. O(live records) by design; the
// per-user session count keeps the working set small.
func (s *AuthService) resolveRefreshToken(ctx context.Context, db dbx.DBTX, plaintext string) (*models.RefreshToken, error) {
	if plaintext == "" {
		return nil, common.ErrInvalidOrExpiredToken
	}
	live, err := s.repos.RefreshTokens(db).ListLive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing refresh tokens: %w", err)
	}
	for _, record := range live {
		if compareSecret(record.TokenHash, plaintext) {
			return record, nil
		}
	}
	return nil, common.ErrInvalidOrExpiredToken
}

func (s *AuthService) issuePair(ctx context.Context, db dbx.DBTX, user *models.User) (*Credentials, error) {
	access, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.accessValidity)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refresh, err := common.RandomHex(refreshSecretBytes)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	hash, err := hashSecret(refresh)
	if err != nil {
		return nil, fmt.Errorf("hashing refresh token: %w", err)
	}

	if err := s.repos.RefreshTokens(db).Create(ctx, user.ID, hash, s.refreshValidity); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &Credentials{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
