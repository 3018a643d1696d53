package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/internal/auth/store"
	"github.com/tasmanlabs/orgauth/pkg/cryptox"
	"github.com/tasmanlabs/orgauth/pkg/idx"
	"github.com/tasmanlabs/orgauth/pkg/jwtx"
	"github.com/tasmanlabs/orgauth/pkg/slogx"
)

var (
	ErrDuplicateEmail      = errors.New("duplicate_email")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidRefreshToken = errors.New("invalid_refresh_token")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrSessionNotFound     = errors.New("session_not_found")
)

// SessionService owns the signup/signin/refresh/revoke lifecycle. Access
// tokens are pure bearer credentials; refresh tokens are additionally
// registered server-side so they can be revoked before expiry.
type SessionService struct {
	Store   store.Store
	Access  *jwtx.Codec
	Refresh *jwtx.Codec
}

// Signup creates a user. No tokens are issued; the caller signs in
// afterwards. The email is normalized to lowercase before storage so
// lookups are case-insensitive.
func (s *SessionService) Signup(ctx context.Context, name, email, password string, level domain.AccessLevel) (domain.User, error) {
	l := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if !level.Valid() {
		level = domain.AccessLevelUser
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		AccessLevel:  level,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}

	l.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("access_level", user.AccessLevel.String()),
	)
	return user, nil
}

// Signin verifies credentials and opens a session. Wrong email and wrong
// password collapse into the same error so the response does not reveal
// which accounts exist.
func (s *SessionService) Signin(ctx context.Context, email, password string) (domain.User, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("signin rejected", slog.String("user_id", user.ID))
		return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		pair, err = s.mintPair(ctx, tx, user)
		return err
	})
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	l.Info("user signed in", slog.String("user_id", user.ID))
	return user, pair, nil
}

// RefreshSession rotates a refresh token: the presented token is consumed
// and a fresh pair issued in one transaction. A token can be rotated at
// most once; the loser of a concurrent race gets ErrInvalidRefreshToken.
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Refresh.Verify(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	oldHash := cryptox.FingerprintToken(refreshToken)

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		ownerID, err := tx.RefreshRegistry().Get(ctx, oldHash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		if ownerID != claims.Subject {
			return ErrInvalidRefreshToken
		}

		user, err := tx.Users().GetUserByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		pair, err = s.mintPair(ctx, tx, user)
		if err != nil {
			return err
		}

		// Consume the presented token last. Zero rows removed means a
		// concurrent rotation or revocation won; this attempt loses.
		removed, err := tx.RefreshRegistry().Delete(ctx, oldHash)
		if err != nil {
			return err
		}
		if !removed {
			return ErrInvalidRefreshToken
		}
		return nil
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("session refreshed", slog.String("user_id", claims.Subject))
	return pair, nil
}

// RevokeSession removes a refresh token from the registry. The signed token
// keeps verifying until its expiry, but without a registry entry it can no
// longer be redeemed for new tokens.
func (s *SessionService) RevokeSession(ctx context.Context, refreshToken string) error {
	l := slogx.FromContext(ctx)

	hash := cryptox.FingerprintToken(refreshToken)
	removed, err := s.Store.RefreshRegistry().Delete(ctx, hash)
	if err != nil {
		return err
	}
	if !removed {
		return ErrSessionNotFound
	}

	l.Info("session revoked")
	return nil
}

// ValidateByClaims resolves access-token claims to the current user record,
// rejecting tokens whose subject no longer matches a live account.
func (s *SessionService) ValidateByClaims(ctx context.Context, claims jwtx.Claims) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// mintPair issues a new access/refresh pair and registers the refresh token.
// The registry expiry mirrors the signed claim expiry exactly.
func (s *SessionService) mintPair(ctx context.Context, tx store.Tx, user domain.User) (domain.TokenPair, error) {
	access, _, err := s.Access.Issue(user.ID, user.Email, user.AccessLevel.String())
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, refreshClaims, err := s.Refresh.Issue(user.ID, user.Email, user.AccessLevel.String())
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = tx.RefreshRegistry().Put(ctx, domain.RegistryEntry{
		TokenHash: cryptox.FingerprintToken(refresh),
		UserID:    user.ID,
		ExpiresAt: refreshClaims.ExpiresAt.Time,
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.Access.TTL(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
