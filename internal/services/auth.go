package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmribeiro/recibox/internal/cryptox"
	"github.com/dmribeiro/recibox/internal/logging"
	"github.com/dmribeiro/recibox/internal/remote"
	"github.com/dmribeiro/recibox/internal/repositories/metadata"
)

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrLocalAuthUnavailable = errors.New("no local auth data; log in online first")
)

const (
	metaSalt     = "auth_salt"
	metaVerifier = "auth_verifier"
	metaToken    = "session_token"
)

// PasswordVerifier is the slice of the primary adapter the auth service
// needs: a reachability probe and an online password check.
type PasswordVerifier interface {
	ProbeAvailability(ctx context.Context) bool
	VerifyPassword(ctx context.Context, password []byte) (string, error)
}

// AuthService gates the irreversible operations. Login establishes a
// session and caches the material for offline re-checks; Reauthenticate
// re-validates the password online when possible, offline otherwise.
type AuthService interface {
	Login(ctx context.Context, password []byte) error
	Reauthenticate(ctx context.Context, password []byte) error
}

type authService struct {
	verifier PasswordVerifier
	meta     metadata.Repository
	logger   logging.Logger
}

func NewAuthService(verifier PasswordVerifier, meta metadata.Repository, logger logging.Logger) AuthService {
	return &authService{verifier: verifier, meta: meta, logger: logger.With("component", "auth")}
}

// Login checks the password online, stores the session token and refreshes
// the locally cached salt+verifier pair used for offline re-auth.
func (a *authService) Login(ctx context.Context, password []byte) error {
	token, err := a.verifier.VerifyPassword(ctx, password)
	if err != nil {
		if errors.Is(err, remote.ErrRejected) {
			return ErrUnauthorized
		}
		return fmt.Errorf("login failed: %w", err)
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return fmt.Errorf("salt generation failed: %w", err)
	}
	key := cryptox.DeriveKey(password, salt)

	if err := a.meta.Set(ctx, metaSalt, salt); err != nil {
		return fmt.Errorf("saving auth data: %w", err)
	}
	if err := a.meta.Set(ctx, metaVerifier, cryptox.MakeVerifier(key)); err != nil {
		return fmt.Errorf("saving auth data: %w", err)
	}
	if err := a.meta.Set(ctx, metaToken, []byte(token)); err != nil {
		return fmt.Errorf("saving session token: %w", err)
	}
	return nil
}

// Reauthenticate re-validates the password. When the primary store is
// reachable the check is delegated to it; otherwise the password is verified
// against the locally cached Argon2 verifier. A rejection from either path
// is ErrUnauthorized.
func (a *authService) Reauthenticate(ctx context.Context, password []byte) error {
	if a.verifier.ProbeAvailability(ctx) {
		token, err := a.verifier.VerifyPassword(ctx, password)
		if err == nil {
			if serr := a.meta.Set(ctx, metaToken, []byte(token)); serr != nil {
				a.logger.Warn(ctx, "could not cache refreshed token", "error", serr)
			}
			return nil
		}
		if errors.Is(err, remote.ErrRejected) {
			return ErrUnauthorized
		}
		// transport trouble mid-check; fall back to the offline path
		a.logger.Warn(ctx, "online password check failed, verifying offline", "error", err)
	}
	return a.offlineCheck(ctx, password)
}

func (a *authService) offlineCheck(ctx context.Context, password []byte) error {
	salt, err := a.meta.Get(ctx, metaSalt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLocalAuthUnavailable
		}
		return fmt.Errorf("reading auth data: %w", err)
	}
	stored, err := a.meta.Get(ctx, metaVerifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLocalAuthUnavailable
		}
		return fmt.Errorf("reading auth data: %w", err)
	}

	candidate := cryptox.MakeVerifier(cryptox.DeriveKey(password, salt))
	if subtle.ConstantTimeCompare(stored, candidate) == 0 {
		return ErrUnauthorized
	}
	return nil
}

// NewTokenProvider returns a TokenProvider reading the cached session token.
// A token that carries a JWT expiry in the past is withheld, so requests go
// out unauthenticated instead of provoking rejections; opaque tokens are
// passed through as-is.
func NewTokenProvider(meta metadata.Repository) remote.TokenProvider {
	return func(ctx context.Context) (string, error) {
		value, err := meta.Get(ctx, metaToken)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", nil
			}
			return "", err
		}
		token := string(value)
		if token == "" {
			return "", nil
		}

		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return token, nil // not a JWT, let the server judge it
		}
		exp, err := claims.GetExpirationTime()
		if err == nil && exp != nil && exp.Before(time.Now()) {
			return "", nil
		}
		return token, nil
	}
}
