// Package auth authenticates bearer tokens and places the caller's identity
// in the request context.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/httputil"
	"bloodbank/pkg/requestcontext"
)

// JWTValidator verifies a raw token and returns its claims.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker reports whether a token ID was revoked by logout.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AccountChecker reports whether the account a token was issued to can still
// make requests.
type AccountChecker interface {
	IsAccountActive(ctx context.Context, userID id.UserID) (bool, error)
}

// JWTClaims is the subset of token claims the API relies on.
type JWTClaims struct {
	UserID    string
	Role      string
	JTI       string
	ExpiresAt time.Time
}

var (
	errMissingToken = dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header")
	errInvalidToken = dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	errRevokedToken = dErrors.New(dErrors.CodeUnauthorized, "Token has been revoked")
	errInactive     = dErrors.New(dErrors.CodeUnauthorized, "User not found or inactive")
	errCheckFailed  = dErrors.New(dErrors.CodeInternal, "Failed to validate token")
)

// Option configures RequireAuth.
type Option func(*authenticator)

// WithAccountChecker rejects tokens whose account was deleted or deactivated
// after the token was issued.
func WithAccountChecker(accounts AccountChecker) Option {
	return func(a *authenticator) {
		a.accounts = accounts
	}
}

// RequireAuth rejects requests without a valid, unrevoked bearer token. On
// success the user ID, role claim and token identity are put in context. A
// nil revocation checker skips the revocation step.
func RequireAuth(validator JWTValidator, revocations TokenRevocationChecker, logger *slog.Logger, opts ...Option) func(http.Handler) http.Handler {
	a := &authenticator{validator: validator, revocations: revocations, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := a.authenticate(r)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type authenticator struct {
	validator   JWTValidator
	revocations TokenRevocationChecker
	accounts    AccountChecker
	logger      *slog.Logger
}

func (a *authenticator) authenticate(r *http.Request) (context.Context, error) {
	ctx := r.Context()

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		a.warn(ctx, "missing token")
		return nil, errMissingToken
	}

	claims, err := a.validator.ValidateToken(raw)
	if err != nil {
		a.warn(ctx, "invalid token", "error", err)
		return nil, errInvalidToken
	}

	if err := a.checkRevocation(ctx, claims.JTI); err != nil {
		return nil, err
	}

	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		a.warn(ctx, "malformed token claims", "error", err)
		return nil, errInvalidToken
	}

	if err := a.checkAccount(ctx, userID); err != nil {
		return nil, err
	}

	ctx = requestcontext.WithUserID(ctx, userID)
	ctx = requestcontext.WithRole(ctx, claims.Role)
	return requestcontext.WithToken(ctx, claims.JTI, claims.ExpiresAt), nil
}

func (a *authenticator) checkRevocation(ctx context.Context, jti string) error {
	if a.revocations == nil {
		return nil
	}
	if jti == "" {
		a.warn(ctx, "token without jti")
		return errRevokedToken
	}
	revoked, err := a.revocations.IsTokenRevoked(ctx, jti)
	switch {
	case err != nil:
		a.logger.ErrorContext(ctx, "failed to check token revocation",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return errCheckFailed
	case revoked:
		a.warn(ctx, "token revoked", "jti", jti)
		return errRevokedToken
	}
	return nil
}

func (a *authenticator) checkAccount(ctx context.Context, userID id.UserID) error {
	if a.accounts == nil {
		return nil
	}
	active, err := a.accounts.IsAccountActive(ctx, userID)
	switch {
	case err != nil:
		a.logger.ErrorContext(ctx, "failed to load token account",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return errCheckFailed
	case !active:
		a.warn(ctx, "account inactive", "user_id", userID.String())
		return errInactive
	}
	return nil
}

func (a *authenticator) warn(ctx context.Context, reason string, attrs ...any) {
	attrs = append(attrs, "reason", reason, "request_id", requestcontext.RequestID(ctx))
	a.logger.WarnContext(ctx, "unauthorized access", attrs...)
}
