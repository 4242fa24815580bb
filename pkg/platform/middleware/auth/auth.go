package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "scaffold/pkg/domain-errors"
	"scaffold/pkg/platform/httputil"
	request "scaffold/pkg/platform/middleware/request"
	"scaffold/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Subject string
	JTI     string
}

// Authenticator guards routes that require a bearer token.
type Authenticator struct {
	validator JWTValidator
	logger    *slog.Logger
}

func NewAuthenticator(validator JWTValidator, logger *slog.Logger) *Authenticator {
	return &Authenticator{validator: validator, logger: logger}
}

// Wrap returns next guarded by bearer token validation.
func (a *Authenticator) Wrap(next http.Handler) http.Handler {
	return RequireAuth(a.validator, a.logger)(next)
}

func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			ctx = requestcontext.WithSubject(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
