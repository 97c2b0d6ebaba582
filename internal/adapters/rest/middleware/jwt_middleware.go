package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/philly/imageblog/internal/platform/apperror"
)

type jwtContextKey string

const JWTSubjectContextKey jwtContextKey = "jwt_subject"

// keySetSource yields the current verification keys for a JWKS URL.
// *jwk.Cache satisfies it.
type keySetSource interface {
	Lookup(ctx context.Context, u string) (jwk.Set, error)
}

// JWTMiddleware validates bearer tokens against a JWKS endpoint and stores the
// token subject in the request context. It is the API's session check.
type JWTMiddleware struct {
	jwksEndpoint string
	issuer       string
	keys         keySetSource
}

func NewJWTMiddleware(ctx context.Context, jwksEndpoint string, issuer string) (*JWTMiddleware, error) {
	// Create a cache with automatic refresh
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	if err := cache.Register(ctx, jwksEndpoint); err != nil {
		return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
	}

	// Perform initial fetch to validate the URL
	if _, err := cache.Lookup(ctx, jwksEndpoint); err != nil {
		return nil, fmt.Errorf("failed to fetch initial JWKS: %w", err)
	}

	return newJWTMiddleware(cache, jwksEndpoint, issuer), nil
}

func newJWTMiddleware(keys keySetSource, jwksEndpoint, issuer string) *JWTMiddleware {
	return &JWTMiddleware{
		jwksEndpoint: jwksEndpoint,
		issuer:       issuer,
		keys:         keys,
	}
}

func (m *JWTMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteJSONError(w, apperror.CodeUnauthorized, MessageMissingToken, http.StatusUnauthorized)
			return
		}

		// Remove "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			WriteJSONError(w, apperror.CodeUnauthorized, MessageInvalidHeader, http.StatusUnauthorized)
			return
		}

		// Get the cached key set
		keySet, err := m.keys.Lookup(r.Context(), m.jwksEndpoint)
		if err != nil {
			WriteJSONError(w, apperror.CodeInternalError, "failed to load verification keys", http.StatusInternalServerError)
			return
		}

		options := []jwt.ParseOption{
			jwt.WithKeySet(keySet),
			jwt.WithValidate(true),
		}
		if m.issuer != "" {
			options = append(options, jwt.WithIssuer(m.issuer))
		}

		// Parse and validate the token
		token, err := jwt.ParseString(tokenString, options...)
		if err != nil {
			if strings.Contains(err.Error(), "exp not satisfied") || strings.Contains(err.Error(), "expired") {
				WriteJSONError(w, apperror.CodeUnauthorized, MessageTokenExpired, http.StatusUnauthorized)
				return
			}
			WriteJSONError(w, apperror.CodeUnauthorized, MessageInvalidToken, http.StatusUnauthorized)
			return
		}

		var subject string
		if err := token.Get("sub", &subject); err != nil || subject == "" {
			WriteJSONError(w, apperror.CodeUnauthorized, MessageInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), JWTSubjectContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetJWTSubject extracts the token subject set by JWTMiddleware
func GetJWTSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(JWTSubjectContextKey).(string)
	return subject, ok
}
