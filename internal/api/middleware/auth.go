// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rookenthusiast/mtg-commander-league/internal/api/response"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller, extracted from the bearer token.
type Identity struct {
	UserID  string
	Email   string
	Name    string
	IsAdmin bool
}

// tokenClaims mirrors the claims the league's identity provider issues.
type tokenClaims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator validates the Authorization bearer token and places the
// caller's Identity in the request context. Tokens are issued by the
// identity provider; this server only verifies them.
func Authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, errors.New("authorization required"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				response.Unauthorized(w, errors.New("malformed authorization header"))
				return
			}

			claims := &tokenClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				response.Unauthorized(w, errors.New("invalid token"))
				return
			}
			if claims.Subject == "" {
				response.Unauthorized(w, errors.New("token carries no subject"))
				return
			}

			identity := Identity{
				UserID:  claims.Subject,
				Email:   claims.Email,
				Name:    claims.Name,
				IsAdmin: claims.IsAdmin,
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose token lacks the admin claim. Must run
// after Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin {
			response.Forbidden(w, errors.New("admin privileges required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext extracts the authenticated caller from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
