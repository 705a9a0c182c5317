// Package auth provides JWT bearer authentication middleware.
//
// The application layer issues tokens at login; this middleware only
// validates them and places the authenticated user ID into the request
// context for the verification handlers.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "careguard/pkg/domain"
	dErrors "careguard/pkg/domain-errors"
	"careguard/pkg/platform/httputil"
	"careguard/pkg/requestcontext"
)

// Middleware validates the Authorization bearer token and injects the user ID
// into the request context. Requests without a valid token get 401.
func Middleware(signingKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			userID, err := validateToken(token, signingKey)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "authorization header is required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", dErrors.New(dErrors.CodeUnauthorized, "authorization header must be a bearer token")
	}
	return parts[1], nil
}

func validateToken(tokenString string, signingKey []byte) (id.UserID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey, nil
	})
	if err != nil || !token.Valid {
		return id.UserID{}, fmt.Errorf("parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return id.UserID{}, fmt.Errorf("token subject: %w", err)
	}
	return id.ParseUserID(subject)
}
