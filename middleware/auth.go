package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	subjectKey contextKey = "subject"
	emailKey   contextKey = "email"
)

// Auth verifies the bearer token issued by the external auth provider and
// puts its subject and email in the request context.
func Auth(jwtKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				writeJSONError(w, http.StatusUnauthorized, map[string]interface{}{"error": "Error: Authorization header is required"})
				return
			}
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return jwtKey, nil
			})
			if err != nil || !token.Valid {
				writeJSONError(w, http.StatusUnauthorized, map[string]interface{}{"error": "Error: Invalid token"})
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, map[string]interface{}{"error": "Error: Invalid token claims"})
				return
			}
			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				writeJSONError(w, http.StatusUnauthorized, map[string]interface{}{"error": "Error: Invalid subject in token"})
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			if email, ok := claims["email"].(string); ok {
				ctx = context.WithValue(ctx, emailKey, email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated subject and email
func GetUserFromContext(r *http.Request) (string, string, error) {
	subject, ok := r.Context().Value(subjectKey).(string)
	if !ok {
		return "", "", fmt.Errorf("subject not found in context")
	}
	email, _ := r.Context().Value(emailKey).(string)
	return subject, email, nil
}
