/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// APIKeyPrefix marks raw API keys so they are not mistaken for JWTs.
const APIKeyPrefix = "roastery_"

var errMissingSubject = errors.New("token missing subject")

// AuthMiddleware requires a valid operator JWT. The operator id and the
// restricted view are stored in the request context.
func AuthMiddleware(secret string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := BearerToken(r)
			if !ok {
				http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
				return
			}

			sub, err := ParseToken(secret, tokenString)
			if err != nil {
				log.Warn("invalid token", zap.Error(err))
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), sub)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// ParseToken validates an HMAC-signed JWT and returns its subject.
func ParseToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errMissingSubject
	}
	return sub, nil
}

// HashAPIKey is the form API keys are stored and looked up in.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// WithViewer marks ctx as an authenticated, restricted view for viewerID.
func WithViewer(ctx context.Context, viewerID string) context.Context {
	ctx = context.WithValue(ctx, domain.ViewContextKey, domain.ViewContextRestricted)
	return context.WithValue(ctx, domain.ViewerIDKey, viewerID)
}

// GetViewerID retrieves the authenticated operator or API key owner.
func GetViewerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(domain.ViewerIDKey).(string)
	return id, ok
}
