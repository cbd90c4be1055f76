// Package jwt wraps token verification for the API. Session issuance lives
// in the identity service; this backend only verifies bearer tokens and
// reads the tenant binding from their claims.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrNoTenant means the verified token carries no tenant binding. Tokens
// minted by the identity service always have one; its absence is treated as
// an authorization failure, never as an empty-tenant query.
var ErrNoTenant = errors.New("tenant_id not found in claims")

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	// GenerateAccessToken mints a tenant-bound access token. Used by tests
	// and local tooling; production tokens come from the identity service
	// sharing the same signing secret.
	GenerateAccessToken(userID, tenantID, role string, expiresIn time.Duration) (string, error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID, tenantID, role string, expiresIn time.Duration) (string, error) {
	claims := map[string]interface{}{
		"user_id":   userID,
		"tenant_id": tenantID,
		"role":      role,
		"type":      "access",
		"exp":       time.Now().Add(expiresIn).Unix(),
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// TenantFromContext extracts the tenant binding from the verified token in
// ctx. Every service entrypoint resolves its tenant through this; no query
// runs without it.
func TenantFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	tenantID, ok := claims["tenant_id"].(string)
	if !ok || tenantID == "" {
		return "", ErrNoTenant
	}
	return tenantID, nil
}

// UserFromContext returns the acting user's id, empty when absent.
func UserFromContext(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	userID, _ := claims["user_id"].(string)
	return userID
}
