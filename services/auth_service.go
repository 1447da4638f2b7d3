// services/auth_service.go - Identity token issuing and verification
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
)

// Identity is the resolved result of verifying an opaque bearer token.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// TokenVerifier resolves a bearer token to a stable identity. The
// production implementation is JWT-based; tests substitute doubles.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// JWTTokenService issues and verifies HMAC-signed identity tokens.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTTokenService(secret string, expiry time.Duration) *JWTTokenService {
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &JWTTokenService{secret: []byte(secret), expiry: expiry}
}

// Issue creates a signed token carrying the identity claims.
func (s *JWTTokenService) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":     id.UID,
		"email":   id.Email,
		"name":    id.Name,
		"picture": id.Picture,
		"iat":     now.Unix(),
		"exp":     now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTTokenService) Verify(_ context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated("Not authorized, token failed")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthenticated("Not authorized, token failed")
	}

	uid, _ := claims["uid"].(string)
	if uid == "" {
		return nil, apperr.Unauthenticated("Not authorized, token failed")
	}

	id := &Identity{UID: uid}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Picture, _ = claims["picture"].(string)
	return id, nil
}
