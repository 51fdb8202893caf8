package identity

import (
	"context"
	"fmt"

	"github.com/Vasu1712/hushgroup-backend/internal/apperr"
	"github.com/golang-jwt/jwt/v4"
)

// Claims carried by bearer tokens issued by the identity provider.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 bearer tokens. Issuing them is someone else's job.
type JWTResolver struct {
	secret []byte
	dir    Directory
}

func NewJWTResolver(secret string, dir Directory) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), dir: dir}
}

func (r *JWTResolver) ResolveIdentity(ctx context.Context, credential string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid bearer token", apperr.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", apperr.ErrUnauthorized)
	}

	if r.dir != nil && claims.Username != "" {
		if err := r.dir.Remember(ctx, claims.Subject, claims.Username); err != nil {
			return "", fmt.Errorf("recording display name: %w", err)
		}
	}
	return claims.Subject, nil
}
