package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoOwner      = errors.New("no authenticated owner in context")
)

// TokenService validates HS256 bearer tokens whose "sub" claim is the owner id
type TokenService struct {
	secret []byte
}

// NewTokenService creates a new TokenService instance
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs a token for ownerID valid for ttl.
// Tokens are normally issued by the identity layer; this is used by tooling and tests.
func (s *TokenService) Issue(ownerID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses tokenString and returns the owner id it was issued for
func (s *TokenService) Validate(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	ownerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: 'sub' claim is not an owner id", ErrInvalidToken)
	}
	return ownerID, nil
}

type ownerKey struct{}

// WithOwner stores the authenticated owner id in ctx
func WithOwner(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the authenticated owner id
func OwnerFromContext(ctx context.Context) (uuid.UUID, error) {
	ownerID, ok := ctx.Value(ownerKey{}).(uuid.UUID)
	if !ok || ownerID == uuid.Nil {
		return uuid.Nil, ErrNoOwner
	}
	return ownerID, nil
}
