package services

import (
	"context"
	"time"

	"tutor-central/internal/domain/account"
	tutor_errors "tutor-central/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "tutor-central"

// Identity is the authenticated caller. It is built once per request and
// never mutated.
type Identity struct {
	AccountID uuid.UUID
	Role      account.Role
}

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a credential for a with a fixed expiry.
func (s *TokenService) Issue(a account.Account) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: string(a.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, tutor_errors.Unauthorized("missing credential")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, tutor_errors.Unauthorized("invalid credential")
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return Identity{}, tutor_errors.Unauthorized("invalid credential")
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, tutor_errors.Unauthorized("invalid credential")
	}
	role := account.Role(claims.Role)
	if !role.Valid() {
		return Identity{}, tutor_errors.Unauthorized("invalid credential")
	}

	return Identity{AccountID: accountID, Role: role}, nil
}

type ctxKey string

var identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	value := ctx.Value(identityKey)
	if value == nil {
		return Identity{}, false
	}
	id, ok := value.(Identity)
	return id, ok
}
