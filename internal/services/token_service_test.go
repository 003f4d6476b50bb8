package services

import (
	"context"
	"testing"
	"time"

	"tutor-central/internal/domain/account"
	tutor_errors "tutor-central/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	req := require.New(t)
	svc := NewTokenService("secret", time.Hour)
	a := account.Account{ID: uuid.New(), Role: account.RoleTutor}

	token, err := svc.Issue(a)
	req.NoError(err)

	id, err := svc.Verify(token)
	req.NoError(err)
	req.Equal(a.ID, id.AccountID)
	req.Equal(account.RoleTutor, id.Role)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	a := account.Account{ID: uuid.New(), Role: account.RoleStudent}

	expired, err := NewTokenService("secret", -time.Minute).Issue(a)
	require.NoError(t, err)

	foreign, err := NewTokenService("other-secret", time.Hour).Issue(a)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		Role: string(a.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID.String(),
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badRole, err := NewTokenService("secret", time.Hour).Issue(account.Account{ID: uuid.New(), Role: "admin"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "not.a.jwt"},
		{name: "expired", token: expired},
		{name: "wrong signature", token: foreign},
		{name: "wrong algorithm", token: hs512},
		{name: "unknown role", token: badRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			require.ErrorIs(t, err, tutor_errors.ErrUnauthorized)
		})
	}
}

func TestIdentityContext(t *testing.T) {
	req := require.New(t)

	_, ok := IdentityFromContext(context.Background())
	req.False(ok)

	want := Identity{AccountID: uuid.New(), Role: account.RoleStudent}
	got, ok := IdentityFromContext(WithIdentity(context.Background(), want))
	req.True(ok)
	req.Equal(want, got)
}
