package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/jwt"
)

const secret = "test-secret"

func TestRegisterYLogin(t *testing.T) {
	store := memory.New()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "pos-api"})
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "Caja1", Password: "secreta123"})
	require.NoError(t, err)
	assert.Equal(t, "caja1", u.Username)
	assert.Equal(t, entity.RoleVendedor, u.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Username: "caja1", Password: "otra12345"})
	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)

	res, err := uc.Login(ctx, dto.LoginRequest{Username: "caja1", Password: "secreta123"})
	require.NoError(t, err)
	id, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, entity.RoleVendedor, id.Role)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "caja1", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestEnsureAdmin_Idempotente(t *testing.T) {
	store := memory.New()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "pos-api"})
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "admin", "admin12345")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "ADMIN", "otra")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = uc.EnsureAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	res, err := uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "admin12345"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, res.User.Role)
}
