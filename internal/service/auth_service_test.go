package service

import (
	"context"
	"testing"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(env *testEnv) IAuthService {
	return NewAuthService(env.uowFactory, env.grants, env.referrals)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newAuthService(env)

	t.Run("grants the welcome bonus", func(t *testing.T) {
		res, err := auth.Register(ctx, &dto.RegisterRequest{
			DisplayName: "New User",
			Email:       "new@example.com",
			Password:    "secret1234",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(300), res.WelcomePoints)
		assert.NotEmpty(t, res.ReferralCode)
		assert.Equal(t, int64(300), env.validPoints(t, res.Id))

		// Password is stored hashed, never verbatim
		user, err := env.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByEmail{Email: "new@example.com"})
		require.NoError(t, err)
		require.NotNil(t, user.PasswordHash)
		assert.NotEqual(t, "secret1234", *user.PasswordHash)
		assert.Equal(t, entity.UserRoleUser, user.Role)
		assert.Equal(t, entity.UserTierFree, user.Tier)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := auth.Register(ctx, &dto.RegisterRequest{
			DisplayName: "Clone",
			Email:       "new@example.com",
			Password:    "secret1234",
		})
		require.Error(t, err)
		assert.Equal(t, "email already registered", err.Error())
	})

	t.Run("referral code rewards both sides on top of the bonus", func(t *testing.T) {
		inviter := env.seedUser(t, func(u *entity.User) { u.ReferralCode = "SHARE123" })

		res, err := auth.Register(ctx, &dto.RegisterRequest{
			DisplayName:  "Invited",
			Email:        "invited@example.com",
			Password:     "secret1234",
			ReferralCode: "SHARE123",
		})
		require.NoError(t, err)

		// 300 welcome + 100 invitee referral
		assert.Equal(t, int64(400), env.validPoints(t, res.Id))
		assert.Equal(t, int64(100), env.validPoints(t, inviter.Id))
	})

	t.Run("bad referral code does not block registration", func(t *testing.T) {
		res, err := auth.Register(ctx, &dto.RegisterRequest{
			DisplayName:  "Optimist",
			Email:        "optimist@example.com",
			Password:     "secret1234",
			ReferralCode: "NOSUCH99",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(300), env.validPoints(t, res.Id))
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newAuthService(env)

	_, err := auth.Register(ctx, &dto.RegisterRequest{
		DisplayName: "Login User",
		Email:       "login@example.com",
		Password:    "secret1234",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		res, err := auth.Login(ctx, &dto.LoginRequest{Email: "login@example.com", Password: "secret1234"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.Equal(t, "login@example.com", res.User.Email)
		assert.Equal(t, "user", res.User.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, &dto.LoginRequest{Email: "login@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.Equal(t, "invalid credentials", err.Error())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := auth.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "secret1234"})
		require.Error(t, err)
		assert.Equal(t, "invalid credentials", err.Error())
	})
}
