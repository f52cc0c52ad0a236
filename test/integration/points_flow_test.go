package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"pagecraft-be/internal/bootstrap"
	"pagecraft-be/internal/config"
	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/pkg/serverutils"
	"pagecraft-be/internal/repository/unitofwork"
	"pagecraft-be/internal/server"
	"pagecraft-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestPointsFlow drives the ledger surface end to end over HTTP: register,
// check the welcome bonus, mint a recharge code as admin, redeem it, and
// read the history back.
func TestPointsFlow(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}
	// Login signing and the JWT middleware must agree on the secret
	t.Setenv("JWT_SECRET", "integration-secret")

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	app := server.New(cfg, container).GetApp()

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 1. Seed an admin account directly (registration only issues "user" role)
	adminPass := "admin12345"
	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	require.NoError(t, err)
	adminHashStr := string(adminHash)

	adminId := uuid.New()
	adminEmail := fmt.Sprintf("flow-admin-%s@example.com", adminId.String()[:8])
	admin := &entity.User{
		Id:           adminId,
		Email:        adminEmail,
		DisplayName:  "Flow Admin",
		PasswordHash: &adminHashStr,
		Role:         entity.UserRoleAdmin,
		Tier:         entity.UserTierPremium,
		ReferralCode: adminId.String()[:8],
	}
	require.NoError(t, uowFactory.NewUnitOfWork(ctx).UserRepository().Create(ctx, admin))

	userEmail := fmt.Sprintf("flow-user-%s@example.com", uuid.New().String()[:8])

	t.Cleanup(func() {
		for _, email := range []string{userEmail, adminEmail} {
			db.Exec("DELETE FROM point_transactions WHERE user_id IN (SELECT id FROM users WHERE email = ?)", email)
			db.Exec("DELETE FROM point_batches WHERE user_id IN (SELECT id FROM users WHERE email = ?)", email)
			db.Exec("DELETE FROM recharge_codes WHERE created_by IN (SELECT id FROM users WHERE email = ?)", email)
			db.Exec("DELETE FROM users WHERE email = ?", email)
		}
	})

	post := func(t *testing.T, path, token string, payload any) (int, []byte) {
		t.Helper()
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req := httptest.NewRequest("POST", path, strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, raw
	}

	get := func(t *testing.T, path, token string) (int, []byte) {
		t.Helper()
		req := httptest.NewRequest("GET", path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, raw
	}

	var userToken, adminToken string

	t.Run("Register grants the welcome bonus", func(t *testing.T) {
		code, body := post(t, "/api/auth/register", "", dto.RegisterRequest{
			DisplayName: "Flow User",
			Email:       userEmail,
			Password:    "flowpass123",
		})
		require.Equal(t, 200, code, string(body))

		var result serverutils.ApiResponse[dto.RegisterResponse]
		require.NoError(t, json.Unmarshal(body, &result))
		assert.True(t, result.Success)
		assert.Equal(t, int64(300), result.Data.WelcomePoints)
		assert.NotEmpty(t, result.Data.ReferralCode)
	})

	t.Run("Login issues tokens for both accounts", func(t *testing.T) {
		code, body := post(t, "/api/auth/login", "", dto.LoginRequest{Email: userEmail, Password: "flowpass123"})
		require.Equal(t, 200, code, string(body))

		var result serverutils.ApiResponse[dto.LoginResponse]
		require.NoError(t, json.Unmarshal(body, &result))
		require.NotEmpty(t, result.Data.AccessToken)
		userToken = result.Data.AccessToken

		code, body = post(t, "/api/auth/login", "", dto.LoginRequest{Email: adminEmail, Password: adminPass})
		require.Equal(t, 200, code, string(body))
		require.NoError(t, json.Unmarshal(body, &result))
		require.NotEmpty(t, result.Data.AccessToken)
		adminToken = result.Data.AccessToken
	})

	t.Run("Balance shows the bonus", func(t *testing.T) {
		code, body := get(t, "/api/points", userToken)
		require.Equal(t, 200, code, string(body))

		var result serverutils.ApiResponse[dto.BalanceStatusResponse]
		require.NoError(t, json.Unmarshal(body, &result))
		assert.Equal(t, int64(300), result.Data.ValidPoints)
		assert.Equal(t, int64(30), result.Data.CanGeneratePages)
		assert.False(t, result.Data.IsAdmin)
	})

	t.Run("Unauthenticated balance request is rejected", func(t *testing.T) {
		code, _ := get(t, "/api/points", "")
		assert.Equal(t, 401, code)
	})

	t.Run("Admin mints and user redeems a code", func(t *testing.T) {
		code, body := post(t, "/api/admin/recharge-codes", adminToken, dto.GenerateCodesRequest{
			Count:  1,
			Points: 200,
		})
		require.Equal(t, 200, code, string(body))

		var minted serverutils.ApiResponse[dto.GenerateCodesResponse]
		require.NoError(t, json.Unmarshal(body, &minted))
		require.Len(t, minted.Data.Codes, 1)
		voucher := minted.Data.Codes[0]

		code, body = post(t, "/api/points/recharge", userToken, dto.RedeemRequest{Code: voucher})
		require.Equal(t, 200, code, string(body))

		var redeemed serverutils.ApiResponse[dto.RedeemResponse]
		require.NoError(t, json.Unmarshal(body, &redeemed))
		assert.Equal(t, int64(200), redeemed.Data.PointsGranted)
		assert.Equal(t, int64(500), redeemed.Data.ValidPoints)

		// Same code again must be refused
		code, body = post(t, "/api/points/recharge", userToken, dto.RedeemRequest{Code: voucher})
		assert.Equal(t, 400, code, string(body))
	})

	t.Run("Regular user cannot mint codes", func(t *testing.T) {
		code, _ := post(t, "/api/admin/recharge-codes", userToken, dto.GenerateCodesRequest{Count: 1, Points: 10})
		assert.Equal(t, 403, code)
	})

	t.Run("Transactions list both grants", func(t *testing.T) {
		code, body := get(t, "/api/points/transactions?type=income", userToken)
		require.Equal(t, 200, code, string(body))

		var result serverutils.ApiResponse[dto.TransactionListResponse]
		require.NoError(t, json.Unmarshal(body, &result))
		// Welcome bonus plus the recharge
		assert.Equal(t, int64(2), result.Data.Total)
		for _, item := range result.Data.Transactions {
			assert.Equal(t, "income", item.Type)
		}
	})

	t.Run("Admin grant lands in the user balance", func(t *testing.T) {
		var login serverutils.ApiResponse[dto.LoginResponse]
		_, body := post(t, "/api/auth/login", "", dto.LoginRequest{Email: userEmail, Password: "flowpass123"})
		require.NoError(t, json.Unmarshal(body, &login))
		userId := login.Data.User.Id

		code, body := post(t, "/api/admin/points/grant", adminToken, dto.GrantPointsRequest{
			UserId: userId,
			Points: 50,
			Note:   "integration top up",
		})
		require.Equal(t, 200, code, string(body))

		code, body = get(t, "/api/points", userToken)
		require.Equal(t, 200, code, string(body))
		var status serverutils.ApiResponse[dto.BalanceStatusResponse]
		require.NoError(t, json.Unmarshal(body, &status))
		assert.Equal(t, int64(550), status.Data.ValidPoints)
	})
}
