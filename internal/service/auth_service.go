// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"time"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory      unitofwork.RepositoryFactory
	grantService    IGrantService
	referralService IReferralService
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, grantService IGrantService, referralService IReferralService) IAuthService {
	return &authService{
		uowFactory:      uowFactory,
		grantService:    grantService,
		referralService: referralService,
	}
}

func generateReferralCode() (string, error) {
	chars := make([]byte, 8)
	for i := range chars {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(voucherAlphabet))))
		if err != nil {
			return "", err
		}
		chars[i] = voucherAlphabet[n.Int64()]
	}
	return string(chars), nil
}

// freeReferralCode retries generation until the code is not taken yet. The
// column is unique anyway, this just keeps the insert from failing.
func (s *authService) freeReferralCode(ctx context.Context) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		taken, err := uow.UserRepository().FindOne(ctx, specification.ByReferralCode{Code: code})
		if err != nil {
			return "", err
		}
		if taken == nil {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a referral code")
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check for existing user
	existing, _ := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	// 3. Issue this user's own share code
	shareCode, err := s.freeReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: &hashStr,
		DisplayName:  req.DisplayName,
		Role:         entity.UserRoleUser,
		Tier:         entity.UserTierFree,
		ReferralCode: shareCode,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// 4. Save to DB
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// 5. Welcome bonus
	var welcomePoints int64
	bonus, err := s.grantService.GrantRegisterBonus(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	if bonus != nil {
		welcomePoints = bonus.Amount
	}

	// 6. Referral rewards when a code was supplied
	if err := s.referralService.ProcessRegistration(ctx, user.Id, user.Email, req.ReferralCode); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		Id:            user.Id,
		Email:         user.Email,
		ReferralCode:  user.ReferralCode,
		WelcomePoints: welcomePoints,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check if user exists
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if user == nil {
		return nil, errors.New("invalid credentials")
	}
	if user.PasswordHash == nil {
		return nil, errors.New("invalid credentials")
	}

	// 2. Compare passwords
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	// 3. Generate JWT
	accessTokenExpiry := time.Hour * 24

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(accessTokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User: dto.UserDTO{
			Id:           user.Id,
			Email:        user.Email,
			DisplayName:  user.DisplayName,
			Role:         string(user.Role),
			Tier:         string(user.Tier),
			ReferralCode: user.ReferralCode,
		},
	}, nil
}
