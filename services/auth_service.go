package services

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lokeshbavandla/shophub-ecommerce-app/cache"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/repository"
)

// TokenPair is the access/refresh pair returned on signup and login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.User, *TokenPair, *ServiceError)
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, *TokenPair, *ServiceError)
	// Logout invalidates the refresh token and drops the user's cached
	// profile and cart.
	Logout(ctx context.Context, refreshToken string) *ServiceError
	// Refresh verifies the refresh token against the stored copy and
	// issues a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, *ServiceError)
	GetProfile(ctx context.Context, user *models.User) (*models.UserProfile, *ServiceError)
}

type authService struct {
	users  repository.UserRepository
	tokens *TokenService
	cache  cache.Cache
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, c cache.Cache, logger *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, cache: c, logger: logger}
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, *TokenPair, *ServiceError) {
	if existing, _ := s.users.FindByEmail(ctx, req.Email); existing != nil {
		return nil, nil, badRequest("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, nil, serverError("Server error")
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     models.RoleCustomer,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.String("email", req.Email), zap.Error(err))
		return nil, nil, serverError("Server error")
	}

	pair, svcErr := s.issueTokens(ctx, user)
	if svcErr != nil {
		return nil, nil, svcErr
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID.Hex()), zap.String("email", user.Email))
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, *TokenPair, *ServiceError) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, badRequest("Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, nil, badRequest("Invalid email or password")
	}

	pair, svcErr := s.issueTokens(ctx, user)
	if svcErr != nil {
		return nil, nil, svcErr
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.Hex()))
	return user, pair, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) *ServiceError {
	if refreshToken == "" {
		return nil
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
	}

	s.cache.Delete(ctx,
		cache.KeyRefreshToken(userID),
		cache.KeyUserProfile(userID),
		cache.KeyUserCart(userID),
	)
	return nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, *ServiceError) {
	if refreshToken == "" {
		return "", &ServiceError{StatusCode: http.StatusUnauthorized, Message: "No refresh token provided"}
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}

	var stored string
	if !s.cache.Get(ctx, cache.KeyRefreshToken(userID), &stored) || stored != refreshToken {
		return "", &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}

	accessToken, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		s.logger.Error("failed to generate access token", zap.Error(err))
		return "", serverError("Server error")
	}
	return accessToken, nil
}

func (s *authService) GetProfile(ctx context.Context, user *models.User) (*models.UserProfile, *ServiceError) {
	key := cache.KeyUserProfile(user.ID.Hex())

	var cached models.UserProfile
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	profile := user.Profile()
	s.cache.Set(ctx, key, profile, cache.TTLUserProfile)
	return &profile, nil
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, *ServiceError) {
	userID := user.ID.Hex()

	accessToken, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		s.logger.Error("failed to generate access token", zap.Error(err))
		return nil, serverError("Server error")
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		s.logger.Error("failed to generate refresh token", zap.Error(err))
		return nil, serverError("Server error")
	}

	s.cache.Set(ctx, cache.KeyRefreshToken(userID), refreshToken, cache.TTLRefreshToken)
	s.cache.Set(ctx, cache.KeyUserProfile(userID), user.Profile(), cache.TTLUserProfile)

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
