package services

import (
	"context"
	"errors"

	"khata-backend/internal/auth"
	"khata-backend/internal/cache"
	"khata-backend/internal/models"
	"khata-backend/internal/repositories"
)

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

// Signup creates a new account-holder with a hashed password
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	// Validate input
	if req.MobileNumber == "" || req.Password == "" || req.FirstName == "" {
		return nil, errors.New("first name, mobile number, and password are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters long")
	}

	// Check if user already exists
	existingUser, _ := s.Repo.GetByMobileNumber(ctx, req.MobileNumber)
	if existingUser != nil {
		return nil, errors.New("user with this mobile number already exists")
	}

	// Hash password
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
		Email:        req.Email,
		Address:      req.Address,
		PasswordHash: hashedPassword,
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

// Login authenticates an account-holder and returns a JWT token. A Redis
// credential cache, when available, skips the bcrypt comparison for repeat
// logins; with no Redis every login pays the bcrypt cost.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	// Validate input
	if req.MobileNumber == "" || req.Password == "" {
		return nil, errors.New("mobile number and password are required")
	}

	user, err := s.Repo.GetByMobileNumber(ctx, req.MobileNumber)
	if err != nil {
		return nil, errors.New("invalid mobile number or password")
	}

	if cachedID, ok := cache.GetCachedAuth(ctx, req.MobileNumber, req.Password); !ok || cachedID != user.ID {
		if !auth.VerifyPassword(user.PasswordHash, req.Password) {
			// Drop any stale cache entry for this credential pair so it
			// cannot outlive a password change.
			cache.InvalidateAuth(ctx, req.MobileNumber, req.Password)
			return nil, errors.New("invalid mobile number or password")
		}
		cache.CacheAuth(ctx, req.MobileNumber, req.Password, user.ID)
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  user,
	}, nil
}
