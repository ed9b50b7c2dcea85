package service

import (
	"context"
	"errors"
	"time"

	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"github.com/vendsight/vendsight-backend/pkg/redis"
	"github.com/vendsight/vendsight-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	Register(email, password, businessName string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
	Logout(token string) error
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, businessName, companyName, timezone string) (*model.User, error)
	MarkOnboardingCompleted(userID uint) error
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	expiry    time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, expiry time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		expiry:    expiry,
	}
}

func (s *authService) Register(email, password, businessName string) (*model.User, string, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, "", ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	user := &model.User{
		Email:        email,
		Password:     hashedPassword,
		BusinessName: businessName,
		Timezone:     "UTC",
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, user.Email, s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	return user, token, nil
}

func (s *authService) Login(email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		logger.Error("Failed to look up user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	if !util.VerifyPassword(user.Password, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"email": email,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, user.Email, s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	return user, token, nil
}

// Logout blacklists the token for the remainder of its lifetime.
func (s *authService) Logout(token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// already expired or invalid, nothing to revoke
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return redis.BlacklistToken(context.Background(), token, ttl)
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, businessName, companyName, timezone string) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if businessName != "" {
		user.BusinessName = businessName
	}
	if companyName != "" {
		user.CompanyName = companyName
	}
	if timezone != "" {
		user.Timezone = timezone
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) MarkOnboardingCompleted(userID uint) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.OnboardingCompleted {
		return nil
	}
	user.OnboardingCompleted = true
	return s.userRepo.Update(user)
}
