package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"parallel-lives-server/internal/interfaces"
	"parallel-lives-server/internal/models"
	"parallel-lives-server/internal/token"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService handles registration, login and profile lookups.
type AuthService struct {
	users  interfaces.UserRepository
	tokens *token.Manager
	logger *zap.Logger
}

func NewAuthService(users interfaces.UserRepository, tokens *token.Manager, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger.Named("AuthService"),
	}
}

// Register creates a new user and returns it together with a signed access
// token. The nickname defaults to the local part of the email when empty.
func (s *AuthService) Register(ctx context.Context, email, password, nickname string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Plan:         models.PlanFree,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	accessToken, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to issue token after registration", zap.String("userID", user.ID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User registered", zap.String("userID", user.ID.String()))
	return user, accessToken, nil
}

// Login verifies credentials and returns the user with a signed access token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("Password mismatch", zap.String("userID", user.ID.String()))
		return nil, "", models.ErrInvalidCredentials
	}

	accessToken, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to issue token on login", zap.String("userID", user.ID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("userID", user.ID.String()))
	return user, accessToken, nil
}

// GetProfile returns the user for an authenticated request.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func validateEmail(email string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", models.ErrInvalidInput)
	}
	return nil
}

// validatePassword enforces minimum length plus lower/upper/digit presence.
func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", models.ErrInvalidInput)
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return fmt.Errorf("%w: password must contain lowercase, uppercase and digit characters", models.ErrInvalidInput)
	}
	return nil
}
