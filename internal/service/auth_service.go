package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gugarden/internal/config"
	"gugarden/internal/model"
	"gugarden/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// Claims is the payload of an issued bearer token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	secret   []byte
	expiry   time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, cfg config.AuthConfig, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		secret:   []byte(cfg.JWTSecret),
		expiry:   cfg.JWTExpiry,
		now:      time.Now,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates a customer account and signs a token for it.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.ErrInvalidJSON
	}

	email := normaliseEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	switch {
	case email == "":
		return nil, model.NewMissingFieldError("email")
	case req.Password == "":
		return nil, model.NewMissingFieldError("password")
	case name == "":
		return nil, model.NewMissingFieldError("name")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, model.NewInvalidFieldError("email", "is not a valid address")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, model.NewInvalidFieldError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		Phone:        req.Phone,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, model.ErrEmailTaken) {
			s.logger.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.issue(user)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.ErrInvalidJSON
	}

	email := normaliseEmail(req.Email)
	if email == "" {
		return nil, model.NewMissingFieldError("email")
	}
	if req.Password == "" {
		return nil, model.NewMissingFieldError("password")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID.String()).Msg("password mismatch")
		return nil, model.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.ProfileUpdateRequest) (*model.User, error) {
	if req == nil {
		return nil, model.ErrInvalidJSON
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, model.NewMissingFieldError("name")
	}

	return s.userRepo.UpdateProfile(ctx, userID, req)
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *model.PasswordChangeRequest) error {
	if req == nil {
		return model.ErrInvalidJSON
	}
	if req.CurrentPassword == "" {
		return model.NewMissingFieldError("currentPassword")
	}
	if req.NewPassword == "" {
		return model.NewMissingFieldError("newPassword")
	}
	if len(req.NewPassword) < MinPasswordLength {
		return model.NewInvalidFieldError("newPassword", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return model.NewInvalidFieldError("currentPassword", "does not match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("password changed")
	return nil
}

// ParseToken validates an HS256 token and returns its claims.
func (s *authService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, model.ErrUnauthorised
	}
	if _, err := claims.UserID(); err != nil {
		return nil, model.ErrUnauthorised
	}
	return claims, nil
}

func (s *authService) issue(user *model.User) (*model.AuthResponse, error) {
	now := s.now()
	claims := &Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.AuthResponse{Token: token, User: *user}, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
