package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yamdb/internal/config"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"
	"yamdb/internal/mail"
)

var (
	ErrNameInUse           = errors.New("username already in use")
	ErrEmailInUse          = errors.New("email already in use")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidToken        = errors.New("invalid token")
	ErrBadConfirmationCode = errors.New("confirmation code is not valid")
	ErrCodeIssueFailed     = errors.New("could not issue confirmation code")
)

// Claims carried in the access token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	SignUp(ctx context.Context, username, email string) (*models.User, error)
	IssueToken(ctx context.Context, username, confirmationCode string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo       repository.UserRepository
	mailer         mail.Mailer
	logger         *slog.Logger
	jwtSecret      string
	accessTokenTTL time.Duration
	codeLength     int
}

func NewAuthService(
	userRepo repository.UserRepository,
	mailer mail.Mailer,
	logger *slog.Logger,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		mailer:         mailer,
		logger:         logger,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
		codeLength:     cfg.ConfirmationCodeLength,
	}
}

// SignUp registers a user and mails them a confirmation code. Signing up again
// with the same (username, email) pair is idempotent: the existing account gets
// a fresh code instead of an error.
func (s *authService) SignUp(ctx context.Context, username, email string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user != nil {
		if user.Email != email {
			return nil, ErrNameInUse
		}
		// same pair: re-issue the code
		return s.issueConfirmationCode(ctx, user)
	}

	// The pre-checks are an early-error path only; the unique indexes on
	// username and email are the authoritative guards.
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	return s.issueConfirmationCode(ctx, user)
}

func (s *authService) issueConfirmationCode(ctx context.Context, user *models.User) (*models.User, error) {
	code, err := generateConfirmationCode(s.codeLength)
	if err != nil {
		return nil, ErrCodeIssueFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrCodeIssueFailed
	}

	user.ConfirmationCode = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendConfirmationCode(user.Email, user.Username, code); err != nil {
		return nil, fmt.Errorf("deliver confirmation code: %w", err)
	}

	s.logger.Info("confirmation code issued", "username", user.Username)
	return user, nil
}

// IssueToken exchanges (username, confirmation code) for a bearer access token.
func (s *authService) IssueToken(ctx context.Context, username, confirmationCode string) (string, error) {
	if !usernamePattern.MatchString(username) {
		return "", ErrInvalidUsername
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.ConfirmationCode == "" {
		return "", ErrBadConfirmationCode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCode), []byte(confirmationCode)); err != nil {
		return "", ErrBadConfirmationCode
	}

	return s.generateAccessToken(user)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

const codeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// generateConfirmationCode produces a random single-use code.
func generateConfirmationCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be a positive integer")
	}
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		val, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for code: %w", err)
		}
		b[i] = codeChars[val.Int64()]
	}
	return string(b), nil
}
