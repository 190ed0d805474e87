package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/campusvirtual/backend/internal/app/models"
	"github.com/campusvirtual/backend/internal/app/models/dto"
	"github.com/campusvirtual/backend/internal/pkg/apperrors"
	"github.com/campusvirtual/backend/internal/pkg/auth"
	"github.com/campusvirtual/backend/internal/pkg/logger"
	"github.com/campusvirtual/backend/internal/pkg/messaging"
)

const verificationCodeTTL = 15 * time.Minute

var dniPattern = regexp.MustCompile(`^\d{7,9}$`)

// authUserStore is the slice of user persistence the auth service needs.
type authUserStore interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByDNI(ctx context.Context, dni string) (*models.User, error)
	SetVerificationCode(ctx context.Context, id int64, code string, expires time.Time) error
	MarkVerified(ctx context.Context, id int64) error
}

// AuthService defines the interface for registration, login and
// account verification.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, dni, password string) (*dto.LoginResponse, error)
	Verify(ctx context.Context, dni, code string) error
	ResendCode(ctx context.Context, dni string) error
}

type authServiceImpl struct {
	userStore  authUserStore
	jwtService *auth.JWTService
	messenger  messaging.Service
}

// NewAuthService creates a new auth service instance
func NewAuthService(userStore authUserStore, jwtService *auth.JWTService, messenger messaging.Service) AuthService {
	return &authServiceImpl{
		userStore:  userStore,
		jwtService: jwtService,
		messenger:  messenger,
	}
}

func validateRegistration(req *dto.RegisterRequest) error {
	if !dniPattern.MatchString(strings.TrimSpace(req.DNI)) {
		return fmt.Errorf("%w: el DNI debe tener entre 7 y 9 dígitos", apperrors.ErrValidationFailed)
	}
	if len(req.Password) < 8 {
		return fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", apperrors.ErrValidationFailed)
	}
	return nil
}

// generateVerificationCode produces a 6-digit numeric code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Register creates an unverified student account and sends a verification
// code to the user's phone. Delivery failures are logged, not returned:
// the code can always be resent.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(verificationCodeTTL)

	var birthdate *time.Time
	if req.Birthdate != "" {
		parsed, err := time.Parse("2006-01-02", req.Birthdate)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha de nacimiento inválida", apperrors.ErrValidationFailed)
		}
		birthdate = &parsed
	}

	user := &models.User{
		Name:                strings.TrimSpace(req.Name),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		Password:            hashed,
		DNI:                 strings.TrimSpace(req.DNI),
		Legajo:              req.Legajo,
		PhoneCode:           req.PhoneCode,
		PhoneArea:           req.PhoneArea,
		PhoneNumber:         req.PhoneNumber,
		Birthdate:           birthdate,
		Address:             req.Address,
		CivilStatus:         req.CivilStatus,
		Profession:          req.Profession,
		Church:              req.Church,
		MinisterialRole:     req.MinisterialRole,
		Reason:              req.Reason,
		Role:                models.RoleStudent,
		IsVerified:          false,
		VerificationCode:    &code,
		VerificationExpires: &expires,
	}

	id, err := s.userStore.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	if err := s.messenger.SendVerificationCode(ctx, user.FullPhone(), code); err != nil {
		logger.Warn().Err(err).Int64("userID", id).Msg("Failed to deliver verification code")
	}

	logger.Info().Int64("userID", id).Str("dni", user.DNI).Msg("User registered")
	return user, nil
}

// Login authenticates by DNI and password and issues a JWT.
func (s *authServiceImpl) Login(ctx context.Context, dni, password string) (*dto.LoginResponse, error) {
	user, err := s.userStore.GetUserByDNI(ctx, strings.TrimSpace(dni))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, apperrors.ErrAccountNotVerified
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user.ID, user.DNI, string(user.Role))
	if err != nil {
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error generating token")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		User: dto.UserInfo{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			DNI:   user.DNI,
			Role:  string(user.Role),
		},
	}, nil
}

// Verify confirms an account with the delivered code.
func (s *authServiceImpl) Verify(ctx context.Context, dni, code string) error {
	user, err := s.userStore.GetUserByDNI(ctx, strings.TrimSpace(dni))
	if err != nil {
		return err
	}

	if user.IsVerified {
		return apperrors.ErrAlreadyVerified
	}
	if user.VerificationCode == nil || *user.VerificationCode != code {
		return apperrors.ErrInvalidVerifyCode
	}
	if user.VerificationExpires == nil || time.Now().After(*user.VerificationExpires) {
		return apperrors.ErrInvalidVerifyCode
	}

	if err := s.userStore.MarkVerified(ctx, user.ID); err != nil {
		return err
	}

	logger.Info().Int64("userID", user.ID).Msg("Account verified")
	return nil
}

// ResendCode issues a fresh verification code for an unverified account.
func (s *authServiceImpl) ResendCode(ctx context.Context, dni string) error {
	user, err := s.userStore.GetUserByDNI(ctx, strings.TrimSpace(dni))
	if err != nil {
		return err
	}

	if user.IsVerified {
		return apperrors.ErrAlreadyVerified
	}

	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	if err := s.userStore.SetVerificationCode(ctx, user.ID, code, time.Now().Add(verificationCodeTTL)); err != nil {
		return err
	}

	if err := s.messenger.SendVerificationCode(ctx, user.FullPhone(), code); err != nil {
		logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to deliver verification code")
	}
	return nil
}
