package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/libroapp/libro/internal/config"
	"github.com/libroapp/libro/internal/database/users"
	"github.com/libroapp/libro/internal/database/verifications"
	"github.com/libroapp/libro/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCodeUsed           = errors.New("verification code already used")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailInvalid       = errors.New("invalid email format")
)

// VerificationMailer delivers verification codes to users.
type VerificationMailer interface {
	SendVerificationCode(to, name, code string) error
}

// Service handles registration, login and email verification.
type Service struct {
	users         *users.Repository
	verifications *verifications.Repository
	mailer        VerificationMailer
	tokens        *TokenIssuer
	bcryptCost    int
	codeExpiry    time.Duration
}

// NewService creates an authentication service.
func NewService(
	userRepo *users.Repository,
	verificationRepo *verifications.Repository,
	mailer VerificationMailer,
	tokens *TokenIssuer,
	authCfg config.Auth,
	verificationCfg config.Verification,
) *Service {
	codeExpiry := verificationCfg.CodeExpiry
	if codeExpiry <= 0 {
		codeExpiry = 24 * time.Hour
	}
	return &Service{
		users:         userRepo,
		verifications: verificationRepo,
		mailer:        mailer,
		tokens:        tokens,
		bcryptCost:    authCfg.BcryptCost,
		codeExpiry:    codeExpiry,
	}
}

// RegisterResult reports the outcome of a registration attempt.
// EmailSent is false when the account was created but the verification
// email could not be delivered.
type RegisterResult struct {
	User      *entities.User
	EmailSent bool
}

// Register creates an unverified account and emails a verification code.
// A failure to deliver the email does not fail the registration.
func (s *Service) Register(name, email, password string) (*RegisterResult, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	// RFC 5321 caps addresses at 254 bytes
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	_, err := s.users.GetUserByEmail(email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         entities.RoleUser,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result := &RegisterResult{User: user, EmailSent: true}
	if err := s.issueVerificationCode(user); err != nil {
		log.Printf("Failed to send verification email to %s: %v", user.Email, err)
		result.EmailSent = false
	}
	return result, nil
}

// Login validates credentials and returns a signed bearer token.
// Verification status does not gate login; clients read the user's
// EmailVerified flag to decide what to unlock.
func (s *Service) Login(email, password string) (string, *entities.User, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// VerifyEmail marks the account verified when the code matches a live
// verification entry. The code alone identifies the account; consumed
// and expired codes report as such so the client can prompt for a
// resend instead of a retype.
func (s *Service) VerifyEmail(code string) error {
	verification, err := s.verifications.GetCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to look up verification code: %w", err)
	}

	user, err := s.users.GetUserByID(verification.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Account deleted since the code was issued
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}
	if verification.Used {
		return ErrCodeUsed
	}
	if time.Now().After(verification.ExpiresAt) {
		return ErrCodeExpired
	}

	if err := s.verifications.MarkUsed(verification.ID); err != nil {
		return fmt.Errorf("failed to mark code used: %w", err)
	}
	if err := s.users.SetEmailVerified(user.ID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// ResendVerification issues a fresh code and emails it. Previously
// issued codes stop working once the new one is stored.
func (s *Service) ResendVerification(email string) error {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}
	return s.issueVerificationCode(user)
}

// GetProfile returns the account for an authenticated user ID.
func (s *Service) GetProfile(userID uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) issueVerificationCode(user *entities.User) error {
	code, err := GenerateVerificationCode()
	if err != nil {
		return err
	}
	verification := &entities.EmailVerification{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(s.codeExpiry),
	}
	if err := s.verifications.CreateCode(verification); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	if err := s.mailer.SendVerificationCode(user.Email, user.Name, code); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
