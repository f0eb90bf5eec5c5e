// Package service holds the blog's business rules between handlers and repositories.
package service

import (
	"context"
	"strings"

	"blogsite/internal/models"
	"blogsite/internal/observability"
	"blogsite/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	adminEmail string
	metrics    *observability.Metrics
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

// NewAuthService builds an AuthService. An empty adminEmail makes the first
// registered account the administrator.
func NewAuthService(
	userRepo repository.UserRepository,
	bcryptCost int,
	adminEmail string,
	metrics *observability.Metrics,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		adminEmail: NormalizeEmail(adminEmail),
		metrics:    metrics,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		return nil, models.NewValidationError("Email, password and name are required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.AuthEvent(observability.AuthDuplicateEmail)
		return nil, models.NewDuplicateEmailError()
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Email: email, Password: hash, Name: name}
	if s.adminEmail != "" {
		user.IsAdmin = email == s.adminEmail
		err = s.userRepo.Create(ctx, user)
	} else {
		err = s.userRepo.CreateFirstAdmin(ctx, user)
	}
	if err != nil {
		if models.HasCode(err, models.CodeDuplicateEmail) {
			s.metrics.AuthEvent(observability.AuthDuplicateEmail)
		}
		return nil, err
	}

	s.metrics.AuthEvent(observability.AuthRegister)
	return user, nil
}

// Login returns InvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !VerifyPassword(user.Password, in.Password) {
		s.metrics.AuthEvent(observability.AuthLoginFailed)
		return nil, models.NewInvalidCredentialsError()
	}
	s.metrics.AuthEvent(observability.AuthLogin)
	return user, nil
}

func (s *AuthService) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
