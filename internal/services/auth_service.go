package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
	"github.com/anonto42/odinbook/backend/internal/session"
	"github.com/anonto42/odinbook/backend/internal/tokens"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer is the part of the token codec the auth flow needs.
type TokenIssuer interface {
	Issue(kind tokens.Kind, subject tokens.Subject) (string, error)
	Verify(kind tokens.Kind, raw string) (*tokens.Claims, error)
}

// TokenPair is the credential set handed out on login.
type TokenPair struct {
	Access  string
	Refresh string
}

// AuthService handles registration, password login and token refresh.
type AuthService struct {
	users      repositories.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	logger     *zap.Logger

	// dummyHash is compared against when the email is unknown so that both
	// login failure paths pay for one bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(users repositories.UserRepository, issuer TokenIssuer, bcryptCost int, logger *zap.Logger) (*AuthService, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("odinbook-dummy-password"), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:      users,
		tokens:     issuer,
		bcryptCost: bcryptCost,
		logger:     logger,
		dummyHash:  dummy,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. A taken email or handle is a Conflict.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserPublic, error) {
	email := normalizeEmail(req.Email)
	handle := strings.TrimSpace(req.Handle)
	if email == "" || handle == "" || req.Password == "" {
		return nil, apperr.InvalidInput("email, handle and password are required")
	}

	_, err := s.users.FindByEmailOrHandle(ctx, email, handle)
	if err == nil {
		return nil, apperr.Conflict("Email or handle already in use")
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, "Password cannot be used")
	}

	user := &models.User{
		Email:        email,
		Handle:       handle,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("Email or handle already in use")
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	public := user.Public()
	return &public, nil
}

// Login checks the password and issues an access/refresh pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.UserPublic, *TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, nil, apperr.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperr.InvalidCredentials()
	}

	subject := tokens.Subject{UserID: user.ID, Email: user.Email}
	access, err := s.tokens.Issue(tokens.Access, subject)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.tokens.Issue(tokens.Refresh, subject)
	if err != nil {
		return nil, nil, err
	}

	public := user.Public()
	return &public, &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperr.Unauthenticated("Missing refresh token")
	}

	claims, err := s.tokens.Verify(tokens.Refresh, refreshToken)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnauthenticated, err, "Invalid or expired refresh token")
	}

	return s.tokens.Issue(tokens.Access, tokens.Subject{UserID: claims.UserID, Email: claims.Email})
}

// Me returns the current user's public projection.
func (s *AuthService) Me(ctx context.Context, id session.Identity) (*models.UserPublic, error) {
	user, err := s.users.GetUserByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	public := user.Public()
	return &public, nil
}
