package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/printops/jobtrack/internal/auth"
	"github.com/printops/jobtrack/internal/domain"
	"github.com/printops/jobtrack/internal/repository"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// AuthService signs staff in. The owner uses a password; employees arrive
// through the federated identity provider and get a profile created on
// first successful sign-in.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	sso    auth.SSOVerifier
	logger *zap.Logger
}

// AuthDependencies bundles collaborators for authentication.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	SSO      auth.SSOVerifier
	Logger   *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:  deps.UserRepo,
		tokens: deps.Tokens,
		sso:    deps.SSO,
		logger: deps.Logger,
	}
}

// EnsureOwner creates the administrative account at startup when the
// configured owner email has no profile yet. An existing profile is left
// untouched.
func (s *AuthService) EnsureOwner(ctx context.Context, email, password string, bcryptCost int) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if err != pgx.ErrNoRows {
		return apperrors.Classify(err)
	}

	hash, err := auth.HashPassword(password, bcryptCost)
	if err != nil {
		return apperrors.NewUnknown(err)
	}
	profile := &domain.UserProfile{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleOwner,
	}
	if err := s.users.Create(ctx, profile); err != nil {
		return apperrors.Classify(err)
	}
	s.logger.Info("owner account bootstrapped", zap.String("email", email))
	return nil
}

// AuthResult carries a freshly issued session.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Profile   *domain.UserProfile
}

// OwnerLogin authenticates the owner by email and password. Every failure
// reads the same to the caller; nothing reveals whether the email exists.
func (s *AuthService) OwnerLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewUnauthenticated("invalid credentials")
	}

	profile, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, apperrors.Classify(err)
	}
	if !profile.IsOwner() || profile.PasswordHash == "" {
		return nil, apperrors.NewUnauthenticated("invalid credentials")
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthenticated("invalid credentials")
	}

	return s.issue(profile)
}

// SSOLogin authenticates an employee with an identity-provider token. The
// first successful sign-in creates the profile: employee role, no
// department until the owner assigns one.
func (s *AuthService) SSOLogin(ctx context.Context, identityToken string) (*AuthResult, error) {
	email, err := s.sso.Verify(identityToken)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("identity verification failed")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err != pgx.ErrNoRows {
			return nil, apperrors.Classify(err)
		}
		profile = &domain.UserProfile{
			Email: email,
			Role:  domain.RoleEmployee,
		}
		if err := s.users.Create(ctx, profile); err != nil {
			return nil, apperrors.Classify(err)
		}
		s.logger.Info("profile created on first sign-in",
			zap.String("user_id", profile.ID),
			zap.String("email", email))
	}

	return s.issue(profile)
}

func (s *AuthService) issue(profile *domain.UserProfile) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, apperrors.NewUnknown(err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, Profile: profile}, nil
}
