package service

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/printops/jobtrack/internal/auth"
	"github.com/printops/jobtrack/internal/domain"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

type staticSSOVerifier struct {
	email string
	err   error
}

func (v staticSSOVerifier) Verify(string) (string, error) {
	return v.email, v.err
}

func authFixture(t *testing.T, sso auth.SSOVerifier) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	svc := NewAuthService(AuthDependencies{
		UserRepo: users,
		Tokens:   auth.NewTokenManager("test-secret", 60),
		SSO:      sso,
		Logger:   zap.NewNop(),
	})
	return svc, users
}

func TestOwnerLoginSucceeds(t *testing.T) {
	svc, users := authFixture(t, staticSSOVerifier{})
	hash, err := auth.HashPassword("s3cret", 4)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.UserProfile{
		Email: "owner@shop.test", PasswordHash: hash, Role: domain.RoleOwner,
	}))

	result, err := svc.OwnerLogin(context.Background(), "Owner@Shop.Test", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	assert.True(t, result.Profile.IsOwner())
}

func TestOwnerLoginWrongPasswordFails(t *testing.T) {
	svc, users := authFixture(t, staticSSOVerifier{})
	hash, err := auth.HashPassword("s3cret", 4)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.UserProfile{
		Email: "owner@shop.test", PasswordHash: hash, Role: domain.RoleOwner,
	}))

	_, err = svc.OwnerLogin(context.Background(), "owner@shop.test", "wrong")
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeUnauthenticated, derr.Code)
}

func TestOwnerLoginRejectsEmployeePasswordPath(t *testing.T) {
	svc, users := authFixture(t, staticSSOVerifier{})
	hash, err := auth.HashPassword("s3cret", 4)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.UserProfile{
		Email: "emp@shop.test", PasswordHash: hash, Role: domain.RoleEmployee,
	}))

	_, err = svc.OwnerLogin(context.Background(), "emp@shop.test", "s3cret")
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeUnauthenticated, derr.Code)
}

func TestSSOLoginCreatesProfileOnFirstSignIn(t *testing.T) {
	svc, users := authFixture(t, staticSSOVerifier{email: "new@shop.test"})

	result, err := svc.SSOLogin(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, result.Profile.Role)
	assert.Nil(t, result.Profile.DepartmentID)

	stored, err := users.GetByEmail(context.Background(), "new@shop.test")
	require.NoError(t, err)
	assert.Equal(t, result.Profile.ID, stored.ID)

	// Second sign-in reuses the profile.
	again, err := svc.SSOLogin(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, again.Profile.ID)
}

func TestEnsureOwnerBootstrapsOnce(t *testing.T) {
	svc, users := authFixture(t, staticSSOVerifier{})

	require.NoError(t, svc.EnsureOwner(context.Background(), "Owner@Shop.Test", "s3cret", 4))
	first, err := users.GetByEmail(context.Background(), "owner@shop.test")
	require.NoError(t, err)
	assert.True(t, first.IsOwner())
	assert.NotEmpty(t, first.PasswordHash)

	// Second run must not replace the profile.
	require.NoError(t, svc.EnsureOwner(context.Background(), "owner@shop.test", "different", 4))
	second, err := users.GetByEmail(context.Background(), "owner@shop.test")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PasswordHash, second.PasswordHash)

	// Unconfigured bootstrap is a no-op.
	require.NoError(t, svc.EnsureOwner(context.Background(), "", "", 4))
}

func TestSSOLoginBadIdentityTokenFails(t *testing.T) {
	svc, _ := authFixture(t, staticSSOVerifier{err: errors.New("bad signature")})

	_, err := svc.SSOLogin(context.Background(), "whatever")
	var derr *apperrors.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, apperrors.CodeUnauthenticated, derr.Code)
}

func TestSSOVerifierAcceptsWellFormedProviderToken(t *testing.T) {
	secret := "shared-sso-secret"
	verifier := auth.NewSSOVerifier(secret, "idp.test")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "emp@shop.test",
		"iss":   "idp.test",
		"exp":   time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	email, err := verifier.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "emp@shop.test", email)

	_, err = verifier.Verify(signed + "tampered")
	assert.Error(t, err)
}
