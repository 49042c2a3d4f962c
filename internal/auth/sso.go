package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
)

// SSOVerifier validates federated identity tokens issued by the external
// authentication provider. Only employees sign in this way; the owner uses
// a password.
type SSOVerifier interface {
	Verify(token string) (email string, err error)
}

type ssoClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type hmacSSOVerifier struct {
	secret []byte
	issuer string
}

// NewSSOVerifier builds a verifier for provider tokens signed with a
// shared secret.
func NewSSOVerifier(secret, issuer string) SSOVerifier {
	return &hmacSSOVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *hmacSSOVerifier) Verify(tokenStr string) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("sso not configured")
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &ssoClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*ssoClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid identity token")
	}
	if v.issuer != "" {
		if issuer, err := claims.GetIssuer(); err != nil || issuer != v.issuer {
			return "", errors.New("unexpected token issuer")
		}
	}
	if claims.Email == "" {
		return "", errors.New("identity token missing email")
	}
	return claims.Email, nil
}
