package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes an owner credential with bcrypt. A cost of zero
// or below falls back to bcrypt.DefaultCost so a missing AUTH_BCRYPT_COST
// never produces trivially cheap hashes.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a plaintext credential against its stored
// bcrypt hash. Returns an error on mismatch; callers report it as a
// uniform invalid-credentials failure.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
