package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a plaintext password.  Signup, the admin
// bootstrap and the admin user endpoints all hash through here with the
// cost from BCRYPT_COST, so no create path ends up with weaker hashes
// than the others.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The hash encodes its own cost, so verification keeps working across
// BCRYPT_COST changes.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
