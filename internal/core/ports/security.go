package ports

import "github.com/99minutos/accounts-api/internal/core/domain"

// PasswordHasher hashes and verifies passwords. Verify never errors on a
// mismatch; it returns false.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer issues and verifies session tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
	// Verify returns domain.ErrTokenInvalid for malformed, tampered and
	// expired tokens alike.
	Verify(token string) (*domain.Principal, error)
}
