package domain

import (
	"context"
	"time"
)

// Claims is the decoded payload of an access token.
type Claims struct {
	UserID    string
	Email     string
	IsAdmin   bool
	ExpiresAt time.Time
}

// PasswordHasher hashes and verifies passwords. Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues signed access tokens for an authenticated user.
type TokenIssuer interface {
	Issue(user *User, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its claims.
// Any signature, algorithm or expiry failure is reported as ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// AuthService verifies credentials and resolves callers from bearer tokens.
type AuthService interface {
	SignUp(ctx context.Context, email, password, fullName string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	IssueToken(user *User) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(token string) (*Claims, error)
	ResolveCaller(ctx context.Context, claims *Claims) (*User, error)
	EnsureAdmin(ctx context.Context, email, password, fullName string) (*User, error)
}
