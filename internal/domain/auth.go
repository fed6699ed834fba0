package domain

import (
	"context"
	"time"
)

// TokenIssuer issues session tokens (e.g. JWT) for a verified email.
type TokenIssuer interface {
	Issue(email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the verified email.
type TokenVerifier interface {
	Verify(token string) (email string, err error)
}

// CodeHasher hashes one-time login codes and compares a presented code
// against a stored hash.
type CodeHasher interface {
	Hash(code string) (string, error)
	Compare(hash, code string) error
}

// LoginCode is a stored, hashed one-time login code.
type LoginCode struct {
	ID        string
	Email     string
	CodeHash  string
	ExpiresAt time.Time
}

// LoginCodeRepository defines storage operations for one-time login codes.
type LoginCodeRepository interface {
	Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	ListActive(ctx context.Context, email string) ([]*LoginCode, error)
	Delete(ctx context.Context, id string) error
}

// OAuthUserInfo is the verified identity an OAuth provider hands back after
// a successful code exchange.
type OAuthUserInfo struct {
	Email     string
	Name      string
	AvatarURL string
}

// OAuthProvider wraps an external OAuth identity provider. The core trusts
// the returned email as verified.
type OAuthProvider interface {
	ConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// AuthService handles sign-in. Google sign-in provisions a Host record on
// first use; login-code sign-in only proves control of an email address and
// leaves role resolution to the directory state.
type AuthService interface {
	GoogleConsentURL(state string) string
	GoogleSignIn(ctx context.Context, code string) (token string, host *Host, err error)
	RequestLoginCode(ctx context.Context, email string) error
	VerifyLoginCode(ctx context.Context, email, code string) (token string, identity *Identity, err error)
}
