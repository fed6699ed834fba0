package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"iftarmatch/internal/domain"

	"github.com/stretchr/testify/require"
)

type fakeLoginCodeRepo struct {
	mu    sync.Mutex
	seq   int
	codes map[string]*domain.LoginCode
}

func newFakeLoginCodeRepo() *fakeLoginCodeRepo {
	return &fakeLoginCodeRepo{codes: make(map[string]*domain.LoginCode)}
}

func (r *fakeLoginCodeRepo) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("code-%d", r.seq)
	r.codes[id] = &domain.LoginCode{ID: id, Email: email, CodeHash: codeHash, ExpiresAt: expiresAt}
	return nil
}

func (r *fakeLoginCodeRepo) ListActive(ctx context.Context, email string) ([]*domain.LoginCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.LoginCode
	for _, c := range r.codes {
		if c.Email == email && c.ExpiresAt.After(time.Now()) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLoginCodeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.codes, id)
	return nil
}

type fakeOAuthProvider struct {
	info *domain.OAuthUserInfo
	err  error
}

func (p *fakeOAuthProvider) ConsentURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (p *fakeOAuthProvider) ExchangeCode(ctx context.Context, code string) (*domain.OAuthUserInfo, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.info, nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) Issue(email string, expiry time.Duration) (string, error) {
	return "token-for-" + email, nil
}

// plainHasher stores codes as-is so tests can compare without bcrypt.
type plainHasher struct{}

func (plainHasher) Hash(code string) (string, error) { return "hashed:" + code, nil }

func (plainHasher) Compare(hash, code string) error {
	if hash == "hashed:"+code {
		return nil
	}
	return fmt.Errorf("mismatch")
}

type authFixture struct {
	service       domain.AuthService
	hostRepo      *fakeHostRepo
	loginCodeRepo *fakeLoginCodeRepo
	oauth         *fakeOAuthProvider
	emails        *fakeEmailService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hostRepo := newFakeHostRepo()
	loginCodeRepo := newFakeLoginCodeRepo()
	assignmentRepo := newFakeAssignmentRepo()
	oauth := &fakeOAuthProvider{}
	emails := &fakeEmailService{}
	resolver := NewIdentityResolver([]string{testAdminEmail}, assignmentRepo, hostRepo)
	service := NewAuthService(hostRepo, loginCodeRepo, resolver, oauth, fakeTokenIssuer{},
		plainHasher{}, emails, time.Hour, slog.Default(), 2*time.Second)
	return &authFixture{
		service:       service,
		hostRepo:      hostRepo,
		loginCodeRepo: loginCodeRepo,
		oauth:         oauth,
		emails:        emails,
	}
}

func TestAuthService_GoogleSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("first sign-in provisions a host", func(t *testing.T) {
		f := newAuthFixture(t)
		f.oauth.info = &domain.OAuthUserInfo{Email: "Host@Example.com", Name: "Host A", AvatarURL: "https://example.com/a.png"}

		token, host, err := f.service.GoogleSignIn(ctx, "oauth-code")
		require.NoError(t, err)
		require.Equal(t, "token-for-host@example.com", token)
		require.Equal(t, "host@example.com", host.Email)
		require.NotNil(t, host.Image)

		stored, err := f.hostRepo.GetByEmail(ctx, "host@example.com")
		require.NoError(t, err)
		require.Equal(t, host.ID, stored.ID)
	})

	t.Run("returning host is not duplicated", func(t *testing.T) {
		f := newAuthFixture(t)
		f.oauth.info = &domain.OAuthUserInfo{Email: "host@example.com", Name: "Host A"}

		_, first, err := f.service.GoogleSignIn(ctx, "oauth-code")
		require.NoError(t, err)
		_, second, err := f.service.GoogleSignIn(ctx, "oauth-code")
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)

		hosts, err := f.hostRepo.List(ctx)
		require.NoError(t, err)
		require.Len(t, hosts, 1)
	})

	t.Run("exchange failure is surfaced", func(t *testing.T) {
		f := newAuthFixture(t)
		f.oauth.err = fmt.Errorf("provider down")

		_, _, err := f.service.GoogleSignIn(ctx, "oauth-code")
		require.Error(t, err)
	})

	t.Run("provider without an email is unauthorized", func(t *testing.T) {
		f := newAuthFixture(t)
		f.oauth.info = &domain.OAuthUserInfo{Email: ""}

		_, _, err := f.service.GoogleSignIn(ctx, "oauth-code")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthService_LoginCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("request then verify issues a token and consumes the code", func(t *testing.T) {
		f := newAuthFixture(t)

		require.NoError(t, f.service.RequestLoginCode(ctx, "rep@example.com"))
		require.Len(t, f.emails.sentTo("login_code"), 1)
		require.Len(t, f.emails.lastCode, 6)

		token, identity, err := f.service.VerifyLoginCode(ctx, "rep@example.com", f.emails.lastCode)
		require.NoError(t, err)
		require.Equal(t, "token-for-rep@example.com", token)
		require.Equal(t, domain.RoleNone, identity.Role)

		// Consumed codes cannot be replayed.
		_, _, err = f.service.VerifyLoginCode(ctx, "rep@example.com", f.emails.lastCode)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("wrong code is unauthorized", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.service.RequestLoginCode(ctx, "rep@example.com"))

		_, _, err := f.service.VerifyLoginCode(ctx, "rep@example.com", "000000")
		if f.emails.lastCode == "000000" {
			t.Skip("generated code collided with the guess")
		}
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("invalid email is rejected before any code is stored", func(t *testing.T) {
		f := newAuthFixture(t)
		require.ErrorIs(t, f.service.RequestLoginCode(ctx, "not-an-email"), domain.ErrInvalidInput)
		require.Empty(t, f.emails.sentTo("login_code"))
	})

	t.Run("verified admin resolves to the admin role", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.service.RequestLoginCode(ctx, testAdminEmail))

		_, identity, err := f.service.VerifyLoginCode(ctx, testAdminEmail, f.emails.lastCode)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, identity.Role)
	})
}
