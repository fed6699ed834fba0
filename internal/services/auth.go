package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"iftarmatch/internal/domain"
)

const (
	loginCodeLength = 6
	loginCodeTTL    = 15 * time.Minute
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	hostRepo       domain.HostRepository
	loginCodeRepo  domain.LoginCodeRepository
	resolver       domain.IdentityResolver
	oauth          domain.OAuthProvider
	tokens         domain.TokenIssuer
	hasher         domain.CodeHasher
	emailService   domain.EmailService
	tokenExpiry    time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAuthService creates the sign-in service. Google sign-in provisions a
// host on first use; login codes prove control of an email for group
// representatives and admins.
func NewAuthService(hostRepo domain.HostRepository,
	loginCodeRepo domain.LoginCodeRepository,
	resolver domain.IdentityResolver,
	oauth domain.OAuthProvider,
	tokens domain.TokenIssuer,
	hasher domain.CodeHasher,
	emailService domain.EmailService,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		hostRepo:       hostRepo,
		loginCodeRepo:  loginCodeRepo,
		resolver:       resolver,
		oauth:          oauth,
		tokens:         tokens,
		hasher:         hasher,
		emailService:   emailService,
		tokenExpiry:    tokenExpiry,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *authService) GoogleConsentURL(state string) string {
	return s.oauth.ConsentURL(state)
}

// GoogleSignIn exchanges the OAuth code, trusts the returned email, and
// provisions a Host record on first sign-in. Returning users get their
// existing record back.
func (s *authService) GoogleSignIn(ctx context.Context, code string) (string, *domain.Host, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	info, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}
	email := strings.TrimSpace(strings.ToLower(info.Email))
	if email == "" {
		return "", nil, domain.ErrUnauthorized
	}

	host, err := s.hostRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		var image *string
		if info.AvatarURL != "" {
			image = &info.AvatarURL
		}
		name := strings.TrimSpace(info.Name)
		if name == "" {
			name = email
		}
		host = domain.NewHost(email, name, image, time.Now())
		if err := s.hostRepo.Create(ctx, host); err != nil {
			// A concurrent first sign-in can win the insert.
			if errors.Is(err, domain.ErrConstraintViolation) {
				host, err = s.hostRepo.GetByEmail(ctx, email)
				if err != nil {
					return "", nil, fmt.Errorf("get host after race: %w", err)
				}
			} else {
				return "", nil, fmt.Errorf("create host: %w", err)
			}
		}
	} else if err != nil {
		return "", nil, fmt.Errorf("get host: %w", err)
	}

	token, err := s.tokens.Issue(email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, host, nil
}

// RequestLoginCode generates a short-lived numeric code, stores only its
// hash, and emails the plaintext. Unknown emails get a code too, so the
// endpoint does not reveal who is in the directory.
func (s *authService) RequestLoginCode(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return domain.ErrInvalidInput
	}

	code, err := generateLoginCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}
	if err := s.loginCodeRepo.Create(ctx, email, hash, time.Now().Add(loginCodeTTL)); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if err := s.emailService.SendLoginCode(ctx, &domain.LoginCodeEmailData{
		Email:            email,
		Code:             code,
		ExpiresInMinutes: int(loginCodeTTL.Minutes()),
	}); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// VerifyLoginCode checks the presented code against the email's unexpired
// hashes, consumes the match, and issues a token together with the resolved
// identity. Any mismatch is the same ErrUnauthorized.
func (s *authService) VerifyLoginCode(ctx context.Context, email, code string) (string, *domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return "", nil, domain.ErrUnauthorized
	}

	active, err := s.loginCodeRepo.ListActive(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("list codes: %w", err)
	}
	var matched *domain.LoginCode
	for _, lc := range active {
		if s.hasher.Compare(lc.CodeHash, code) == nil {
			matched = lc
			break
		}
	}
	if matched == nil {
		return "", nil, domain.ErrUnauthorized
	}
	if err := s.loginCodeRepo.Delete(ctx, matched.ID); err != nil {
		s.logger.Warn("failed to consume login code", "err", err)
	}

	identity, err := s.resolver.Resolve(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("resolve identity: %w", err)
	}
	token, err := s.tokens.Issue(email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, identity, nil
}

func generateLoginCode() (string, error) {
	var sb strings.Builder
	for i := 0; i < loginCodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}
