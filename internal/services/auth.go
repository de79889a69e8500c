package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"eventsphere/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenVerifier  domain.TokenVerifier
	tokenExpiry    time.Duration
	contextTimeout time.Duration
	now            func() time.Time
}

// NewAuthService creates an AuthService with the given repository and auth ports.
func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenVerifier domain.TokenVerifier,
	tokenExpiry time.Duration,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenVerifier:  tokenVerifier,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *authService) SignUp(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := domain.NewUser(email, fullName, hash, s.now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate fails with ErrInvalidCredentials for every rejection so that callers
// cannot tell an unknown email from a wrong password.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive || !user.HasCredential() {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) IssueToken(user *domain.User) (string, error) {
	return s.tokenIssuer.Issue(user, s.tokenExpiry)
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.IssueToken(user)
}

func (s *authService) ValidateToken(token string) (*domain.Claims, error) {
	claims, err := s.tokenVerifier.Verify(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// ResolveCaller re-reads the user named by the token subject, so deactivation or
// admin changes made after issuance apply to the next request.
func (s *authService) ResolveCaller(ctx context.Context, claims *domain.Claims) (*domain.User, error) {
	if claims == nil || claims.Email == "" {
		return nil, domain.ErrInvalidToken
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when no user owns the email yet,
// and promotes an existing non-admin user with that email.
func (s *authService) EnsureAdmin(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	email = normalizeEmail(email)
	lookupCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	existing, err := s.userRepo.GetByEmail(lookupCtx, email)
	cancel()
	switch {
	case err == nil:
		if existing.IsAdmin {
			return existing, nil
		}
		setCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
		defer cancel()
		return s.userRepo.SetAdmin(setCtx, existing.ID, true)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user, err := s.SignUp(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	setCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.SetAdmin(setCtx, user.ID, true)
}
