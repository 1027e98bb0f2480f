package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

const (
	roleClaim = "role"
	nameClaim = "name"
)

// AuthUseCaseInterface resolves a bearer token to a principal
type AuthUseCaseInterface interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies HS256 bearer tokens issued by the identity provider.
// When the subject is known to the user directory, the directory decides the
// role and whether the user may sign in at all.
type AuthUseCase struct {
	repo   interfaces.Repository
	secret []byte
	skew   time.Duration
	cache  *authCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithAcceptableSkew sets the tolerated clock difference for exp/nbf checks
func WithAcceptableSkew(d time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.skew = d
	}
}

func NewAuthUseCase(repo interfaces.Repository, secret string, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:   repo,
		secret: []byte(secret),
		skew:   10 * time.Second,
		cache:  newAuthCache(),
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

// IsNoAuthn returns false for AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// Authenticate verifies the token signature and claims and returns the caller
func (uc *AuthUseCase) Authenticate(ctx context.Context, raw string) (*auth.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "token is required")
	}

	if p, ok := uc.cache.get(raw); ok {
		return p, nil
	}

	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(uc.skew),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "failed to verify token", goerr.V("reason", err.Error()))
	}

	sub := token.Subject()
	if sub == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "sub claim not found in token")
	}

	p, err := uc.resolve(ctx, sub, token)
	if err != nil {
		return nil, err
	}

	expiresAt := token.Expiration()
	if expiresAt.IsZero() || time.Until(expiresAt) > authCacheTTL {
		expiresAt = time.Now().Add(authCacheTTL)
	}
	uc.cache.set(raw, p, expiresAt)

	return p, nil
}

func (uc *AuthUseCase) resolve(ctx context.Context, sub string, token jwt.Token) (*auth.Principal, error) {
	u, err := uc.repo.User().Get(ctx, sub)
	if err == nil {
		if !u.Active {
			return nil, goerr.Wrap(ErrUnauthenticated, "user is deactivated", goerr.V(UserIDKey, sub))
		}
		return &auth.Principal{ID: u.ID, Role: u.Role, Name: u.Name}, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to look up user", goerr.V(UserIDKey, sub))
	}

	claim, ok := token.Get(roleClaim)
	if !ok {
		return nil, goerr.Wrap(ErrUnauthenticated, "role claim not found in token", goerr.V(UserIDKey, sub))
	}
	roleStr, ok := claim.(string)
	if !ok {
		return nil, goerr.Wrap(ErrUnauthenticated, "role claim is not a string", goerr.V(UserIDKey, sub))
	}
	role, err := types.ParseRole(roleStr)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "unknown role in token",
			goerr.V(UserIDKey, sub),
			goerr.V(RoleKey, roleStr))
	}

	p := &auth.Principal{ID: sub, Role: role}
	if name, ok := token.Get(nameClaim); ok {
		if s, ok := name.(string); ok {
			p.Name = s
		}
	}
	return p, nil
}

// IssueToken signs a token for a principal with the shared secret. Used by the
// CLI to hand out development tokens.
func IssueToken(secret string, p *auth.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	builder := jwt.NewBuilder().
		Subject(p.ID).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(roleClaim, p.Role.String())
	if p.Name != "" {
		builder = builder.Claim(nameClaim, p.Name)
	}

	token, err := builder.Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token", goerr.V(UserIDKey, p.ID))
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(secret)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token", goerr.V(UserIDKey, p.ID))
	}
	return string(signed), nil
}
