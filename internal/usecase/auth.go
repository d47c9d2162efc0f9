package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
	"github.com/mtaha2509/logging-platform/internal/repository"
)

// PrincipalKind names the authentication mechanism that produced a principal.
type PrincipalKind string

const (
	PrincipalOIDC   PrincipalKind = "oidc"
	PrincipalOAuth2 PrincipalKind = "oauth2"
	PrincipalPlain  PrincipalKind = "plain"
)

// Principal is the identity extracted from request credentials before it is
// matched to a stored user account. Attributes carries mechanism-specific
// claims such as "email" for OAuth2 tokens.
type Principal struct {
	Kind       PrincipalKind
	Subject    string
	Email      string
	Attributes map[string]string
}

// AuthService matches authenticated principals to stored user accounts.
type AuthService struct {
	users port.UserRepository
}

// NewAuthService constructs an AuthService.
func NewAuthService(users port.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// ResolveEmail extracts the email address from the principal based on its kind.
func ResolveEmail(p Principal) (string, error) {
	var email string
	switch p.Kind {
	case PrincipalOIDC, PrincipalPlain:
		email = p.Email
	case PrincipalOAuth2:
		email = p.Attributes["email"]
	default:
		return "", fmt.Errorf("%w: unsupported principal kind %q", ErrUnauthenticated, p.Kind)
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", fmt.Errorf("%w: principal carries no email", ErrUnauthenticated)
	}
	return email, nil
}

// Identify resolves the principal to a stored user. Unknown emails map to
// ErrUnauthenticated rather than a not-found error so callers cannot probe for
// registered accounts.
func (s *AuthService) Identify(ctx context.Context, p Principal) (*domain.User, error) {
	email, err := ResolveEmail(p)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account for principal", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}
