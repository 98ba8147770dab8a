package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/repositories"
)

type UserLookup interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// Resolver turns an Authorization header into a Session.
type Resolver struct {
	tokens *TokenIssuer
	users  UserLookup
}

func NewResolver(tokens *TokenIssuer, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

func (r *Resolver) Resolve(ctx context.Context, authorization string) (Session, error) {
	raw, err := bearerToken(authorization)
	if err != nil {
		return Session{}, err
	}

	claims, err := r.tokens.Parse(raw)
	if err != nil {
		return Session{}, err
	}

	user, err := r.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return Session{}, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return Session{}, fmt.Errorf("failed to load session user: %w", err)
	}
	user.PasswordHash = ""

	return Session{User: *user, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func bearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, errMissingBearer)
	}
	return parts[1], nil
}
