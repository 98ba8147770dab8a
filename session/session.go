// Package session resolves bearer tokens into the identity of the caller.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/contesthub/models"
)

var ErrUnauthenticated = errors.New("authentication required")

// Session is the resolved identity of one request. The role is read from the
// user record on every resolve, so role changes apply on the next request.
type Session struct {
	User      models.User
	ExpiresAt time.Time
}

func (s Session) Actor() models.Actor {
	return models.Actor{UserID: s.User.ID, Role: s.User.Role}
}

func (s Session) Role() models.UserRole {
	return s.User.Role
}

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// MustFromContext is for handlers mounted behind the authentication middleware.
func MustFromContext(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	return s, nil
}
