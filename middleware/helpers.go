package middleware

import (
	"context"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/session"
)

func GetUserIDFromContext(ctx context.Context) (int, error) {
	s, err := session.MustFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return s.User.ID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	s, err := session.MustFromContext(ctx)
	if err != nil {
		return "", err
	}
	return s.Role(), nil
}
