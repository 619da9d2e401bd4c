package accounts

import (
	"context"
	"errors"

	"mip/internal/auth"
	"mip/internal/models"
	"mip/internal/repo"
)

const (
	SeedEmail    = "test@example.com"
	SeedPassword = "password123"
)

// EnsureUser создаёт пользователя, если его ещё нет. Повторный запуск ничего не меняет.
func EnsureUser(ctx context.Context, users Store, hasher auth.Hasher, email, password string) (*models.User, bool, error) {
	u, err := users.FindByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}
	u = &models.User{Email: email, Password: hash}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}
