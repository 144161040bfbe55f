package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/classense/attention-core/internal/infrastructure/config"
	"github.com/classense/attention-core/internal/infrastructure/logging"
	"github.com/classense/attention-core/internal/store"
)

// EnsureAdmin creates the bootstrap administrator account from configuration
// if it does not exist yet, and returns it either way. Without it a fresh
// deployment has no way to create the first account.
func EnsureAdmin(ctx context.Context, users UserRepository, cfg config.AdminConfig, logger *logging.Logger) (*User, error) {
	existing, err := users.GetByUsername(ctx, cfg.Username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up admin account: %w", err)
	}

	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &User{
		Username:     cfg.Username,
		PasswordHash: hash,
		Role:         RoleAdministrator,
	}
	if err := users.Create(ctx, admin); err != nil {
		// A concurrent instance may have seeded it first.
		if errors.Is(err, store.ErrDuplicate) {
			return users.GetByUsername(ctx, cfg.Username)
		}
		return nil, fmt.Errorf("creating admin account: %w", err)
	}

	logger.Info("seeded administrator account", "username", admin.Username, "id", admin.ID)
	return admin, nil
}
