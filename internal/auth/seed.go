package auth

import (
	"context"
	"fmt"
	"log/slog"
)

// SeedUser creates the first user on a fresh database so devices have an
// owner to attach to. It does nothing when any user already exists or email
// is empty. Returns the created user, or nil when seeding was skipped.
func SeedUser(ctx context.Context, userRepo UserRepository, name, email string, logger *slog.Logger) (*User, error) {
	if email == "" {
		return nil, nil
	}

	count, err := userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		logger.Info("users exist, skipping seed user")
		return nil, nil
	}

	if name == "" {
		name = "Owner"
	}
	user := &User{Name: name, Email: email}
	if err := userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating seed user: %w", err)
	}

	logger.Warn("seed user created",
		"user_id", user.ID,
		"email", user.Email,
		"action_required", "mint a token with -issue-token",
	)
	return user, nil
}
