package db

import (
	"context"
	"errors"

	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/domain/user"
)

type SeedUsers interface {
	FindByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// EnsureSeedUser creates the configured seed account if it does not exist yet.
// It is a no-op when SEED_EMAIL or SEED_PASSWORD is unset.
func EnsureSeedUser(ctx context.Context, users SeedUsers, hasher PasswordHasher, cfg config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return nil
	}

	// check if the user exists

	_, err := users.FindByEmail(ctx, cfg.SeedEmail)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.SeedPassword)

	if err != nil {
		return err
	}

	u := user.NewFromCreateRequest(user.CreateUserRequest{
		FirstName:    cfg.SeedFirstName,
		LastName:     cfg.SeedLastName,
		EmailAddress: cfg.SeedEmail,
	}, hash)

	_, err = users.Create(ctx, u)

	// another instance may have won the race
	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}

	return err
}
