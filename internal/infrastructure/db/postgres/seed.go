package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
}

// SeedAccounts creates the local development accounts. Restart safe.
func SeedAccounts(ctx context.Context, repo SeederRepo, hasher SeederHasher) {
	type seedAccount struct {
		Username string
		Email    string
		Role     domain.Role
		Pass     string
	}

	seeds := []seedAccount{
		{Username: "admin", Email: "admin@example.com", Role: domain.RoleAdmin, Pass: "admin123"},
		{Username: "demo", Email: "demo@example.com", Role: domain.RoleUser, Pass: "demo123"},
	}

	created := 0
	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("email", s.Email).Msg("seed_hash_failed")
			continue
		}

		a := domain.Account{
			ID:           uuid.NewString(),
			Username:     s.Username,
			Email:        s.Email,
			PasswordHash: hash,
			Role:         string(s.Role),
			RegisteredAt: time.Now().UTC(),
		}

		if _, err := repo.Create(ctx, a); err != nil {
			// ignore duplicates (restart safe)
			continue
		}
		created++
	}

	logger.Logger.Info().Int("created", created).Msg("dev accounts seeded")
}
