package account

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

func (s *Service) RegisterAccount(ctx context.Context, in RegisterInput) error {
	email := domain.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if username == "" {
		return domain.ErrMissingField("username")
	}

	if err := s.checkCode(ctx, domain.PurposeRegister, email, in.Code); err != nil {
		return err
	}

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return s.surface(ctx, "exists_by_email", err)
	}
	if exists {
		return domain.ErrEmailAlreadyExists()
	}

	taken, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return s.surface(ctx, "exists_by_username", err)
	}
	if taken {
		return domain.ErrUsernameAlreadyExists()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return s.surface(ctx, "hash", domain.ErrHashFailed(err))
	}

	created, err := s.accounts.Create(ctx, domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         string(domain.RoleUser),
		RegisteredAt: s.now().UTC(),
	})
	if err != nil {
		return s.surface(ctx, "create", err)
	}

	// the account exists now; a stale code only expires later
	if err := s.codes.Delete(ctx, domain.PurposeRegister, email); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("register_code_delete_failed")
	}

	s.audit.AccountRegistered(ctx, created.ID, created.Email)
	return nil
}
