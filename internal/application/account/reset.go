package account

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

// ConfirmReset checks a reset code without consuming it.
func (s *Service) ConfirmReset(ctx context.Context, in ResetConfirmInput) error {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	return s.checkCode(ctx, domain.PurposeReset, email, in.Code)
}

// ResetPassword re-checks the reset code, stores the new hash and consumes the code.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	email := domain.NormalizeEmail(in.Email)
	if err := s.ConfirmReset(ctx, ResetConfirmInput{Email: email, Code: in.Code}); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return s.surface(ctx, "hash", domain.ErrHashFailed(err))
	}

	if err := s.accounts.UpdatePasswordByEmail(ctx, email, hash); err != nil {
		return s.surface(ctx, "update_password", err)
	}

	if err := s.codes.Delete(ctx, domain.PurposeReset, email); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("reset_code_delete_failed")
	}

	s.audit.PasswordReset(ctx, email)
	return nil
}
