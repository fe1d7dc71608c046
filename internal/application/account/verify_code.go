package account

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

// RequestVerificationCode issues a code for (purpose, email) and hands it to the mail queue.
// Each caller address may ask once per cooldown window.
func (s *Service) RequestVerificationCode(ctx context.Context, purpose domain.VerifyPurpose, email, callerAddr string) error {
	if !purpose.Valid() {
		return domain.ErrInvalidPurpose(string(purpose))
	}
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	ok, err := s.cooldown.Acquire(ctx, cooldownKeyPrefix+callerAddr, s.cooldownWindow)
	if err != nil {
		return s.surface(ctx, "cooldown", err)
	}
	if !ok {
		return domain.ErrTooFrequent()
	}

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return s.surface(ctx, "exists_by_email", err)
	}
	switch purpose {
	case domain.PurposeRegister:
		if exists {
			return domain.ErrEmailAlreadyExists()
		}
	case domain.PurposeReset:
		// non-enumerating: unknown addresses look like a successful send
		if !exists {
			logger.WithCtx(ctx).Info().Str("purpose", string(purpose)).Msg("reset_code_for_unknown_email")
			return nil
		}
	}

	code, err := s.newCode()
	if err != nil {
		return s.surface(ctx, "new_code", domain.ErrRandomFailed(err))
	}

	if err := s.codes.Save(ctx, purpose, email, code, s.codeTTL); err != nil {
		return s.surface(ctx, "code_save", err)
	}
	// a fresh code starts with a clean guess budget
	s.resetAttempts(ctx, purpose, email)

	if err := s.mail.PublishVerifyCode(ctx, MailRequest{Purpose: purpose, Email: email, Code: code}); err != nil {
		// a code nobody received must not block the next attempt
		_ = s.codes.Delete(ctx, purpose, email)
		return s.surface(ctx, "mail_publish", domain.ErrMailUnavailable(err))
	}

	s.audit.VerifyCodeRequested(ctx, string(purpose), email, callerAddr)
	return nil
}
