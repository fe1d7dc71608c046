package account

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

const (
	codeDigits = 6

	cooldownKeyPrefix = "verify:email:limit:"
	attemptKeyPrefix  = "verify:email:fail:"

	// DefaultMaxCodeAttempts is how many wrong guesses a stored code survives.
	DefaultMaxCodeAttempts = 5
)

type Service struct {
	accounts AccountRepo
	hasher   PasswordHasher
	codes    CodeStore
	cooldown Cooldown
	mail     MailPublisher
	audit    Auditor
	attempts AttemptCounter

	maxAttempts    int
	codeTTL        time.Duration
	cooldownWindow time.Duration

	now     func() time.Time
	newCode func() (string, error)
}

type Config struct {
	CodeTTL  time.Duration
	Cooldown time.Duration
}

func NewService(
	accounts AccountRepo,
	hasher PasswordHasher,
	codes CodeStore,
	cooldown Cooldown,
	mail MailPublisher,
	cfg Config,
) *Service {
	codeTTL := cfg.CodeTTL
	if codeTTL <= 0 {
		codeTTL = 3 * time.Minute
	}
	window := cfg.Cooldown
	if window <= 0 {
		window = time.Minute
	}
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		codes:    codes,
		cooldown: cooldown,
		mail:     mail,
		audit:    noopAuditor{},

		codeTTL:        codeTTL,
		cooldownWindow: window,

		now:     time.Now,
		newCode: randomDigits,
	}
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

// WithAttemptLimit burns a stored code after limit wrong guesses.
// limit <= 0 uses DefaultMaxCodeAttempts.
func (s *Service) WithAttemptLimit(c AttemptCounter, limit int) *Service {
	if limit <= 0 {
		limit = DefaultMaxCodeAttempts
	}
	s.attempts = c
	s.maxAttempts = limit
	return s
}

// checkCode compares the submitted code against the stored one for (purpose, email).
func (s *Service) checkCode(ctx context.Context, purpose domain.VerifyPurpose, email, code string) error {
	stored, err := s.codes.Get(ctx, purpose, email)
	if err != nil {
		return s.surface(ctx, "code_lookup", err)
	}
	if stored == "" {
		return domain.ErrCodeMissing()
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		s.recordMismatch(ctx, purpose, email)
		return domain.ErrCodeMismatch()
	}
	return nil
}

func attemptKey(purpose domain.VerifyPurpose, email string) string {
	return attemptKeyPrefix + string(purpose) + ":" + email
}

// recordMismatch counts a wrong guess and deletes the stored code once the limit is hit.
// Counter failures are logged and ignored.
func (s *Service) recordMismatch(ctx context.Context, purpose domain.VerifyPurpose, email string) {
	if s.attempts == nil {
		return
	}
	key := attemptKey(purpose, email)
	n, err := s.attempts.Hit(ctx, key, s.codeTTL)
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("purpose", string(purpose)).Msg("code_attempt_count_failed")
		return
	}
	if n < s.maxAttempts {
		return
	}
	if err := s.codes.Delete(ctx, purpose, email); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("purpose", string(purpose)).Msg("code_burn_failed")
		return
	}
	s.resetAttempts(ctx, purpose, email)
	logger.WithCtx(ctx).Warn().
		Str("purpose", string(purpose)).
		Int("attempts", n).
		Msg("verify_code_burned")
}

func (s *Service) resetAttempts(ctx context.Context, purpose domain.VerifyPurpose, email string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Reset(ctx, attemptKey(purpose, email)); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("purpose", string(purpose)).Msg("code_attempt_reset_failed")
	}
}

// surface keeps domain errors as they are and hides anything else behind ErrInternal.
func (s *Service) surface(ctx context.Context, op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Kind == domain.KindInfrastructure || de.Kind == domain.KindInternal {
			logger.WithCtx(ctx).Error().Err(err).Str("op", op).Msg("account_service_failure")
		}
		return de
	}
	logger.WithCtx(ctx).Error().Err(err).Str("op", op).Msg("account_service_failure")
	return domain.ErrInternal(err)
}

// randomDigits returns a zero-padded numeric code of codeDigits length.
func randomDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

type noopAuditor struct{}

func (noopAuditor) VerifyCodeRequested(context.Context, string, string, string) {}
func (noopAuditor) AccountRegistered(context.Context, string, string)           {}
func (noopAuditor) PasswordReset(context.Context, string)                       {}
