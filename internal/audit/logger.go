package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appCtx "github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/context"
)

// Logger provides structured audit logging for account business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// VerifyCodeRequested logs a verification code handed to the mail queue
func (l *Logger) VerifyCodeRequested(ctx context.Context, purpose, email, addr string) {
	l.log.Info().
		Str("action", "verify_code_requested").
		Str("purpose", purpose).
		Str("email", maskEmail(email)).
		Str("ip", addr).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Verification code requested")
}

// AccountRegistered logs a completed registration
func (l *Logger) AccountRegistered(ctx context.Context, accountID, email string) {
	l.log.Info().
		Str("action", "account_registered").
		Str("account_id", accountID).
		Str("email", maskEmail(email)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Account registered")
}

// PasswordReset logs a password replaced through the reset flow
func (l *Logger) PasswordReset(ctx context.Context, email string) {
	l.log.Warn().
		Str("action", "password_reset").
		Str("email", maskEmail(email)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Password reset")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	// Show first 2 chars and domain
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
