package memory

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

// NoopPublisher logs mail requests instead of queueing them (dev only).
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishVerifyCode(ctx context.Context, req account.MailRequest) error {
	logger.WithCtx(ctx).Info().
		Str("type", string(req.Purpose)).
		Str("email", req.Email).
		Str("code", req.Code).
		Msg("noop_pub_verify_code")
	return nil
}
