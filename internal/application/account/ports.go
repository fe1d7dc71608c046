package account

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
AccountRepo
-----------
Persistence port for accounts.
Only describes WHAT the account service needs, not HOW it's stored.
*/
type AccountRepo interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, a domain.Account) (domain.Account, error)

	// UpdatePasswordByEmail returns domain.ErrAccountNotFound when no row matches.
	UpdatePasswordByEmail(ctx context.Context, email string, newHash string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
}

/*
CodeStore
---------
Short-lived verification codes keyed by (purpose, email).
Get returns ("", nil) when no code is stored.
*/
type CodeStore interface {
	Save(ctx context.Context, purpose domain.VerifyPurpose, email, code string, ttl time.Duration) error
	Get(ctx context.Context, purpose domain.VerifyPurpose, email string) (string, error)
	Delete(ctx context.Context, purpose domain.VerifyPurpose, email string) error
}

/*
Cooldown
--------
Acquire reports whether key may proceed; a successful acquire blocks
the same key until window elapses.
*/
type Cooldown interface {
	Acquire(ctx context.Context, key string, window time.Duration) (bool, error)
}

/*
AttemptCounter
--------------
Hit records one wrong code under key and returns how many landed inside window.
Reset forgets key.
*/
type AttemptCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int, error)
	Reset(ctx context.Context, key string) error
}

/*
MailPublisher
-------------
Publishes mail requests to RabbitMQ.
A mail worker consumes them and sends the actual email;
account-service does NOT talk SMTP.
*/
type MailPublisher interface {
	PublishVerifyCode(ctx context.Context, req MailRequest) error
}

type MailRequest struct {
	Purpose domain.VerifyPurpose `json:"type"`
	Email   string               `json:"email"`
	Code    string               `json:"code"`
}

/*
Auditor
-------
Receives business events worth keeping in the audit trail.
*/
type Auditor interface {
	VerifyCodeRequested(ctx context.Context, purpose, email, addr string)
	AccountRegistered(ctx context.Context, accountID, email string)
	PasswordReset(ctx context.Context, email string)
}

// Inputs mirror the validated transport DTOs.

type RegisterInput struct {
	Email    string
	Code     string
	Username string
	Password string
}

type ResetConfirmInput struct {
	Email string
	Code  string
}

type ResetPasswordInput struct {
	Email    string
	Code     string
	Password string
}
