//go:build integration

package cases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	itinfra "github.com/baechuer/real-time-ressys/services/account-service/test/integration/infra"
)

func Test_PasswordReset_ConfirmThenSet(t *testing.T) {
	env, err := itinfra.LoadEnv()
	require.NoError(t, err)

	d := MustNewDeps(t, env)
	defer d.Close(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, itinfra.ResetAll(ctx, d.DB, d.RDB))

	code := d.AskCode(t, ctx, "register", "it_pw@example.com", "10.0.1.1")
	require.NoError(t, d.Svc.RegisterAccount(ctx, account.RegisterInput{
		Email: "it_pw@example.com", Code: code, Username: "itpw", Password: "OldPass1",
	}))

	resetCode := d.AskCode(t, ctx, "reset", "it_pw@example.com", "10.0.1.2")

	// the register code never unlocks a reset
	err = d.Svc.ConfirmReset(ctx, account.ResetConfirmInput{Email: "it_pw@example.com", Code: code})
	if code != resetCode {
		require.True(t, domain.Is(err, "code_mismatch"), "got %v", err)
	}

	require.NoError(t, d.Svc.ConfirmReset(ctx, account.ResetConfirmInput{Email: "it_pw@example.com", Code: resetCode}))

	require.NoError(t, d.Svc.ResetPassword(ctx, account.ResetPasswordInput{
		Email: "it_pw@example.com", Code: resetCode, Password: "NewPass1",
	}))

	a, err := d.Accounts.GetByEmail(ctx, "it_pw@example.com")
	require.NoError(t, err)
	require.NoError(t, d.Hasher.Compare(a.PasswordHash, "NewPass1"))
	require.Error(t, d.Hasher.Compare(a.PasswordHash, "OldPass1"))

	exists, err := d.RDB.Exists(ctx, "verify:email:data:reset:it_pw@example.com").Result()
	require.NoError(t, err)
	require.Zero(t, exists)
}

func Test_PasswordReset_UnknownEmail_SilentNoMail(t *testing.T) {
	env, err := itinfra.LoadEnv()
	require.NoError(t, err)

	d := MustNewDeps(t, env)
	defer d.Close(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, itinfra.ResetAll(ctx, d.DB, d.RDB))

	require.NoError(t, d.Svc.RequestVerificationCode(ctx, domain.PurposeReset, "ghost@example.com", "10.0.1.3"))

	_, ok, err := itinfra.NextMail(ctx, d.AMQP, env.MailQueue, 300*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
}
