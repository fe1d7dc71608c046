package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

func TestRequestVerificationCode_Register_SavesAndPublishes(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)

	err := svc.RequestVerificationCode(context.Background(), domain.PurposeRegister, " New@Example.com ", "10.0.0.1")
	require.NoError(t, err)

	require.Len(t, d.mail.sent, 1)
	assert.Equal(t, MailRequest{Purpose: domain.PurposeRegister, Email: "new@example.com", Code: "123456"}, d.mail.sent[0])
	assert.Equal(t, "123456", d.codes.data["register|new@example.com"])
	assert.Equal(t, 3*time.Minute, d.codes.ttls["register|new@example.com"])
	assert.Equal(t, []string{"verify:email:limit:10.0.0.1"}, d.cooldown.keys)
	require.Len(t, d.audit.entries, 1)
	assert.Equal(t, "verify_code_requested", d.audit.entries[0].action)
}

func TestRequestVerificationCode_SecondAskFromSameAddress_TooFrequent(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestVerificationCode(ctx, domain.PurposeRegister, "a@b.com", "10.0.0.1"))
	err := svc.RequestVerificationCode(ctx, domain.PurposeRegister, "c@d.com", "10.0.0.1")
	requireErrCode(t, err, "too_frequent")
	assert.Len(t, d.mail.sent, 1)

	// a different address is not affected
	require.NoError(t, svc.RequestVerificationCode(ctx, domain.PurposeRegister, "c@d.com", "10.0.0.2"))
}

func TestRequestVerificationCode_Register_EmailTaken(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	d.accounts.seed(domain.Account{ID: "1", Email: "a@b.com", Username: "alice"})

	err := svc.RequestVerificationCode(context.Background(), domain.PurposeRegister, "a@b.com", "10.0.0.1")
	requireErrCode(t, err, "email_already_exists")
	assert.Empty(t, d.mail.sent)
}

func TestRequestVerificationCode_Reset_UnknownEmail_SilentSuccess(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)

	err := svc.RequestVerificationCode(context.Background(), domain.PurposeReset, "ghost@b.com", "10.0.0.1")
	require.NoError(t, err)
	assert.Empty(t, d.mail.sent)
	assert.Empty(t, d.codes.data)
}

func TestRequestVerificationCode_Reset_KnownEmail_Publishes(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	d.accounts.seed(domain.Account{ID: "1", Email: "a@b.com", Username: "alice"})

	require.NoError(t, svc.RequestVerificationCode(context.Background(), domain.PurposeReset, "a@b.com", "10.0.0.1"))
	require.Len(t, d.mail.sent, 1)
	assert.Equal(t, domain.PurposeReset, d.mail.sent[0].Purpose)
	assert.Equal(t, "123456", d.codes.data["reset|a@b.com"])
}

func TestRequestVerificationCode_InvalidPurpose(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)

	err := svc.RequestVerificationCode(context.Background(), domain.VerifyPurpose("bogus"), "a@b.com", "10.0.0.1")
	requireErrCode(t, err, "invalid_field")
	assert.Empty(t, d.cooldown.keys)
}

func TestRequestVerificationCode_PublishFails_DropsCode(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	d.mail.err = errBoom

	err := svc.RequestVerificationCode(context.Background(), domain.PurposeRegister, "a@b.com", "10.0.0.1")
	requireErrCode(t, err, "mail_unavailable")
	assert.Empty(t, d.codes.data)
	assert.True(t, errors.Is(err, errBoom))
}

func TestRequestVerificationCode_CooldownBackendFails_Internal(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	d.cooldown.err = errBoom

	err := svc.RequestVerificationCode(context.Background(), domain.PurposeRegister, "a@b.com", "10.0.0.1")
	requireErrCode(t, err, "internal_error")
}

func TestRequestVerificationCode_RandomFails(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)
	svc.newCode = func() (string, error) { return "", errBoom }

	err := svc.RequestVerificationCode(context.Background(), domain.PurposeRegister, "a@b.com", "10.0.0.1")
	requireErrCode(t, err, "random_failed")
}

func TestRandomDigits_SixDigits(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		c, err := randomDigits()
		require.NoError(t, err)
		require.Len(t, c, 6)
		for _, r := range c {
			require.True(t, r >= '0' && r <= '9', "non-digit in %q", c)
		}
	}
}
