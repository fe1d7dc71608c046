package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// envelopeBody mirrors response.Envelope on the wire.
type envelopeBody struct {
	ID      string          `json:"id"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message *string         `json:"message"`
}

func mustReadEnvelope(t *testing.T, body *bytes.Buffer) envelopeBody {
	t.Helper()

	var env envelopeBody
	if err := json.Unmarshal(body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body=%s", err, body.String())
	}
	return env
}

type askCall struct {
	purpose domain.VerifyPurpose
	email   string
	addr    string
}

// stubAccountService records calls and returns err for every operation.
type stubAccountService struct {
	mu  sync.Mutex
	err error

	asks     []askCall
	register []account.RegisterInput
	confirms []account.ResetConfirmInput
	resets   []account.ResetPasswordInput
}

func (s *stubAccountService) RequestVerificationCode(ctx context.Context, purpose domain.VerifyPurpose, email, callerAddr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asks = append(s.asks, askCall{purpose: purpose, email: email, addr: callerAddr})
	return s.err
}

func (s *stubAccountService) RegisterAccount(ctx context.Context, in account.RegisterInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register = append(s.register, in)
	return s.err
}

func (s *stubAccountService) ConfirmReset(ctx context.Context, in account.ResetConfirmInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirms = append(s.confirms, in)
	return s.err
}

func (s *stubAccountService) ResetPassword(ctx context.Context, in account.ResetPasswordInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, in)
	return s.err
}

func (s *stubAccountService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.asks) + len(s.register) + len(s.confirms) + len(s.resets)
}
