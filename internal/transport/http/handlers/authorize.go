package http_handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/tracing"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
)

// AccountService is everything the /api/auth endpoints need from the account layer.
// A nil error means success; a *domain.Error carries the message shown to the client.
type AccountService interface {
	RequestVerificationCode(ctx context.Context, purpose domain.VerifyPurpose, email, callerAddr string) error
	RegisterAccount(ctx context.Context, in account.RegisterInput) error
	ConfirmReset(ctx context.Context, in account.ResetConfirmInput) error
	ResetPassword(ctx context.Context, in account.ResetPasswordInput) error
}

type AuthorizeHandler struct {
	svc AccountService
}

func NewAuthorizeHandler(svc AccountService) *AuthorizeHandler {
	return &AuthorizeHandler{svc: svc}
}

// AskCode handles GET /api/auth/ask-code?email=&type=
func (h *AuthorizeHandler) AskCode(w http.ResponseWriter, r *http.Request) {
	q := dto.AskCodeQueryFrom(r.URL.Query())
	if err := q.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	addr := middleware.RemoteHost(r)
	outcome := h.messageHandle(w, r, "ask_code", func(ctx context.Context) error {
		return h.svc.RequestVerificationCode(ctx, q.Purpose(), q.Email, addr)
	})
	middleware.VerifyCodeRequestsTotal.WithLabelValues(q.Type, outcome).Inc()
}

// Register handles POST /api/auth/register
func (h *AuthorizeHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	outcome := h.messageHandle(w, r, "register", func(ctx context.Context) error {
		return h.svc.RegisterAccount(ctx, req.ToInput())
	})
	middleware.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// ResetConfirm handles POST /api/auth/reset-confirm
func (h *AuthorizeHandler) ResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetConfirmRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	outcome := h.messageHandle(w, r, "reset_confirm", func(ctx context.Context) error {
		return h.svc.ConfirmReset(ctx, req.ToInput())
	})
	middleware.PasswordResetsTotal.WithLabelValues("confirm", outcome).Inc()
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthorizeHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	outcome := h.messageHandle(w, r, "reset_password", func(ctx context.Context) error {
		return h.svc.ResetPassword(ctx, req.ToInput())
	})
	middleware.PasswordResetsTotal.WithLabelValues("set", outcome).Inc()
}

// messageHandle makes the one account service call of a request and writes its envelope.
// It returns the outcome label used by the business counters.
func (h *AuthorizeHandler) messageHandle(w http.ResponseWriter, r *http.Request, op string, call func(ctx context.Context) error) string {
	ctx, span := tracing.StartSpan(r.Context(), "auth."+op)
	err := call(ctx)
	outcome := outcomeOf(err)
	tracing.EndSpan(span, outcome, err)

	if err != nil {
		logger.WithCtx(ctx).Info().
			Str("op", op).
			Str("code", outcome).
			Msg("account_request_rejected")
	}

	response.WriteEnvelope(w, response.FromError(response.RequestIDFromContext(r), err))
	return outcome
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	var de *domain.Error
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	return "internal_error"
}
