package dto

import (
	"net/url"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// -------- Verification code --------

// AskCodeQuery is bound from ?email=&type= on GET /ask-code.
type AskCodeQuery struct {
	Email string `json:"email" validate:"required,email"`
	Type  string `json:"type" validate:"required,oneof=register reset"`
}

func AskCodeQueryFrom(q url.Values) AskCodeQuery {
	return AskCodeQuery{
		Email: q.Get("email"),
		Type:  q.Get("type"),
	}
}

func (r *AskCodeQuery) Validate() error { return validateStruct(r) }

func (r *AskCodeQuery) Purpose() domain.VerifyPurpose { return domain.VerifyPurpose(r.Type) }

// -------- Registration --------

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6"`
	Username string `json:"username" validate:"required,min=1,max=10,username_format"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

func (r *RegisterRequest) Validate() error { return validateStruct(r) }

func (r *RegisterRequest) ToInput() account.RegisterInput {
	return account.RegisterInput{
		Email:    r.Email,
		Code:     r.Code,
		Username: r.Username,
		Password: r.Password,
	}
}

// -------- Password reset --------

type ResetConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

func (r *ResetConfirmRequest) Validate() error { return validateStruct(r) }

func (r *ResetConfirmRequest) ToInput() account.ResetConfirmInput {
	return account.ResetConfirmInput{Email: r.Email, Code: r.Code}
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

func (r *ResetPasswordRequest) Validate() error { return validateStruct(r) }

func (r *ResetPasswordRequest) ToInput() account.ResetPasswordInput {
	return account.ResetPasswordInput{Email: r.Email, Code: r.Code, Password: r.Password}
}
