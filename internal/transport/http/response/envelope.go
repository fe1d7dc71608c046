package response

import (
	"errors"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const (
	CodeSuccess = http.StatusOK
	CodeFailure = http.StatusBadRequest
)

// Envelope is the uniform body of every /api/auth call that reached the account service.
// Success carries code 200 and never a message; failure carries a non-empty message.
type Envelope[T any] struct {
	ID      string `json:"id"`
	Code    int    `json:"code"`
	Data    *T     `json:"data"`
	Message string `json:"message,omitempty"`
}

// Empty is the payload type of envelopes that carry no data.
type Empty struct{}

func Success[T any](id string, data *T) Envelope[T] {
	return Envelope[T]{ID: id, Code: CodeSuccess, Data: data}
}

func Failure(id string, code int, message string) Envelope[Empty] {
	if message == "" {
		message = domain.ErrInternal(nil).Message
	}
	return Envelope[Empty]{ID: id, Code: code, Message: message}
}

// FromError is the single adapter from an account service result to an envelope:
// nil is success, anything else is failure(400) with the client-safe message.
func FromError(id string, err error) Envelope[Empty] {
	if err == nil {
		return Success[Empty](id, nil)
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return Failure(id, CodeFailure, de.Message)
	}
	// non-domain errors never leak their text
	return Failure(id, CodeFailure, "")
}

// WriteEnvelope writes env as a 200 response; the outcome lives in env.Code.
func WriteEnvelope[T any](w http.ResponseWriter, env Envelope[T]) {
	WriteJSON(w, http.StatusOK, env)
}
