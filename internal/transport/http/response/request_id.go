package response

import (
	"net/http"

	appCtx "github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/context"
)

// RequestIDFromContext returns the id set by the RequestID middleware, or "".
func RequestIDFromContext(r *http.Request) string {
	return appCtx.GetRequestID(r.Context())
}
