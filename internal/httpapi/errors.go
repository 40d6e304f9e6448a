package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/grantlemons/expenser/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusOf maps the error taxonomy onto HTTP. The order matters: ErrNoRowsAffected is also ErrNotFound.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrIncomplete):
		return http.StatusBadRequest, "incomplete"
	case errors.Is(err, errs.ErrInvalid):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, errs.ErrConstraint):
		return http.StatusConflict, "constraint"
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "canceled"
	}
	return http.StatusInternalServerError, "internal"
}

// writeError is the single place errors are logged and rendered.
// Server side failures are logged and their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	errorsTotal.WithLabelValues(code).Inc()
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.Error(err),
			zap.String("code", code),
			zap.String("path", r.URL.Path),
			zap.String("req_id", chimw.GetReqID(r.Context())),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
