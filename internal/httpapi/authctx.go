package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/grantlemons/expenser/internal/errs"
)

type ctxKey string

const userIDKey ctxKey = "expenser.userID"

// WithUserID stores authenticated user ID in context.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches user ID from context.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// bearerToken extracts the token of an "Authorization: Bearer <JWT>" header.
func bearerToken(r *http.Request) (string, bool) {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < 7 || !strings.EqualFold(v[:7], "bearer ") {
		return "", false
	}
	t := strings.TrimSpace(v[7:])
	return t, t != ""
}

// authenticate rejects requests without a valid access token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := bearerToken(r)
		if !ok {
			s.writeError(w, r, errs.ErrUnauthorized)
			return
		}
		id, err := s.auth.Authenticate(tok)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

// actor returns the authenticated user; routes behind authenticate always have one.
func actor(r *http.Request) int64 {
	id, _ := UserIDFromCtx(r.Context())
	return id
}
