package http

import (
	"context"
	"net/http"
	"strings"

	applog "fintrack/internal/log"
)

type userIDKey struct{}

// requireAuth rejects requests without a valid bearer token and stores the
// token subject as the caller's user id.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeMessage(w, r, http.StatusUnauthorized, "Please log in to continue")
			return
		}
		userID, err := s.tokens.Parse(token)
		if err != nil {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).DebugContext(r.Context(),
				"Rejected bearer token", applog.FieldError, err.Error())
			writeMessage(w, r, http.StatusUnauthorized, "Your session has expired. Please log in again.")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		reqLogger := applog.FromContext(ctx).With(applog.FieldOwnerID, userID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, reqLogger)
		next(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// userID returns the authenticated caller. Only valid behind requireAuth.
func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
