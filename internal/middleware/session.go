package middleware

import (
	"context"
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

// SessionKey is the context key for the acting user's session.
const SessionKey contextKey = "session"

// Session reads the acting user from request headers and injects an
// explicit model.Session into the context. Authentication itself is an
// external collaborator; this middleware only carries the actor identity
// so mutation entry points never reach for a process-wide singleton.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := model.Anonymous
		if id := r.Header.Get("X-User-ID"); id != "" {
			sess = model.Session{
				UserID:   id,
				UserName: r.Header.Get("X-User-Name"),
				Role:     r.Header.Get("X-User-Role"),
			}
			if sess.UserName == "" {
				sess.UserName = id
			}
			if sess.Role == "" {
				sess.Role = model.RoleWorker
			}
		}

		ctx := context.WithValue(r.Context(), SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession retrieves the acting user's session from context.
func GetSession(ctx context.Context) model.Session {
	if sess, ok := ctx.Value(SessionKey).(model.Session); ok {
		return sess
	}
	return model.Anonymous
}
