package middleware

import (
	"context"
	"net/http"

	"sohbet-lite/core"
	"sohbet-lite/session"

	"github.com/sirupsen/logrus"
)

type contextKey string

const UserContextKey = contextKey("user")

// UserLookup resolves a token to its user.
type UserLookup interface {
	Lookup(ctx context.Context, token string) (*core.User, error)
}

// Identify attaches the caller's user to the request context when the
// chat_token cookie or the k query parameter holds a known token. Unknown or
// missing tokens are not an error: the request continues anonymously.
func Identify(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, token := session.Identity(r)
			if token == "" {
				token = r.URL.Query().Get("k")
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.Lookup(r.Context(), token)
			if err != nil {
				logrus.WithError(err).Debug("Ignoring unknown user token")
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the user attached by Identify, or nil.
func UserFrom(ctx context.Context) *core.User {
	user, _ := ctx.Value(UserContextKey).(*core.User)
	return user
}
