package middleware

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// EscapedRoutePath makes chi route on the escaped request path, so a room name
// containing "/" stays one path segment. Read such parameters with URLParam.
func EscapedRoutePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.RoutePath = r.URL.EscapedPath()
		}
		next.ServeHTTP(w, r)
	})
}

// URLParam returns the unescaped value of a route parameter.
func URLParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
