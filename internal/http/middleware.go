package http

import (
	"net/http"
	"strings"

	"github.com/fjod/go_restaurant/internal/auth"
	"github.com/sirupsen/logrus"
)

const tokenCookie = "access_token"

// AuthMiddleware authenticates the caller from a bearer token or the
// access_token cookie. Unauthenticated reads get 401; unauthenticated
// mutations are sent to the sign-in page with 303 See Other.
func AuthMiddleware(verifier *auth.Verifier, signInURL string, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := verifier.Verify(tokenFrom(r))
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Debug("unauthenticated request")
				if isMutating(r.Method) {
					http.Redirect(w, r, signInURL, http.StatusSeeOther)
					return
				}
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
