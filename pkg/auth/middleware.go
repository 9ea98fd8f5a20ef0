package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/gocommerce-admin/pkg/web"
)

// Identity resolves the operator from a bearer token and stores its subject in the request context.
// Unlike a gateway it never rejects: a missing or invalid token leaves the request anonymous
// and the access guard redirects it.
func Identity(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			subject, ok := token.Subject()
			if !ok || subject == "" {
				logger.WarnContext(r.Context(), "bearer token has no subject")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(web.WithUserID(r.Context(), subject)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}
