package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/sneakerbase/internal/ctxkeys"
	"github.com/templui/sneakerbase/internal/identity"
	"github.com/templui/sneakerbase/internal/service"
)

// TokenVerifier verifies identity provider ID tokens sent as bearer tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*identity.Claims, error)
}

// AuthMiddleware resolves the caller's subject from a bearer ID token or the
// session cookie and stores it in the context. Requests without valid
// credentials continue unauthenticated. verifier may be nil.
func AuthMiddleware(authService *service.AuthService, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := bearerToken(r); ok {
				if verifier == nil {
					next.ServeHTTP(w, r)
					return
				}

				claims, err := verifier.Verify(r.Context(), raw)
				if err != nil {
					slog.Debug("bearer token rejected", "error", err)
					next.ServeHTTP(w, r)
					return
				}

				next.ServeHTTP(w, r.WithContext(ctxkeys.WithSubject(r.Context(), claims.Subject)))
				return
			}

			cookie, err := r.Cookie(service.SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := authService.VerifyJWT(cookie.Value)
			if err != nil {
				// Invalid or expired session, clear cookie and continue
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithSubject(r.Context(), subject)))
		})
	}
}

// RequireAuth rejects requests without an identity.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Subject(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireServiceToken guards service-to-service endpoints with the shared X-Service-Token.
func RequireServiceToken(authService *service.AuthService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !authService.ValidServiceToken(r.Header.Get("X-Service-Token")) {
				slog.Warn("service token rejected", "path", r.URL.Path, "ip", getClientIP(r))
				writeError(w, http.StatusUnauthorized, "invalid service token")
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
