package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/templui/sneakerbase/internal/ctxkeys"
	"github.com/templui/sneakerbase/internal/identity"
	"github.com/templui/sneakerbase/internal/service"
	"golang.org/x/oauth2"
)

const stateCookieName = "oauth_state"

// IdentityProvider is the sign-in side of the OIDC provider.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*identity.Session, error)
	Profile(ctx context.Context, token *oauth2.Token) (*identity.Claims, error)
}

type authHandler struct {
	authService *service.AuthService
	userService *service.UserService
	identity    IdentityProvider
}

// NewAuthHandler wires the browser sign-in flow. identity may be nil when no
// issuer is configured, in which case sign-in answers 503.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService, identity IdentityProvider) *authHandler {
	return &authHandler{
		authService: authService,
		userService: userService,
		identity:    identity,
	}
}

// Login redirects to the identity provider's consent screen
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		writeMessage(w, http.StatusServiceUnavailable, "sign-in is not configured")
		return
	}

	state, err := h.authService.GenerateState()
	if err != nil {
		writeError(w, r, err)
		return
	}

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.Redirect(w, r, h.identity.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the code exchange, makes sure the user record exists,
// syncs the profile and starts a session.
func (h *authHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		writeMessage(w, http.StatusServiceUnavailable, "sign-in is not configured")
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("oauth state validation failed", "error", err)
		writeMessage(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code")
		writeMessage(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	session, err := h.identity.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth code exchange failed", "error", err)
		writeMessage(w, http.StatusBadGateway, "sign-in failed")
		return
	}

	subject := session.Claims.Subject

	user, err := h.userService.EnsureUser(subject)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.syncProfile(r.Context(), session)

	token, expiresAt, err := h.authService.GenerateJWT(subject)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.authService.SetJWTCookie(w, token, expiresAt)

	slog.Info("user signed in", "user_id", user.ID, "subject", subject)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// syncProfile copies email and name from the provider onto the user record.
// Failures are logged and never block the sign-in.
func (h *authHandler) syncProfile(ctx context.Context, session *identity.Session) {
	claims := session.Claims

	profile, err := h.identity.Profile(ctx, session.Token)
	if err != nil {
		slog.Warn("userinfo fetch failed", "error", err, "subject", claims.Subject)
	} else {
		claims = claims.Merge(profile)
	}

	if claims.Email == "" && claims.GivenName == "" && claims.FamilyName == "" {
		return
	}

	_, err = h.userService.UpdateProfile(claims.Subject, claims.Email, &claims.GivenName, &claims.FamilyName)
	if err != nil {
		slog.Warn("profile sync failed", "error", err, "subject", claims.Subject)
	}
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
