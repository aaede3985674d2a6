package routes

import (
	"net/http"

	"github.com/templui/sneakerbase/internal/app"
	"github.com/templui/sneakerbase/internal/handler"
	"github.com/templui/sneakerbase/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Only a configured provider may reach the handlers, a typed nil would not compare equal to nil
	var provider handler.IdentityProvider
	var verifier middleware.TokenVerifier
	if app.Identity != nil {
		provider = app.Identity
		verifier = app.Identity
	}

	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.UserService, provider)
	user := handler.NewUserHandler(app.UserService)
	sneaker := handler.NewSneakerHandler(app.SneakerService, app.RatingService)
	rating := handler.NewRatingHandler(app.RatingService)
	upload := handler.NewUploadHandler(app.UploadService)
	stream := handler.NewEventHandler(app.Events, app.Cfg.EventHeartbeat)

	mux := http.NewServeMux()

	// ============================================================================
	// AUTH
	// ============================================================================

	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("GET /auth/callback", rateLimiter(auth.Callback))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// USERS
	// ============================================================================

	mux.HandleFunc("POST /api/me", middleware.RequireAuth(user.EnsureMe))
	mux.HandleFunc("GET /api/me", user.Me)
	mux.HandleFunc("PUT /api/users/{subject}/profile", middleware.RequireServiceToken(app.AuthService)(user.UpdateProfile))

	// ============================================================================
	// UPLOADS
	// ============================================================================

	mux.HandleFunc("POST /api/uploads", upload.RequestSlot)
	mux.HandleFunc("POST /api/uploads/{token}", upload.Receive)

	// ============================================================================
	// SNEAKERS & RATINGS
	// ============================================================================

	mux.HandleFunc("GET /api/sneakers", sneaker.List)
	mux.HandleFunc("GET /api/sneakers/mine", sneaker.Mine)
	mux.HandleFunc("GET /api/sneakers/{id}", sneaker.Get)
	mux.HandleFunc("GET /api/sneakers/{id}/ratings", sneaker.Ratings)
	mux.HandleFunc("POST /api/sneakers", middleware.RequireAuth(sneaker.Create))
	mux.HandleFunc("POST /api/sneakers/{id}/ratings", middleware.RequireAuth(sneaker.AddRating))

	mux.HandleFunc("GET /api/ratings/mine", rating.Mine)
	mux.HandleFunc("DELETE /api/ratings/{id}", middleware.RequireAuth(rating.Delete))

	// ============================================================================
	// LIVE UPDATES
	// ============================================================================

	mux.HandleFunc("GET /api/events", stream.Stream)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config first, CSRF reads it for the cookie flags
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, verifier),
	)

	return handler
}
