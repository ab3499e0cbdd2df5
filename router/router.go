package router

import (
	"freelance-auth-api/handler"
	"freelance-auth-api/service"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "freelance-auth-api/docs"
)

func NewRouter(userHandler *handler.UserHandler, authHandler *handler.AuthHandler, authService *service.AuthService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handler.HealthCheck)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.Handle("/register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))
	mux.Handle("/password-reset/request", handler.ErrorHandlingMiddleware(authHandler.RequestPasswordReset))
	mux.Handle("/password-reset/confirm", handler.ErrorHandlingMiddleware(authHandler.ResetPassword))

	// Everything under /api requires a valid access token. This is the
	// validate contract the rest of the marketplace consumes.
	authenticate := handler.AuthMiddleware(authService)
	mux.Handle("/api/me", authenticate(handler.ErrorHandlingMiddleware(userHandler.Me)))

	return mux
}
