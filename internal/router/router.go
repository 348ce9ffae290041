package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/DMlogobardi/Quizy-sub001/internal/auth"
	"github.com/DMlogobardi/Quizy-sub001/internal/handler"
	"github.com/DMlogobardi/Quizy-sub001/internal/middleware"
	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/session"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; logout and elevation
// need a live credential and therefore sit behind CredentialAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, codec *auth.Codec, registry *session.Registry) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	// Elevation additionally requires the COMPILER role: it is the only
	// one-way upgrade the platform offers (compiler -> creator).  The
	// service re-checks eligibility before minting anything.
	protected := e.Group("/v1/auth", middleware.CredentialAuth(codec, registry))
	protected.POST("/logout", a.Logout)
	protected.POST("/elevate", a.Elevate, middleware.RequireRole(model.RoleCompiler))

	me := e.Group("/v1", middleware.CredentialAuth(codec, registry))
	me.GET("/me", a.Me)
}

// RegisterQuizzes registers the quiz CRUD surface.  Every route runs
// behind CredentialAuth plus a CREATOR role gate; the service layer
// repeats both checks so the middleware is a fast first filter, not
// the authority.
func RegisterQuizzes(e *echo.Echo, q *handler.QuizHandler, codec *auth.Codec, registry *session.Registry) {
	g := e.Group("/v1/quizzes",
		middleware.CredentialAuth(codec, registry),
		middleware.RequireRole(model.RoleCreator))
	g.GET("", q.List)
	g.POST("", q.Create)
	g.GET("/:id", q.Get)
	g.PUT("/:id", q.Update)
	g.DELETE("/:id", q.Delete)
}
