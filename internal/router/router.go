package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used to handle routing

	"github.com/iliyamo/job-application-tracker/internal/handler"    // handlers implement the endpoint logic
	"github.com/iliyamo/job-application-tracker/internal/middleware" // middleware provides the session gate
	"github.com/iliyamo/job-application-tracker/internal/session"    // session exposes the injected store type
)

// RegisterRoutes registers the routes that do not require authentication.
// Currently it exposes only a health check used by load balancers and
// monitoring systems to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the login flow and the session-scoped user endpoints.
// The external-login pair performs the redirect dance with the identity
// provider and needs no session. Logout is deliberately outside the gate so
// logging out an already-anonymous browser succeeds silently; get-user sits
// behind the gate and answers 401 without a valid session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, sessions session.Store) {
	e.GET("/auth/external-login", a.StartLogin)
	e.GET("/auth/external-login/callback", a.Callback)

	gate := middleware.SessionAuth(sessions)
	api := e.Group("/api")
	api.GET("/logout", a.Logout)
	api.GET("/get-user", a.GetUser, gate)
}

// RegisterApplications wires the ownership-scoped CRUD endpoints. Every
// route runs behind the session gate: the gate resolves the cookie to a user
// id and the handlers scope every query to that id.
func RegisterApplications(e *echo.Echo, h *handler.ApplicationHandler, sessions session.Store) {
	gate := middleware.SessionAuth(sessions)
	api := e.Group("/api", gate)
	api.GET("/applications", h.List)
	api.POST("/applications", h.Create)
	api.PUT("/applications/:id", h.Update)
	api.DELETE("/applications/:id", h.Delete)
}
