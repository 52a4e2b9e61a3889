package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/nutritrack/nutritrack-server/internal/handler"
	"github.com/nutritrack/nutritrack-server/internal/middleware"
)

// RegisterRoutes registers routes that do not belong to the /api surface.
// Currently it exposes only a health check for load balancers and
// monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the /api endpoints. Register and login are public;
// everything else requires a valid access token. The photo-bytes route is
// registered separately because it accepts the token as a query parameter
// in addition to the Authorization header, for use in <img> tags.
func RegisterAPI(e *echo.Echo, a *handler.AuthHandler, f *handler.FoodHandler, p *handler.PhotoHandler, jwtSecret string) {
	// Public endpoints: obtaining a token is the only thing a client can
	// do without one.
	pub := e.Group("/api")
	pub.POST("/register", a.Register)
	pub.POST("/login", a.Login)

	// The serve-by-filename route carries its own middleware so it can
	// validate header or query tokens through the same parse path.
	e.GET("/api/photos/:filename", p.Serve, middleware.JWTAuthWithQuery(jwtSecret))

	// All remaining endpoints require a Bearer token in the
	// Authorization header.
	auth := e.Group("/api")
	auth.Use(middleware.JWTAuth(jwtSecret))

	auth.GET("/profile", a.Profile)

	auth.POST("/photos", p.Upload)
	auth.GET("/photos", p.List)
	auth.DELETE("/photos/:id", p.Delete)

	auth.POST("/food-items", f.Add)
	auth.GET("/food-items", f.List)
	auth.DELETE("/food-items/:id", f.Delete)
}
