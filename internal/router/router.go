package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/handler"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout works with either a refresh token in the body or a bearer.
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterCatalog registers the public catalog listings.  limit and cache
// run in that order in front of every route except /v1/ratings, which is
// not cached because its body depends on the caller.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string, limit, cache echo.MiddlewareFunc) {
	e.GET("/v1/courses", h.GetCourses, limit, cache)
	e.GET("/v1/sections", h.GetSections, limit, cache)
	e.GET("/v1/degrees", h.GetDegrees, limit, cache)
	e.GET("/v1/instructors", h.GetInstructors, limit, cache)
	e.GET("/v1/ratings", h.GetRatings, limit, middleware.OptionalJWTAuth(jwtSecret))
}

// RegisterStudent registers the endpoints of the signed-in student.  PUT
// /v1/user-info only needs a user since it creates the profile; the rest
// also need the profile.
func RegisterStudent(e *echo.Echo, h *handler.StudentHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	auth := middleware.JWTAuth(jwtSecret)
	e.PUT("/v1/user-info", h.PutUserInfo, auth)

	student := middleware.RequireStudent(h.Students)
	e.GET("/v1/user-info", h.GetUserInfo, auth, student)
	e.POST("/v1/ratings", h.CreateRating, auth, student)
	e.POST("/v1/student-courses", h.AddDesiredCourse, auth, student)
	e.DELETE("/v1/student-courses/:id", h.RemoveDesiredCourse, auth, student)
	e.GET("/v1/degree-requirements", h.GetDegreeRequirements, auth, student)
	e.GET("/v1/degree-requirements/autogenerate-schedule", h.AutogenerateSchedule, auth, student, limit)
}
