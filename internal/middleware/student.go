package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/service"
)

// StudentLoader resolves the student profile of a user.
type StudentLoader interface {
	ForUser(ctx context.Context, userID int64) (model.Student, error)
}

// RequireStudent loads the signed-in user's student profile and stores it
// in the context for CurrentStudent. Users without a profile get 404 so the
// client can send them to the profile form. It must run after JWTAuth.
func RequireStudent(students StudentLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			st, err := students.ForUser(ctx, uid)
			if errors.Is(err, service.ErrNoStudentProfile) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "student profile not found"})
			}
			if err != nil {
				log.Printf("student-middleware: load student for user %d: %v", uid, err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load student failed"})
			}
			c.Set(ctxStudent, st)
			return next(c)
		}
	}
}

// CurrentStudent returns the profile stored by RequireStudent.
func CurrentStudent(c echo.Context) (model.Student, bool) {
	st, ok := c.Get(ctxStudent).(model.Student)
	return st, ok
}
