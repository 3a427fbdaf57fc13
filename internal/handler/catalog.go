package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/middleware"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/service"
)

// DegreeLister lists the degrees a student can pick on their profile.
type DegreeLister interface {
	GetAll(ctx context.Context) ([]model.Degree, error)
}

// CatalogHandler serves the public course, section, degree, instructor and
// rating listings.  Students, when set, lets GetRatings recognise the
// caller's own ratings.
type CatalogHandler struct {
	Schedule *service.ScheduleService
	Degrees  DegreeLister
	Students middleware.StudentLoader
}

// CourseView is a catalog course as returned to clients.
type CourseView struct {
	ID            int64           `json:"id"`
	MajorCode     string          `json:"major_code"`
	CourseNumber  string          `json:"course_number"`
	Title         string          `json:"title"`
	Attributes    []string        `json:"attributes"`
	Prerequisites json.RawMessage `json:"prerequisites"`
}

func courseView(c model.Course) (CourseView, error) {
	prereq, err := model.MarshalPrerequisite(c.Prerequisites)
	if err != nil {
		return CourseView{}, err
	}
	v := CourseView{
		ID:            c.ID,
		MajorCode:     c.MajorCode,
		CourseNumber:  c.CourseNumber,
		Title:         c.Title,
		Attributes:    []string{},
		Prerequisites: prereq,
	}
	for _, a := range c.Attributes {
		v.Attributes = append(v.Attributes, a.Name)
	}
	return v, nil
}

// GetCourses lists every course with resolved attribute names.
func (h *CatalogHandler) GetCourses(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	courses, err := h.Schedule.Catalog(ctx)
	if err != nil {
		log.Printf("catalog: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load courses failed"})
	}
	out := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		v, err := courseView(course)
		if err != nil {
			log.Printf("catalog: course %d: %v", course.ID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode course failed"})
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

// GetSections lists the sections of ?semester=, or of the configured
// default semester when the parameter is absent.
func (h *CatalogHandler) GetSections(c echo.Context) error {
	semester := c.QueryParam("semester")
	if semester == "" {
		semester = h.Schedule.Settings.DefaultSemester
	}
	if semester == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "semester required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sections, err := h.Schedule.Sections.GetAllForSemester(ctx, semester)
	if err != nil {
		log.Printf("catalog: sections for %s: %v", semester, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load sections failed"})
	}
	if sections == nil {
		sections = []model.Section{}
	}
	return c.JSON(http.StatusOK, sections)
}

// GetDegrees lists the degrees with their requirements.
func (h *CatalogHandler) GetDegrees(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	degrees, err := h.Degrees.GetAll(ctx)
	if err != nil {
		log.Printf("catalog: degrees: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load degrees failed"})
	}
	if degrees == nil {
		degrees = []model.Degree{}
	}
	return c.JSON(http.StatusOK, degrees)
}

// InstructorView is an instructor with their ratings-site details.
type InstructorView struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	RMPRating     *float64 `json:"rmpRating"`
	RMPNumRatings *int     `json:"rmpNumRatings"`
	RMPURL        string   `json:"rmpUrl"`
	Department    string   `json:"department"`
}

// GetInstructors lists every instructor.
func (h *CatalogHandler) GetInstructors(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	instructors, err := h.Schedule.Instructors.GetAll(ctx)
	if err != nil {
		log.Printf("catalog: instructors: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load instructors failed"})
	}
	out := make([]InstructorView, 0, len(instructors))
	for _, in := range instructors {
		out = append(out, InstructorView{
			ID:            in.ID,
			Name:          in.Name,
			RMPRating:     in.RMPRating,
			RMPNumRatings: in.RMPNumRatings,
			RMPURL:        in.RMPURL,
			Department:    in.Department,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// optionalID reads an optional positive id query parameter.
func optionalID(c echo.Context, name string) (*int64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}

// GetRatings lists ratings, optionally narrowed by ?instructor_id= and
// ?course_id=.  A signed-in student sees which ratings they can edit.
func (h *CatalogHandler) GetRatings(c echo.Context) error {
	instructorID, ok := optionalID(c, "instructor_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor_id"})
	}
	courseID, ok := optionalID(c, "course_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course_id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	filter := service.RatingFilter{InstructorID: instructorID, CourseID: courseID}
	if uid, ok := middleware.UserID(c); ok && h.Students != nil {
		st, err := h.Students.ForUser(ctx, uid)
		switch {
		case err == nil:
			filter.ViewerStudentID = st.ID
		case !errors.Is(err, service.ErrNoStudentProfile):
			log.Printf("catalog: ratings viewer %d: %v", uid, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load student failed"})
		}
	}

	out, err := h.Schedule.ListRatings(ctx, filter)
	if err != nil {
		log.Printf("catalog: ratings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ratings failed"})
	}
	return c.JSON(http.StatusOK, out)
}
