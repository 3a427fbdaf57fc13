package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/middleware"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/repository"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/scheduling"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/service"
)

// RatingCreator stores student ratings.
type RatingCreator interface {
	Create(ctx context.Context, rt *model.Rating) error
}

// StudentHandler serves the signed-in student's profile, requirements and
// generated schedules.
type StudentHandler struct {
	Students *service.StudentService
	Schedule *service.ScheduleService
	Ratings  RatingCreator
}

type userInfoReq struct {
	Name                string           `json:"name"`
	DegreeID            int64            `json:"degree_id"`
	GraduationYear      int              `json:"graduation_year"`
	CompletedCourseIDs  []int64          `json:"completed_course_ids"`
	DesiredCourseIDs    []int64          `json:"desired_course_ids"`
	UnavailabilityTimes []model.TimeSlot `json:"unavailability_times"`
	AvoidTimes          []model.TimeSlot `json:"avoid_times"`
}

// validateSlots checks day and HHMM bounds of time preferences.
func validateSlots(slots []model.TimeSlot) string {
	for _, s := range slots {
		if s.Day < 0 || s.Day > 6 {
			return "day must be between 0 and 6"
		}
		start, okStart := model.ParseHHMM(s.Start)
		end, okEnd := model.ParseHHMM(s.End)
		if !okStart || !okEnd {
			return "times must be HHMM"
		}
		if start >= end {
			return "start must be before end"
		}
	}
	return ""
}

// GetUserInfo returns the student profile loaded by RequireStudent.
func (h *StudentHandler) GetUserInfo(c echo.Context) error {
	st, ok := middleware.CurrentStudent(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "student profile not found"})
	}
	return c.JSON(http.StatusOK, st)
}

// PutUserInfo creates or replaces the signed-in user's student profile.
func (h *StudentHandler) PutUserInfo(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req userInfoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DegreeID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and degree_id required"})
	}
	for _, slots := range [][]model.TimeSlot{req.UnavailabilityTimes, req.AvoidTimes} {
		if msg := validateSlots(slots); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Schedule.Degrees.GetByID(ctx, req.DegreeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown degree"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load degree failed"})
	}
	st, err := h.Students.SaveProfile(ctx, uid, model.Student{
		Name:                req.Name,
		DegreeID:            req.DegreeID,
		GraduationYear:      req.GraduationYear,
		CompletedCourseIDs:  req.CompletedCourseIDs,
		DesiredCourseIDs:    req.DesiredCourseIDs,
		UnavailabilityTimes: req.UnavailabilityTimes,
		AvoidTimes:          req.AvoidTimes,
	})
	if err != nil {
		log.Printf("user-info: save for user %d: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save profile failed"})
	}
	return c.JSON(http.StatusOK, st)
}

type ratingReq struct {
	InstructorID   *int64   `json:"instructor_id"`
	CourseID       *int64   `json:"course_id"`
	Value          float64  `json:"rating_value"`
	Description    string   `json:"description"`
	Difficulty     *float64 `json:"difficulty"`
	WouldTakeAgain *bool    `json:"would_take_again"`
	Grade          string   `json:"grade"`
	Attendance     string   `json:"attendance"`
}

// CreateRating records the student's rating of an instructor or course.
func (h *StudentHandler) CreateRating(c echo.Context) error {
	st, ok := middleware.CurrentStudent(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "student profile not found"})
	}
	var req ratingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.InstructorID == nil && req.CourseID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "instructor_id or course_id required"})
	}
	if req.Value < 0 || req.Value > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating_value must be between 0 and 5"})
	}
	if req.Difficulty != nil && (*req.Difficulty < 0 || *req.Difficulty > 5) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "difficulty must be between 0 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt := model.Rating{
		CourseID:       req.CourseID,
		InstructorID:   req.InstructorID,
		StudentID:      st.ID,
		Value:          req.Value,
		Description:    strings.TrimSpace(req.Description),
		Difficulty:     req.Difficulty,
		WouldTakeAgain: req.WouldTakeAgain,
		Grade:          req.Grade,
		Attendance:     req.Attendance,
	}
	if err := h.Ratings.Create(ctx, &rt); err != nil {
		log.Printf("ratings: create for student %d: %v", st.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save rating failed"})
	}
	return c.JSON(http.StatusCreated, rt)
}

type desiredCourseReq struct {
	CourseID int64 `json:"course_id"`
}

func desiredIDs(st model.Student) []int64 {
	if st.DesiredCourseIDs == nil {
		return []int64{}
	}
	return st.DesiredCourseIDs
}

// AddDesiredCourse adds the course in the body, or in ?course_id=, to the
// student's desired courses and returns the resulting ids.
func (h *StudentHandler) AddDesiredCourse(c echo.Context) error {
	st, ok := middleware.CurrentStudent(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "student profile not found"})
	}
	var req desiredCourseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CourseID == 0 {
		if id, err := strconv.ParseInt(c.QueryParam("course_id"), 10, 64); err == nil {
			req.CourseID = id
		}
	}
	if req.CourseID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "course_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Students.AddDesiredCourse(ctx, st, req.CourseID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}
	if err != nil {
		log.Printf("student-courses: add for student %d: %v", st.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save desired course failed"})
	}
	return c.JSON(http.StatusOK, desiredIDs(updated))
}

// RemoveDesiredCourse drops course :id from the student's desired courses
// and returns the remaining ids.
func (h *StudentHandler) RemoveDesiredCourse(c echo.Context) error {
	st, ok := middleware.CurrentStudent(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "student profile not found"})
	}
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Students.RemoveDesiredCourse(ctx, st, courseID)
	if err != nil {
		log.Printf("student-courses: remove for student %d: %v", st.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save desired course failed"})
	}
	return c.JSON(http.StatusOK, desiredIDs(updated))
}

// RequirementView is one requirement with the catalog courses that count
// toward it.
type RequirementView struct {
	Label                 string   `json:"label"`
	Needed                int      `json:"needed"`
	Completed             int      `json:"completed"`
	Satisfied             bool     `json:"satisfied"`
	SatisfyingCourseCodes []string `json:"satisfyingCourseCodes"`
	SatisfyingCourseIDs   []int64  `json:"satisfyingCourseIds"`
}

// GetDegreeRequirements lists the student's degree requirements and desired
// courses.
func (h *StudentHandler) GetDegreeRequirements(c echo.Context) error {
	st, ok := middleware.CurrentStudent(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "student profile not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reqs, err := h.Schedule.Requirements(ctx, st)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "degree not found"})
	}
	if err != nil {
		log.Printf("degree-requirements: student %d: %v", st.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load requirements failed"})
	}

	var all []model.Course
	for _, r := range reqs {
		all = append(all, r.Courses...)
	}
	taken := model.CoursesByID(all, st.CompletedCourseIDs)

	out := make([]RequirementView, 0, len(reqs))
	for _, r := range reqs {
		v := RequirementView{
			Label:                 r.Requirement.Label,
			Needed:                r.Requirement.Needed,
			Completed:             r.Requirement.CountSatisfying(taken),
			Satisfied:             r.Requirement.SatisfiedBy(taken),
			SatisfyingCourseCodes: make([]string, 0, len(r.Courses)),
			SatisfyingCourseIDs:   make([]int64, 0, len(r.Courses)),
		}
		for _, course := range r.Courses {
			v.SatisfyingCourseCodes = append(v.SatisfyingCourseCodes, course.CourseCode.String())
			v.SatisfyingCourseIDs = append(v.SatisfyingCourseIDs, course.ID)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

// ScheduledSectionView is a chosen section and the requirements it counts
// toward.
type ScheduledSectionView struct {
	model.Section
	RequirementLabels []string `json:"requirementLabels"`
}

// ScheduleView is the autogenerate-schedule response.
type ScheduleView struct {
	Semester            string                 `json:"semester"`
	Sections            []ScheduledSectionView `json:"sections"`
	UnavailabilityTimes []model.TimeSlot       `json:"unavailabilityTimes"`
	AvoidTimes          []model.TimeSlot       `json:"avoidTimes"`
	DiscardedSectionIDs []int64                `json:"discardedSectionIds"`
}

// parseIDList accepts repeated and comma-separated ids:
// ?discarded_section_ids=1,2&discarded_section_ids=3.
func parseIDList(values []string) ([]int64, error) {
	out := []int64{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}

// AutogenerateSchedule builds a schedule for ?semester=, leaving out the
// sections in ?discarded_section_ids=.
func (h *StudentHandler) AutogenerateSchedule(c echo.Context) error {
	st, ok := middleware.CurrentStudent(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "student profile not found"})
	}
	uid, _ := middleware.UserID(c)
	discarded, err := parseIDList(c.QueryParams()["discarded_section_ids"])
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid discarded_section_ids"})
	}
	semester := c.QueryParam("semester")
	if semester == "" {
		semester = h.Schedule.Settings.DefaultSemester
	}
	if semester == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "semester required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Schedule.Generate(ctx, service.GenerateParams{
		UserID:              uid,
		Student:             st,
		Semester:            semester,
		DiscardedSectionIDs: discarded,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "degree not found"})
	}
	if err != nil {
		log.Printf("autogenerate-schedule: student %d: %v", st.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate schedule failed"})
	}
	return c.JSON(http.StatusOK, scheduleView(semester, st, discarded, res.Schedule))
}

func scheduleView(semester string, st model.Student, discarded []int64, sched scheduling.Schedule) ScheduleView {
	v := ScheduleView{
		Semester:            semester,
		Sections:            make([]ScheduledSectionView, 0, len(sched.Entries)),
		UnavailabilityTimes: st.UnavailabilityTimes,
		AvoidTimes:          st.AvoidTimes,
		DiscardedSectionIDs: discarded,
	}
	if v.UnavailabilityTimes == nil {
		v.UnavailabilityTimes = []model.TimeSlot{}
	}
	if v.AvoidTimes == nil {
		v.AvoidTimes = []model.TimeSlot{}
	}
	for _, e := range sched.Entries {
		v.Sections = append(v.Sections, ScheduledSectionView{Section: e.Section, RequirementLabels: e.RequirementLabels})
	}
	return v
}
