package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/queue"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/scheduling"
)

// ScheduleSettings are the deployment-wide scheduling knobs.
type ScheduleSettings struct {
	Campus          string
	DefaultSemester string
	Equivalencies   [][]model.CourseCode
	MaxSections     int
}

// ScheduleService gathers catalog, degree and rating data for a student and
// hands it to the scheduling engine.
type ScheduleService struct {
	Courses     CourseStore
	Attributes  AttributeStore
	Sections    SectionStore
	Degrees     DegreeStore
	Instructors InstructorStore
	Ratings     RatingStore
	Events      EventPublisher // nil disables publishing
	Settings    ScheduleSettings
}

// Catalog returns every course with its attributes resolved.
func (s *ScheduleService) Catalog(ctx context.Context) ([]model.Course, error) {
	courses, err := s.Courses.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	attrs, err := s.Attributes.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load course attributes: %w", err)
	}
	byID := make(map[int64]model.CourseAttribute, len(attrs))
	for _, a := range attrs {
		byID[a.ID] = a
	}
	for i := range courses {
		courses[i].ResolveAttributes(byID)
	}
	return courses, nil
}

// InstructorRatings merges site and student ratings.
func (s *ScheduleService) InstructorRatings(ctx context.Context) (model.InstructorRatings, error) {
	instructors, err := s.Instructors.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instructors: %w", err)
	}
	ratings, err := s.Ratings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	return MergeInstructorRatings(instructors, ratings), nil
}

// RequirementCourses is a requirement together with every catalog course
// that satisfies its rule.
type RequirementCourses struct {
	Requirement model.DegreeRequirement
	Courses     []model.Course
}

// Requirements lists the student's degree requirements followed by one
// requirement per desired course.
func (s *ScheduleService) Requirements(ctx context.Context, student model.Student) ([]RequirementCourses, error) {
	degree, err := s.Degrees.GetByID(ctx, student.DegreeID)
	if err != nil {
		return nil, fmt.Errorf("load degree: %w", err)
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	reqs := scheduling.CombinedRequirements(degree, student, catalog)
	out := make([]RequirementCourses, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, RequirementCourses{Requirement: r, Courses: r.Rule.Filter(catalog)})
	}
	return out, nil
}

// GenerateParams identify one schedule request.
type GenerateParams struct {
	UserID              int64
	Student             model.Student
	Semester            string
	DiscardedSectionIDs []int64
}

// Generate builds a schedule for the student and publishes a
// ScheduleGeneratedEvent in the background.
func (s *ScheduleService) Generate(ctx context.Context, p GenerateParams) (scheduling.Result, error) {
	semester := p.Semester
	if semester == "" {
		semester = s.Settings.DefaultSemester
	}
	degree, err := s.Degrees.GetByID(ctx, p.Student.DegreeID)
	if err != nil {
		return scheduling.Result{}, fmt.Errorf("load degree: %w", err)
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return scheduling.Result{}, err
	}
	sections, err := s.Sections.GetAllForSemester(ctx, semester)
	if err != nil {
		return scheduling.Result{}, fmt.Errorf("load sections: %w", err)
	}
	ratings, err := s.InstructorRatings(ctx)
	if err != nil {
		return scheduling.Result{}, err
	}

	res := scheduling.GetSchedule(scheduling.Request{
		Degree:              degree,
		Student:             p.Student,
		Taken:               model.CoursesByID(catalog, p.Student.CompletedCourseIDs),
		AllCourses:          catalog,
		Sections:            sections,
		Equivalencies:       s.Settings.Equivalencies,
		Unavailability:      p.Student.UnavailabilityTimes,
		Avoid:               p.Student.AvoidTimes,
		Ratings:             ratings,
		DiscardedSectionIDs: p.DiscardedSectionIDs,
		Campus:              s.Settings.Campus,
		MaxSections:         s.Settings.MaxSections,
	})
	log.Printf("schedule-service: student=%d semester=%s ranked=%d scheduled=%d",
		p.Student.ID, semester, len(res.Ranked), len(res.Schedule.Entries))

	if s.Events != nil {
		ev := scheduleEvent(p, degree.ID, semester, res.Schedule)
		go func() {
			pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.Events.PublishScheduleGenerated(pctx, ev); err != nil {
				log.Printf("schedule-service: publish event %s failed: %v", ev.EventID, err)
			}
		}()
	}
	return res, nil
}

func scheduleEvent(p GenerateParams, degreeID int64, semester string, sched scheduling.Schedule) queue.ScheduleGeneratedEvent {
	ev := queue.NewScheduleGeneratedEvent(p.UserID, p.Student.ID, degreeID, semester)
	ev.DiscardedSectionIDs = p.DiscardedSectionIDs
	for _, e := range sched.Entries {
		ev.Sections = append(ev.Sections, queue.ScheduledCourse{
			SectionID:         e.Section.ID,
			CRN:               e.Section.CRN,
			CourseCode:        e.Section.CourseCode,
			RequirementLabels: e.RequirementLabels,
		})
	}
	return ev
}
