// Package service loads scheduling inputs from the repositories, runs the
// scheduling engine and reports what it produced.
package service

import (
	"context"
	"errors"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/queue"
)

// ErrNoStudentProfile is returned when the signed-in user has not created
// a student profile yet.
var ErrNoStudentProfile = errors.New("no student profile")

// The interfaces below are satisfied by the repository types. Tests swap in
// in-memory fakes.

type CourseStore interface {
	GetAll(ctx context.Context) ([]model.Course, error)
}

type CourseFinder interface {
	GetByID(ctx context.Context, id int64) (model.Course, error)
}

type AttributeStore interface {
	GetAll(ctx context.Context) ([]model.CourseAttribute, error)
}

type SectionStore interface {
	GetAllForSemester(ctx context.Context, semester string) ([]model.Section, error)
}

type DegreeStore interface {
	GetByID(ctx context.Context, id int64) (model.Degree, error)
}

type InstructorStore interface {
	GetAll(ctx context.Context) ([]model.Instructor, error)
}

type RatingStore interface {
	GetAll(ctx context.Context) ([]model.Rating, error)
}

type StudentStore interface {
	GetByID(ctx context.Context, id int64) (model.Student, error)
	Save(ctx context.Context, s *model.Student) error
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
	LinkStudent(ctx context.Context, userID, studentID int64) error
}

// EventPublisher sends schedule events to the broker.
type EventPublisher interface {
	PublishScheduleGenerated(ctx context.Context, ev queue.ScheduleGeneratedEvent) error
}
