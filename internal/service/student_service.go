package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/repository"
)

// StudentService resolves the student profile behind a signed-in user.
type StudentService struct {
	Users    UserStore
	Students StudentStore
	Courses  CourseFinder
}

// ForUser returns the user's student profile, or ErrNoStudentProfile when
// none has been created.
func (s *StudentService) ForUser(ctx context.Context, userID int64) (model.Student, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return model.Student{}, fmt.Errorf("load user: %w", err)
	}
	if u.StudentID == nil {
		return model.Student{}, ErrNoStudentProfile
	}
	st, err := s.Students.GetByID(ctx, *u.StudentID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Student{}, ErrNoStudentProfile
	}
	if err != nil {
		return model.Student{}, fmt.Errorf("load student: %w", err)
	}
	return st, nil
}

// SaveProfile creates or updates the user's student profile. The id of
// st is ignored; the profile already linked to the user is updated, or a
// new one is created and linked.
func (s *StudentService) SaveProfile(ctx context.Context, userID int64, st model.Student) (model.Student, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return model.Student{}, fmt.Errorf("load user: %w", err)
	}
	st.ID = 0
	if u.StudentID != nil {
		st.ID = *u.StudentID
	}
	if err := s.Students.Save(ctx, &st); err != nil {
		return model.Student{}, fmt.Errorf("save student: %w", err)
	}
	if u.StudentID == nil {
		if err := s.Users.LinkStudent(ctx, userID, st.ID); err != nil {
			return model.Student{}, fmt.Errorf("link student: %w", err)
		}
	}
	return st, nil
}

// AddDesiredCourse adds courseID to the student's desired courses. Unknown
// courses fail with repository.ErrNotFound; a course already desired is
// left as is.
func (s *StudentService) AddDesiredCourse(ctx context.Context, st model.Student, courseID int64) (model.Student, error) {
	if _, err := s.Courses.GetByID(ctx, courseID); err != nil {
		return model.Student{}, fmt.Errorf("load course %d: %w", courseID, err)
	}
	if slices.Contains(st.DesiredCourseIDs, courseID) {
		return st, nil
	}
	st.DesiredCourseIDs = append(slices.Clip(st.DesiredCourseIDs), courseID)
	if err := s.Students.Save(ctx, &st); err != nil {
		return model.Student{}, fmt.Errorf("save student: %w", err)
	}
	return st, nil
}

// RemoveDesiredCourse drops courseID from the student's desired courses.
// Removing a course that is not desired is not an error.
func (s *StudentService) RemoveDesiredCourse(ctx context.Context, st model.Student, courseID int64) (model.Student, error) {
	i := slices.Index(st.DesiredCourseIDs, courseID)
	if i < 0 {
		return st, nil
	}
	st.DesiredCourseIDs = slices.Delete(slices.Clone(st.DesiredCourseIDs), i, i+1)
	if err := s.Students.Save(ctx, &st); err != nil {
		return model.Student{}, fmt.Errorf("save student: %w", err)
	}
	return st, nil
}
