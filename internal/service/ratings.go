package service

import (
	"context"
	"fmt"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// MergeInstructorRatings builds the rating lookup used to rank sections.
// An instructor's ratings-site score wins; instructors without one get the
// mean of the student ratings that name them. Instructors with neither are
// left out.
func MergeInstructorRatings(instructors []model.Instructor, ratings []model.Rating) model.InstructorRatings {
	type acc struct {
		sum float64
		n   int
	}
	byInstructor := make(map[int64]*acc)
	for _, r := range ratings {
		if r.InstructorID == nil {
			continue
		}
		a := byInstructor[*r.InstructorID]
		if a == nil {
			a = &acc{}
			byInstructor[*r.InstructorID] = a
		}
		a.sum += r.Value
		a.n++
	}

	out := make(model.InstructorRatings)
	for _, in := range instructors {
		if in.RMPRating != nil {
			out[model.NormalizeInstructorName(in.Name)] = *in.RMPRating
		}
	}
	for _, in := range instructors {
		if in.RMPRating != nil {
			continue
		}
		a := byInstructor[in.ID]
		if a == nil || a.n == 0 {
			continue
		}
		key := model.NormalizeInstructorName(in.Name)
		if _, ok := out[key]; !ok {
			out[key] = a.sum / float64(a.n)
		}
	}
	return out
}

// RatingFilter narrows ListRatings. ViewerStudentID marks the caller's own
// ratings as editable; zero means a guest.
type RatingFilter struct {
	InstructorID    *int64
	CourseID        *int64
	ViewerStudentID int64
}

// RatingEntry is a student rating, or a ratings-site score when IsRMPRating
// is set, with the instructor and course names joined in.
type RatingEntry struct {
	ID             *int64  `json:"id"`
	InstructorID   *int64  `json:"instructorId"`
	CourseID       *int64  `json:"courseId"`
	Rating         float64 `json:"rating"`
	CanEdit        bool    `json:"canEdit"`
	Description    string  `json:"description"`
	IsRMPRating    bool    `json:"isRmpRating"`
	RMPURL         string  `json:"rmpUrl,omitempty"`
	RMPNumRatings  *int    `json:"rmpNumRatings,omitempty"`
	InstructorName string  `json:"instructorName,omitempty"`
	CourseCode     string  `json:"courseCode,omitempty"`
	CourseName     string  `json:"courseName,omitempty"`
}

// ListRatings returns the student ratings matching f in id order, followed
// by the ratings-site score of every rated instructor, or only of
// f.InstructorID when set.
func (s *ScheduleService) ListRatings(ctx context.Context, f RatingFilter) ([]RatingEntry, error) {
	ratings, err := s.Ratings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	instructors, err := s.Instructors.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instructors: %w", err)
	}
	courses, err := s.Courses.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	instructorByID := make(map[int64]model.Instructor, len(instructors))
	for _, in := range instructors {
		instructorByID[in.ID] = in
	}
	courseByID := make(map[int64]model.Course, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = c
	}

	out := []RatingEntry{}
	for _, r := range ratings {
		if !sameID(f.InstructorID, r.InstructorID) || !sameID(f.CourseID, r.CourseID) {
			continue
		}
		id := r.ID
		e := RatingEntry{
			ID:           &id,
			InstructorID: r.InstructorID,
			CourseID:     r.CourseID,
			Rating:       r.Value,
			CanEdit:      f.ViewerStudentID != 0 && r.StudentID == f.ViewerStudentID,
			Description:  r.Description,
		}
		if r.InstructorID != nil {
			e.InstructorName = instructorByID[*r.InstructorID].Name
		}
		if r.CourseID != nil {
			if c, ok := courseByID[*r.CourseID]; ok {
				e.CourseCode = c.CourseCode.String()
				e.CourseName = c.Title
			}
		}
		out = append(out, e)
	}

	for _, in := range instructors {
		if in.RMPRating == nil || (f.InstructorID != nil && *f.InstructorID != in.ID) {
			continue
		}
		id := in.ID
		desc := "RateMyProfessor rating"
		if in.RMPNumRatings != nil {
			desc = fmt.Sprintf("RateMyProfessor rating based on %d reviews", *in.RMPNumRatings)
		}
		out = append(out, RatingEntry{
			InstructorID:   &id,
			Rating:         *in.RMPRating,
			Description:    desc,
			IsRMPRating:    true,
			RMPURL:         in.RMPURL,
			RMPNumRatings:  in.RMPNumRatings,
			InstructorName: in.Name,
		})
	}
	return out, nil
}

// sameID reports whether got passes the filter want; a nil want passes
// everything.
func sameID(want, got *int64) bool {
	return want == nil || (got != nil && *got == *want)
}
