package model

import (
	"strings"
	"time"
)

// Instructor is a professor as imported from the ratings site.  RMPRating
// is nil when the site has no rating for them.
type Instructor struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	RMPRating     *float64 `json:"rmp_rating,omitempty"`
	RMPNumRatings *int     `json:"rmp_num_ratings,omitempty"`
	RMPURL        string   `json:"rmp_url,omitempty"`
	Department    string   `json:"department,omitempty"`
}

// Rating is a student-submitted review of an instructor or course.
type Rating struct {
	ID             int64     `json:"id"`
	CourseID       *int64    `json:"course_id,omitempty"`
	InstructorID   *int64    `json:"instructor_id,omitempty"`
	StudentID      int64     `json:"student_id"`
	Value          float64   `json:"rating_value"`
	Description    string    `json:"description"`
	Difficulty     *float64  `json:"difficulty,omitempty"`
	WouldTakeAgain *bool     `json:"would_take_again,omitempty"`
	Grade          string    `json:"grade,omitempty"`
	Attendance     string    `json:"attendance,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// InstructorRatings maps a normalized instructor name to a 0-5 rating.
type InstructorRatings map[string]float64

// NormalizeInstructorName is the key form used by InstructorRatings.
func NormalizeInstructorName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds the rating for name, ignoring case and surrounding spaces.
func (r InstructorRatings) Lookup(name string) (float64, bool) {
	v, ok := r[NormalizeInstructorName(name)]
	return v, ok
}
