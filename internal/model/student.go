package model

// TimeSlot is a weekly block of time a student wants kept free
// (unavailability) or would rather keep free (avoid).
type TimeSlot struct {
	Day   int    `json:"day" yaml:"day"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Student is the profile a schedule is built for.  Course ids refer to
// Course.ID.
type Student struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	DegreeID            int64      `json:"degree_id"`
	GraduationYear      int        `json:"graduation_year"`
	CompletedCourseIDs  []int64    `json:"completed_course_ids"`
	DesiredCourseIDs    []int64    `json:"desired_course_ids"`
	UnavailabilityTimes []TimeSlot `json:"unavailability_times"`
	AvoidTimes          []TimeSlot `json:"avoid_times"`
}

// CoursesByID picks the courses with the given ids out of all, keeping the
// order of ids.  Unknown ids are skipped.
func CoursesByID(all []Course, ids []int64) []Course {
	byID := make(map[int64]Course, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	var out []Course
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
