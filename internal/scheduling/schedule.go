// Package scheduling builds class schedules that make the most progress
// towards a student's degree.
//
// The pipeline is ScoreCourses, RankSections and SelectSchedule; GetSchedule
// runs all three.  Every function is pure: inputs are read, never modified,
// and nothing is kept between calls.
package scheduling

import (
	"fmt"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// Request holds the inputs of one scheduling run.
//
// Campus, when set, keeps only sections on that campus.  Sections whose id
// is in DiscardedSectionIDs are never offered.  MaxSections of zero means
// MaxScheduleSections.
type Request struct {
	Degree              model.Degree
	Student             model.Student
	Taken               []model.Course
	AllCourses          []model.Course
	Sections            []model.Section
	Equivalencies       [][]model.CourseCode
	Unavailability      []model.TimeSlot
	Avoid               []model.TimeSlot
	Ratings             model.InstructorRatings
	DiscardedSectionIDs []int64
	Campus              string
	MaxSections         int
}

// Result is a schedule together with the intermediate ranking that produced
// it.
type Result struct {
	Schedule     Schedule
	Ranked       []RankedSection
	Scores       CourseScores
	Requirements []model.DegreeRequirement
}

// DesiredLabel is the requirement label given to a desired course.
func DesiredLabel(code model.CourseCode) string {
	return fmt.Sprintf("Desired: %s %s", code.MajorCode, code.CourseNumber)
}

// CombinedRequirements returns the degree's requirements followed by one
// single-course requirement per desired course.  Desired ids missing from
// all are ignored.
func CombinedRequirements(degree model.Degree, student model.Student, all []model.Course) []model.DegreeRequirement {
	reqs := make([]model.DegreeRequirement, 0, len(degree.Requirements)+len(student.DesiredCourseIDs))
	reqs = append(reqs, degree.Requirements...)
	for _, c := range model.CoursesByID(all, student.DesiredCourseIDs) {
		reqs = append(reqs, model.DegreeRequirement{
			Label:  DesiredLabel(c.CourseCode),
			Needed: 1,
			Rule: model.CourseRule{
				Matchers: []model.CourseRuleMatcher{model.ExactCode{MajorCode: c.MajorCode, CourseNumber: c.CourseNumber}},
			},
		})
	}
	return reqs
}

// GetSchedule scores, ranks and selects sections for the request.
func GetSchedule(req Request) Result {
	reqs := CombinedRequirements(req.Degree, req.Student, req.AllCourses)
	scores := ScoreCourses(req.Degree, reqs, req.Taken, req.AllCourses, req.Equivalencies)
	ranked := RankSections(scores, RankInput{
		Sections:       offeredSections(req.Sections, req.Campus, req.DiscardedSectionIDs),
		Taken:          req.Taken,
		AllCourses:     req.AllCourses,
		Unavailability: req.Unavailability,
		Avoid:          req.Avoid,
		Ratings:        req.Ratings,
	})
	sched := SelectSchedule(ranked, NeedRemaining(reqs, req.Taken), req.MaxSections)
	return Result{Schedule: sched, Ranked: ranked, Scores: scores, Requirements: reqs}
}

func offeredSections(sections []model.Section, campus string, discarded []int64) []model.Section {
	skip := make(map[int64]bool, len(discarded))
	for _, id := range discarded {
		skip[id] = true
	}
	out := make([]model.Section, 0, len(sections))
	for _, s := range sections {
		if campus != "" && s.CampusCode != campus {
			continue
		}
		if skip[s.ID] {
			continue
		}
		out = append(out, s)
	}
	return out
}
