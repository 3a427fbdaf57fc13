package scheduling

import (
	"sort"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// AvoidPenalty is subtracted from a section that meets during one of the
// student's avoid slots.
const AvoidPenalty = 10

// RankedSection is a candidate section with its ranking score and the labels
// of the requirements its course can fulfil.
type RankedSection struct {
	Section  model.Section
	Code     model.CourseCode
	Score    float64
	Fulfills []string
}

// RankInput gathers what RankSections needs besides the course scores.
type RankInput struct {
	Sections       []model.Section
	Taken          []model.Course
	AllCourses     []model.Course
	Unavailability []model.TimeSlot
	Avoid          []model.TimeSlot
	Ratings        model.InstructorRatings
}

// RankSections turns course scores into an ordered candidate list.
//
// Sections are dropped when their course is unscored or already taken, when
// they meet during an unavailability slot, or when their course's
// prerequisites are not met.  The remaining sections are ordered by score,
// highest first; ties go to the lower course code, then the lower CRN, then
// the earlier input position.
func RankSections(scores CourseScores, in RankInput) []RankedSection {
	takenSet := model.NewCourseSet(in.Taken)
	byCode := make(map[model.CourseCode]model.Course, len(in.AllCourses))
	for _, c := range in.AllCourses {
		if _, ok := byCode[c.CourseCode]; !ok {
			byCode[c.CourseCode] = c
		}
	}

	var ranked []RankedSection
	for _, sec := range in.Sections {
		code, ok := sec.Code()
		if !ok {
			continue
		}
		courseScore, ok := scores.Score(code)
		if !ok || takenSet.Has(code) {
			continue
		}
		if sec.OverlapsAny(in.Unavailability) {
			continue
		}
		if course, ok := byCode[code]; ok && !model.PrerequisitesSatisfied(course.Prerequisites, takenSet) {
			continue
		}

		score := float64(courseScore)
		if sec.OverlapsAny(in.Avoid) {
			score -= AvoidPenalty
		}
		if avg, ok := averageRating(sec.InstructorNames, in.Ratings); ok {
			score += avg
		}
		ranked = append(ranked, RankedSection{
			Section:  sec,
			Code:     code,
			Score:    score,
			Fulfills: append([]string(nil), scores.Fulfills[code]...),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Code != b.Code {
			return a.Code.Less(b.Code)
		}
		return a.Section.CRN < b.Section.CRN
	})
	return ranked
}

// averageRating is the mean rating of the instructors found in ratings.
func averageRating(names []string, ratings model.InstructorRatings) (float64, bool) {
	if len(ratings) == 0 {
		return 0, false
	}
	sum, n := 0.0, 0
	for _, name := range names {
		if r, ok := ratings.Lookup(name); ok {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
