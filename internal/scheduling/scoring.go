package scheduling

import (
	"strconv"
	"strings"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// upperDivision is the first course number treated as upper division by the
// major-affinity penalty.
const upperDivision = 3000

// CourseScores is the output of ScoreCourses.  Order lists every scored
// course in the order it was first scored; map iteration is never used to
// order results.
type CourseScores struct {
	Scores   map[model.CourseCode]int
	Fulfills map[model.CourseCode][]string
	Order    []model.CourseCode
}

// Score returns the score of code and whether it was scored at all.
func (cs CourseScores) Score(code model.CourseCode) (int, bool) {
	v, ok := cs.Scores[code]
	return v, ok
}

func (cs *CourseScores) add(code model.CourseCode, delta int) {
	if _, ok := cs.Scores[code]; !ok {
		cs.Order = append(cs.Order, code)
	}
	cs.Scores[code] += delta
}

// ScoreCourses assigns each course a priority for the student's unmet
// requirements:
//
//   - a course that can fulfil an unmet requirement gets +1 per requirement;
//   - every course feeding such a course's prerequisites gets +1;
//   - members of an equivalency group share the sum of their scores;
//   - upper-division courses outside the degree's major lose the maximum
//     score so they sort after everything else.
//
// Fulfills records, per candidate course, the labels of the unmet
// requirements it can fulfil, in requirement order.
func ScoreCourses(degree model.Degree, requirements []model.DegreeRequirement, taken, all []model.Course, equivalencies [][]model.CourseCode) CourseScores {
	cs := CourseScores{
		Scores:   make(map[model.CourseCode]int),
		Fulfills: make(map[model.CourseCode][]string),
	}

	for _, req := range model.UnmetRequirements(requirements, taken) {
		for _, course := range req.UntakenSatisfying(all, taken) {
			cs.Fulfills[course.CourseCode] = append(cs.Fulfills[course.CourseCode], req.Label)
			for _, prereq := range model.FilterPrerequisiteCourses(course.Prerequisites, all) {
				cs.add(prereq.CourseCode, 1)
			}
			cs.add(course.CourseCode, 1)
		}
	}

	foldEquivalencies(&cs, equivalencies)
	applyMajorPenalty(&cs, degree.PrimaryMajorCode)
	return cs
}

// foldEquivalencies gives every member of an equivalency group the sum of
// the group's scores.  A course listed in several groups belongs to the last
// one.  Sums are taken before any score is rewritten.
func foldEquivalencies(cs *CourseScores, groups [][]model.CourseCode) {
	groupOf := make(map[model.CourseCode]int)
	var members []model.CourseCode
	for i, group := range groups {
		for _, code := range group {
			if _, seen := groupOf[code]; !seen {
				members = append(members, code)
			}
			groupOf[code] = i
		}
	}

	sums := make(map[int]int, len(groups))
	for _, code := range members {
		if v, ok := cs.Scores[code]; ok {
			sums[groupOf[code]] += v
		}
	}
	for _, code := range members {
		sum := sums[groupOf[code]]
		if sum <= 0 {
			continue
		}
		if _, ok := cs.Scores[code]; !ok {
			cs.Order = append(cs.Order, code)
		}
		cs.Scores[code] = sum
	}
}

func applyMajorPenalty(cs *CourseScores, primaryMajor string) {
	if len(cs.Order) == 0 {
		return
	}
	maxScore := cs.Scores[cs.Order[0]]
	for _, code := range cs.Order[1:] {
		maxScore = max(maxScore, cs.Scores[code])
	}
	for _, code := range cs.Order {
		n, err := strconv.Atoi(strings.ReplaceAll(code.CourseNumber, "X", ""))
		if err != nil {
			continue
		}
		if n >= upperDivision && code.MajorCode != primaryMajor {
			cs.Scores[code] -= maxScore
		}
	}
}
