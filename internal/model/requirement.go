package model

import (
	"encoding/json"
	"fmt"
)

// CourseRuleMatcher selects courses for a requirement.  The set of
// implementations is closed: ExactCode, NumberRange and HasAttribute.
type CourseRuleMatcher interface {
	courseRuleMatcher()
}

// ExactCode matches one course.
type ExactCode struct {
	MajorCode    string
	CourseNumber string
}

// NumberRange matches courses of MajorCode numbered Start through End.
type NumberRange struct {
	MajorCode string
	Start     string
	End       string
}

// HasAttribute matches courses carrying any of the named attributes.
type HasAttribute struct {
	AttributeNames []string
}

func (ExactCode) courseRuleMatcher()    {}
func (NumberRange) courseRuleMatcher()  {}
func (HasAttribute) courseRuleMatcher() {}

// MatchesCode reports whether code is the matcher's course.
func (e ExactCode) MatchesCode(code CourseCode) bool {
	return e.MajorCode == code.MajorCode && e.CourseNumber == code.CourseNumber
}

// MatchesCourse evaluates one matcher against a course.
func MatchesCourse(m CourseRuleMatcher, c Course) bool {
	switch m := m.(type) {
	case ExactCode:
		return m.MatchesCode(c.CourseCode)
	case NumberRange:
		if c.MajorCode != m.MajorCode {
			return false
		}
		start, okStart := parseCourseNumber(m.Start)
		end, okEnd := parseCourseNumber(m.End)
		n, okN := c.Number()
		if !okStart || !okEnd || !okN {
			return c.CourseNumber == m.Start
		}
		return start <= n && n <= end
	case HasAttribute:
		for _, name := range m.AttributeNames {
			if c.HasAttribute(name) {
				return true
			}
		}
	}
	return false
}

// CourseRule is satisfied by a course that matches at least one matcher and
// none of the exclusions.
type CourseRule struct {
	Matchers []CourseRuleMatcher
	Exclude  []ExactCode
}

// SatisfiedBy reports whether course counts toward the rule.
func (r CourseRule) SatisfiedBy(c Course) bool {
	for _, ex := range r.Exclude {
		if ex.MatchesCode(c.CourseCode) {
			return false
		}
	}
	for _, m := range r.Matchers {
		if MatchesCourse(m, c) {
			return true
		}
	}
	return false
}

// Filter returns the courses satisfying the rule, in input order.
func (r CourseRule) Filter(courses []Course) []Course {
	var out []Course
	for _, c := range courses {
		if r.SatisfiedBy(c) {
			out = append(out, c)
		}
	}
	return out
}

// DegreeRequirement asks for Needed courses satisfying Rule.  Label is
// unique within a degree.
type DegreeRequirement struct {
	Label  string     `json:"label"`
	Needed int        `json:"needed"`
	Rule   CourseRule `json:"course_rules"`
}

// SatisfiedBy reports whether at least Needed of the taken courses match.
// A requirement needing nothing is always satisfied.
func (r DegreeRequirement) SatisfiedBy(taken []Course) bool {
	return r.CountSatisfying(taken) >= r.Needed
}

// CountSatisfying counts the taken courses that match the rule.
func (r DegreeRequirement) CountSatisfying(taken []Course) int {
	count := 0
	for _, c := range taken {
		if r.Rule.SatisfiedBy(c) {
			count++
		}
	}
	return count
}

// UntakenSatisfying returns the courses of all that are not taken and match
// the rule, in the order of all.
func (r DegreeRequirement) UntakenSatisfying(all, taken []Course) []Course {
	takenSet := NewCourseSet(taken)
	var out []Course
	for _, c := range all {
		if takenSet.Has(c.CourseCode) {
			continue
		}
		if r.Rule.SatisfiedBy(c) {
			out = append(out, c)
		}
	}
	return out
}

type matcherJSON struct {
	Type            string   `json:"$type"`
	MajorCode       string   `json:"major_code,omitempty"`
	CourseNumber    string   `json:"course_number,omitempty"`
	EndCourseNumber string   `json:"end_course_number,omitempty"`
	AttributeNames  []string `json:"attribute_names,omitempty"`
}

type courseRuleJSON struct {
	Courses []matcherJSON `json:"courses"`
	Exclude []matcherJSON `json:"exclude"`
}

// MarshalJSON encodes the rule with a "$type" discriminator per matcher.
func (r CourseRule) MarshalJSON() ([]byte, error) {
	out := courseRuleJSON{Courses: []matcherJSON{}, Exclude: []matcherJSON{}}
	for _, m := range r.Matchers {
		switch m := m.(type) {
		case ExactCode:
			out.Courses = append(out.Courses, matcherJSON{Type: "code", MajorCode: m.MajorCode, CourseNumber: m.CourseNumber})
		case NumberRange:
			out.Courses = append(out.Courses, matcherJSON{Type: "range", MajorCode: m.MajorCode, CourseNumber: m.Start, EndCourseNumber: m.End})
		case HasAttribute:
			out.Courses = append(out.Courses, matcherJSON{Type: "attribute", AttributeNames: m.AttributeNames})
		default:
			return nil, fmt.Errorf("unknown course matcher %T", m)
		}
	}
	for _, ex := range r.Exclude {
		out.Exclude = append(out.Exclude, matcherJSON{Type: "code", MajorCode: ex.MajorCode, CourseNumber: ex.CourseNumber})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (r *CourseRule) UnmarshalJSON(data []byte) error {
	var in courseRuleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rule := CourseRule{}
	for _, m := range in.Courses {
		switch m.Type {
		case "code":
			rule.Matchers = append(rule.Matchers, ExactCode{MajorCode: m.MajorCode, CourseNumber: m.CourseNumber})
		case "range":
			rule.Matchers = append(rule.Matchers, NumberRange{MajorCode: m.MajorCode, Start: m.CourseNumber, End: m.EndCourseNumber})
		case "attribute":
			rule.Matchers = append(rule.Matchers, HasAttribute{AttributeNames: m.AttributeNames})
		default:
			return fmt.Errorf("unknown course matcher type %q", m.Type)
		}
	}
	for _, ex := range in.Exclude {
		rule.Exclude = append(rule.Exclude, ExactCode{MajorCode: ex.MajorCode, CourseNumber: ex.CourseNumber})
	}
	*r = rule
	return nil
}
