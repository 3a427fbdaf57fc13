package model

import (
	"strconv"
	"strings"
)

// CourseCode identifies a course by its major and catalog number, e.g.
// CSCI 1300.  It is comparable and is used directly as a map key by the
// scheduling engine.
//
// Fields:
//  MajorCode    – subject area code (CSCI, MATH, CORE).
//  CourseNumber – catalog number; usually numeric but may carry a suffix
//                 letter such as 4999X.
type CourseCode struct {
	MajorCode    string `json:"major_code" yaml:"major_code"`
	CourseNumber string `json:"course_number" yaml:"course_number"`
}

// String renders the code the way sections refer to their course ("CSCI 1300").
func (c CourseCode) String() string {
	return c.MajorCode + " " + c.CourseNumber
}

// Number parses the catalog number as an integer.  The second return value
// is false for numbers such as "4999X".
func (c CourseCode) Number() (int, bool) {
	return parseCourseNumber(c.CourseNumber)
}

// Less orders codes by major and then by catalog number, numerically when
// both numbers parse.
func (c CourseCode) Less(o CourseCode) bool {
	if c.MajorCode != o.MajorCode {
		return c.MajorCode < o.MajorCode
	}
	a, okA := c.Number()
	b, okB := o.Number()
	if okA && okB && a != b {
		return a < b
	}
	return c.CourseNumber < o.CourseNumber
}

// ParseCourseCode splits "CSCI 1300" into its major and number.  The split
// happens at the last run of whitespace so that multi-word majors survive.
func ParseCourseCode(s string) (CourseCode, bool) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexAny(s, " \t")
	if i <= 0 || i == len(s)-1 {
		return CourseCode{}, false
	}
	return CourseCode{
		MajorCode:    strings.TrimSpace(s[:i]),
		CourseNumber: strings.TrimSpace(s[i+1:]),
	}, true
}

func parseCourseNumber(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// CourseAttribute is a named tag such as "Writing Intensive" that can be
// attached to courses.  DegreeWorksLabel is the label used by degree audit
// rules; CoursesAtSLULabel is the label shown in the course catalog.
type CourseAttribute struct {
	ID                int64  `json:"id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	DegreeWorksLabel  string `json:"degree_works_label" yaml:"degree_works_label"`
	CoursesAtSLULabel string `json:"courses_at_slu_label" yaml:"courses_at_slu_label"`
}

// Course is a catalog course.  Attributes holds the resolved form of
// AttributeIDs and is filled in by the caller before the course reaches the
// scheduling engine.  A nil Prerequisites tree means the course has none.
type Course struct {
	ID int64
	CourseCode
	Title         string
	AttributeIDs  []int64
	Attributes    []CourseAttribute
	Prerequisites PrerequisiteNode
}

// Code returns the course's identity.
func (c Course) Code() CourseCode { return c.CourseCode }

// HasAttribute reports whether any resolved attribute carries the given
// degree audit label or name.
func (c Course) HasAttribute(name string) bool {
	for _, a := range c.Attributes {
		if a.DegreeWorksLabel == name || a.Name == name {
			return true
		}
	}
	return false
}

// ResolveAttributes fills Attributes from AttributeIDs using the given
// lookup.  Unknown ids are skipped.
func (c *Course) ResolveAttributes(byID map[int64]CourseAttribute) {
	c.Attributes = c.Attributes[:0:0]
	for _, id := range c.AttributeIDs {
		if a, ok := byID[id]; ok {
			c.Attributes = append(c.Attributes, a)
		}
	}
}

// CourseSet is a set of course codes.
type CourseSet map[CourseCode]struct{}

// NewCourseSet builds a set from the codes of the given courses.
func NewCourseSet(courses []Course) CourseSet {
	s := make(CourseSet, len(courses))
	for _, c := range courses {
		s[c.CourseCode] = struct{}{}
	}
	return s
}

// Has reports whether code is in the set.
func (s CourseSet) Has(code CourseCode) bool {
	_, ok := s[code]
	return ok
}
