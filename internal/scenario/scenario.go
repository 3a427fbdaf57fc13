// Package scenario reads offline scheduling scenarios from YAML so the
// engine can be run without a database.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/scheduling"
)

// Scenario is the on-disk form of one scheduling run.  Courses are named by
// "MAJOR NUMBER" everywhere; ids are assigned in file order.
type Scenario struct {
	Semester      string             `yaml:"semester"`
	Campus        string             `yaml:"campus"`
	MaxSections   int                `yaml:"max_sections"`
	Equivalencies [][]string         `yaml:"equivalencies"`
	Attributes    []AttributeDef     `yaml:"attributes"`
	Courses       []CourseDef        `yaml:"courses"`
	Degree        DegreeDef          `yaml:"degree"`
	Student       StudentDef         `yaml:"student"`
	Sections      []SectionDef       `yaml:"sections"`
	Ratings       map[string]float64 `yaml:"ratings"`
	DiscardedCRNs []string           `yaml:"discarded_crns"`
}

type AttributeDef struct {
	Name             string `yaml:"name"`
	DegreeWorksLabel string `yaml:"degree_works_label"`
}

type CourseDef struct {
	Code          string   `yaml:"code"`
	Title         string   `yaml:"title"`
	Prerequisites string   `yaml:"prerequisites"`
	Attributes    []string `yaml:"attributes"`
}

type DegreeDef struct {
	Name             string           `yaml:"name"`
	PrimaryMajorCode string           `yaml:"primary_major_code"`
	Requirements     []RequirementDef `yaml:"requirements"`
}

// RequirementDef lists a requirement's matchers.  Ranges are written
// "CSCI 3000-3999".
type RequirementDef struct {
	Label      string   `yaml:"label"`
	Needed     int      `yaml:"needed"`
	Courses    []string `yaml:"courses"`
	Ranges     []string `yaml:"ranges"`
	Attributes []string `yaml:"attributes"`
	Exclude    []string `yaml:"exclude"`
}

type StudentDef struct {
	Name           string           `yaml:"name"`
	Completed      []string         `yaml:"completed"`
	Desired        []string         `yaml:"desired"`
	Unavailability []model.TimeSlot `yaml:"unavailability"`
	Avoid          []model.TimeSlot `yaml:"avoid"`
}

type SectionDef struct {
	CRN         string              `yaml:"crn"`
	Course      string              `yaml:"course"`
	Title       string              `yaml:"title"`
	Campus      string              `yaml:"campus"`
	Instructors []string            `yaml:"instructors"`
	Meetings    []model.MeetingTime `yaml:"meetings"`
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (Scenario, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Scenario{}, fmt.Errorf("scenario: payload is empty")
	}
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// LoadFile reads and parses a scenario file.
func LoadFile(path string) (Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Scenario{}, fmt.Errorf("scenario: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks the references a scenario makes before it is built.  Every
// course named by a requirement, equivalency, section, student or
// prerequisite must be declared under courses, and every range must be over
// a declared major.
func (sc Scenario) Validate() error {
	if len(sc.Courses) == 0 {
		return fmt.Errorf("scenario: no courses")
	}
	known := make(map[model.CourseCode]bool, len(sc.Courses))
	majors := make(map[string]bool)
	for _, c := range sc.Courses {
		code, ok := model.ParseCourseCode(c.Code)
		if !ok {
			return fmt.Errorf("scenario: bad course code %q", c.Code)
		}
		if known[code] {
			return fmt.Errorf("scenario: duplicate course %s", code)
		}
		known[code] = true
		majors[code.MajorCode] = true
	}
	declared := func(list []string) error {
		for _, s := range list {
			code, ok := model.ParseCourseCode(s)
			if !ok || !known[code] {
				return fmt.Errorf("unknown course %q", s)
			}
		}
		return nil
	}

	for _, c := range sc.Courses {
		tree, err := model.ParsePrerequisiteExpression(c.Prerequisites)
		if err != nil {
			return fmt.Errorf("scenario: course %s: %w", c.Code, err)
		}
		for _, leaf := range model.PrerequisiteLeaves(tree) {
			code := model.CourseCode{MajorCode: leaf.MajorCode, CourseNumber: leaf.CourseNumber}
			ok := known[code]
			if leaf.EndNumber != nil {
				ok = majors[leaf.MajorCode]
			}
			if !ok {
				return fmt.Errorf("scenario: course %s: prerequisite on unknown course %s", c.Code, code)
			}
		}
	}

	labels := make(map[string]bool, len(sc.Degree.Requirements))
	for _, r := range sc.Degree.Requirements {
		if strings.TrimSpace(r.Label) == "" {
			return fmt.Errorf("scenario: requirement without label")
		}
		if labels[r.Label] {
			return fmt.Errorf("scenario: duplicate requirement %q", r.Label)
		}
		labels[r.Label] = true
		if r.Needed < 1 {
			return fmt.Errorf("scenario: requirement %q needs at least one course", r.Label)
		}
		for _, list := range [][]string{r.Courses, r.Exclude} {
			if err := declared(list); err != nil {
				return fmt.Errorf("scenario: requirement %q: %w", r.Label, err)
			}
		}
		for _, s := range r.Ranges {
			rng, ok := parseRange(s)
			if !ok {
				return fmt.Errorf("scenario: requirement %q: bad range %q", r.Label, s)
			}
			if !majors[rng.MajorCode] {
				return fmt.Errorf("scenario: requirement %q: range over unknown major %q", r.Label, rng.MajorCode)
			}
		}
	}

	for _, group := range sc.Equivalencies {
		if err := declared(group); err != nil {
			return fmt.Errorf("scenario: equivalencies: %w", err)
		}
	}
	for _, list := range [][]string{sc.Student.Completed, sc.Student.Desired} {
		if err := declared(list); err != nil {
			return fmt.Errorf("scenario: student: %w", err)
		}
	}
	for _, s := range sc.Sections {
		if strings.TrimSpace(s.CRN) == "" {
			return fmt.Errorf("scenario: section of %s without crn", s.Course)
		}
		if err := declared([]string{s.Course}); err != nil {
			return fmt.Errorf("scenario: section %s: %w", s.CRN, err)
		}
	}
	return nil
}

// parseRange reads "CSCI 3000-3999".
func parseRange(s string) (model.NumberRange, bool) {
	code, ok := model.ParseCourseCode(s)
	if !ok {
		return model.NumberRange{}, false
	}
	start, end, found := strings.Cut(code.CourseNumber, "-")
	if !found || start == "" || end == "" {
		return model.NumberRange{}, false
	}
	return model.NumberRange{MajorCode: code.MajorCode, Start: start, End: end}, true
}

// Request builds the engine input described by the scenario.
func (sc Scenario) Request() (scheduling.Request, error) {
	attrs := make(map[string]model.CourseAttribute, len(sc.Attributes))
	byID := make(map[int64]model.CourseAttribute, len(sc.Attributes))
	for i, a := range sc.Attributes {
		attr := model.CourseAttribute{ID: int64(i + 1), Name: a.Name, DegreeWorksLabel: a.DegreeWorksLabel}
		attrs[a.Name] = attr
		byID[attr.ID] = attr
	}

	courses := make([]model.Course, 0, len(sc.Courses))
	ids := make(map[model.CourseCode]int64, len(sc.Courses))
	for i, def := range sc.Courses {
		code, _ := model.ParseCourseCode(def.Code)
		tree, err := model.ParsePrerequisiteExpression(def.Prerequisites)
		if err != nil {
			return scheduling.Request{}, fmt.Errorf("scenario: course %s: %w", code, err)
		}
		c := model.Course{ID: int64(i + 1), CourseCode: code, Title: def.Title, Prerequisites: tree}
		for _, name := range def.Attributes {
			a, ok := attrs[name]
			if !ok {
				return scheduling.Request{}, fmt.Errorf("scenario: course %s: unknown attribute %q", code, name)
			}
			c.AttributeIDs = append(c.AttributeIDs, a.ID)
		}
		c.ResolveAttributes(byID)
		courses = append(courses, c)
		ids[code] = c.ID
	}

	degree, err := sc.Degree.build()
	if err != nil {
		return scheduling.Request{}, err
	}

	student := model.Student{
		Name:                sc.Student.Name,
		CompletedCourseIDs:  codeIDs(sc.Student.Completed, ids),
		DesiredCourseIDs:    codeIDs(sc.Student.Desired, ids),
		UnavailabilityTimes: sc.Student.Unavailability,
		AvoidTimes:          sc.Student.Avoid,
	}

	var equivalencies [][]model.CourseCode
	for _, group := range sc.Equivalencies {
		codes, err := parseCodes(group)
		if err != nil {
			return scheduling.Request{}, fmt.Errorf("scenario: equivalencies: %w", err)
		}
		equivalencies = append(equivalencies, codes)
	}

	ratings := make(model.InstructorRatings, len(sc.Ratings))
	for name, v := range sc.Ratings {
		ratings[model.NormalizeInstructorName(name)] = v
	}

	discard := make(map[string]bool, len(sc.DiscardedCRNs))
	for _, crn := range sc.DiscardedCRNs {
		discard[crn] = true
	}
	sections := make([]model.Section, 0, len(sc.Sections))
	var discarded []int64
	for i, def := range sc.Sections {
		s := model.Section{
			ID:              int64(i + 1),
			CRN:             def.CRN,
			CourseCode:      def.Course,
			Title:           def.Title,
			CampusCode:      def.Campus,
			Semester:        sc.Semester,
			InstructorNames: def.Instructors,
			MeetingTimes:    def.Meetings,
		}
		if discard[s.CRN] {
			discarded = append(discarded, s.ID)
		}
		sections = append(sections, s)
	}

	return scheduling.Request{
		Degree:              degree,
		Student:             student,
		Taken:               model.CoursesByID(courses, student.CompletedCourseIDs),
		AllCourses:          courses,
		Sections:            sections,
		Equivalencies:       equivalencies,
		Unavailability:      student.UnavailabilityTimes,
		Avoid:               student.AvoidTimes,
		Ratings:             ratings,
		DiscardedSectionIDs: discarded,
		Campus:              sc.Campus,
		MaxSections:         sc.MaxSections,
	}, nil
}

func (d DegreeDef) build() (model.Degree, error) {
	degree := model.Degree{Name: d.Name, PrimaryMajorCode: d.PrimaryMajorCode}
	for _, r := range d.Requirements {
		rule := model.CourseRule{}
		codes, err := parseCodes(r.Courses)
		if err != nil {
			return model.Degree{}, fmt.Errorf("scenario: requirement %q: %w", r.Label, err)
		}
		for _, c := range codes {
			rule.Matchers = append(rule.Matchers, model.ExactCode{MajorCode: c.MajorCode, CourseNumber: c.CourseNumber})
		}
		for _, s := range r.Ranges {
			rng, ok := parseRange(s)
			if !ok {
				return model.Degree{}, fmt.Errorf("scenario: requirement %q: bad range %q", r.Label, s)
			}
			rule.Matchers = append(rule.Matchers, rng)
		}
		if len(r.Attributes) > 0 {
			rule.Matchers = append(rule.Matchers, model.HasAttribute{AttributeNames: r.Attributes})
		}
		excl, err := parseCodes(r.Exclude)
		if err != nil {
			return model.Degree{}, fmt.Errorf("scenario: requirement %q: %w", r.Label, err)
		}
		for _, c := range excl {
			rule.Exclude = append(rule.Exclude, model.ExactCode{MajorCode: c.MajorCode, CourseNumber: c.CourseNumber})
		}
		degree.Requirements = append(degree.Requirements, model.DegreeRequirement{Label: r.Label, Needed: r.Needed, Rule: rule})
	}
	return degree, nil
}

func parseCodes(list []string) ([]model.CourseCode, error) {
	out := make([]model.CourseCode, 0, len(list))
	for _, s := range list {
		code, ok := model.ParseCourseCode(s)
		if !ok {
			return nil, fmt.Errorf("bad course code %q", s)
		}
		out = append(out, code)
	}
	return out, nil
}

// codeIDs maps course codes to ids; Validate has already rejected unknown
// codes.
func codeIDs(list []string, ids map[model.CourseCode]int64) []int64 {
	out := make([]int64, 0, len(list))
	for _, s := range list {
		code, _ := model.ParseCourseCode(s)
		out = append(out, ids[code])
	}
	return out
}
