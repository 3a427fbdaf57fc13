package model

import (
	"strconv"
	"strings"
)

// MeetingTime is one weekly meeting of a section.  Times are HHMM strings;
// "0930" and "9:30" are the same time.
type MeetingTime struct {
	Day       int    `json:"day" yaml:"day"`
	StartTime string `json:"start_time" yaml:"start_time"`
	EndTime   string `json:"end_time" yaml:"end_time"`
}

// Overlaps reports whether two meetings share a day and a non-empty stretch
// of time.  Meetings whose times do not parse never overlap.
func (m MeetingTime) Overlaps(o MeetingTime) bool {
	return rangesOverlap(m.Day, m.StartTime, m.EndTime, o.Day, o.StartTime, o.EndTime)
}

// Section is an offered instance of a course in a semester.  CourseCode is
// the "MAJOR NUMBER" text of its course.
type Section struct {
	ID              int64         `json:"id"`
	CRN             string        `json:"crn"`
	InstructorNames []string      `json:"instructor_names"`
	CampusCode      string        `json:"campus_code"`
	Description     string        `json:"description"`
	Title           string        `json:"title"`
	CourseCode      string        `json:"course_code"`
	Semester        string        `json:"semester"`
	MeetingTimes    []MeetingTime `json:"meeting_times"`
}

// Code parses the section's course code.
func (s Section) Code() (CourseCode, bool) {
	return ParseCourseCode(s.CourseCode)
}

// Overlaps reports whether any meeting of s overlaps any meeting of other.
func (s Section) Overlaps(other Section) bool {
	for _, a := range s.MeetingTimes {
		for _, b := range other.MeetingTimes {
			if a.Overlaps(b) {
				return true
			}
		}
	}
	return false
}

// OverlapsAny reports whether any meeting of s overlaps one of the slots.
func (s Section) OverlapsAny(slots []TimeSlot) bool {
	for _, m := range s.MeetingTimes {
		for _, ts := range slots {
			if rangesOverlap(m.Day, m.StartTime, m.EndTime, ts.Day, ts.Start, ts.End) {
				return true
			}
		}
	}
	return false
}

func rangesOverlap(dayA int, startA, endA string, dayB int, startB, endB string) bool {
	if dayA != dayB {
		return false
	}
	sa, ok1 := ParseHHMM(startA)
	ea, ok2 := ParseHHMM(endA)
	sb, ok3 := ParseHHMM(startB)
	eb, ok4 := ParseHHMM(endB)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return max(sa, sb) < min(ea, eb)
}

// ParseHHMM normalizes a clock time to its four-digit HHMM integer.  The
// colon is optional and short values are zero padded, so "9:30", "930" and
// "0930" all yield 930.
func ParseHHMM(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	if s == "" || len(s) > 4 {
		return 0, false
	}
	s = strings.Repeat("0", 4-len(s)) + s
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
