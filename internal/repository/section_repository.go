package repository

import (
	"context"
	"database/sql"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// SectionRepo reads and writes offered sections. Instructor names and
// meeting times are JSON columns.
type SectionRepo struct {
	db *sql.DB
}

func NewSectionRepo(db *sql.DB) *SectionRepo {
	return &SectionRepo{db: db}
}

// GetAllForSemester returns the sections offered in semester, ordered by id.
func (r *SectionRepo) GetAllForSemester(ctx context.Context, semester string) ([]model.Section, error) {
	const q = `SELECT id, crn, instructor_names, campus_code, description, title, course_code, semester, meeting_times
	           FROM sections WHERE semester = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Section
	for rows.Next() {
		var (
			s                  model.Section
			instructors, times []byte
		)
		if err := rows.Scan(&s.ID, &s.CRN, &instructors, &s.CampusCode, &s.Description, &s.Title,
			&s.CourseCode, &s.Semester, &times); err != nil {
			return nil, err
		}
		if err := decodeJSON(instructors, &s.InstructorNames, "sections.instructor_names"); err != nil {
			return nil, err
		}
		if err := decodeJSON(times, &s.MeetingTimes, "sections.meeting_times"); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a section and sets its id.
func (r *SectionRepo) Create(ctx context.Context, s *model.Section) error {
	instructors, err := encodeJSON(s.InstructorNames)
	if err != nil {
		return err
	}
	times, err := encodeJSON(s.MeetingTimes)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sections (crn, instructor_names, campus_code, description, title, course_code, semester, meeting_times)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CRN, instructors, s.CampusCode, s.Description, s.Title, s.CourseCode, s.Semester, times)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}
