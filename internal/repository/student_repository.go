package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// StudentRepo persists student profiles. Course id lists and time slots
// are JSON columns.
type StudentRepo struct {
	db *sql.DB
}

func NewStudentRepo(db *sql.DB) *StudentRepo {
	return &StudentRepo{db: db}
}

// GetByID fetches a student. It returns ErrNotFound if no row matches.
func (r *StudentRepo) GetByID(ctx context.Context, id int64) (model.Student, error) {
	const q = `SELECT id, name, degree_id, graduation_year, completed_course_ids, desired_course_ids,
	                  unavailability_times, avoid_times
	           FROM students WHERE id = ?`
	var (
		s                         model.Student
		completed, desired        []byte
		unavailability, avoidance []byte
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.DegreeID, &s.GraduationYear,
		&completed, &desired, &unavailability, &avoidance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Student{}, ErrNotFound
		}
		return model.Student{}, err
	}
	for _, col := range []struct {
		raw  []byte
		dst  any
		name string
	}{
		{completed, &s.CompletedCourseIDs, "students.completed_course_ids"},
		{desired, &s.DesiredCourseIDs, "students.desired_course_ids"},
		{unavailability, &s.UnavailabilityTimes, "students.unavailability_times"},
		{avoidance, &s.AvoidTimes, "students.avoid_times"},
	} {
		if err := decodeJSON(col.raw, col.dst, col.name); err != nil {
			return model.Student{}, err
		}
	}
	return s, nil
}

// Save inserts the student when s.ID is zero and updates it otherwise. On
// insert s.ID receives the generated id. Updating a missing row returns
// ErrNotFound.
func (r *StudentRepo) Save(ctx context.Context, s *model.Student) error {
	cols := make([]any, 0, 8)
	for _, v := range []any{s.CompletedCourseIDs, s.DesiredCourseIDs, s.UnavailabilityTimes, s.AvoidTimes} {
		enc, err := encodeJSON(emptyIfNil(v))
		if err != nil {
			return err
		}
		cols = append(cols, enc)
	}

	if s.ID == 0 {
		args := append([]any{s.Name, s.DegreeID, s.GraduationYear}, cols...)
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO students (name, degree_id, graduation_year, completed_course_ids, desired_course_ids,
			                       unavailability_times, avoid_times)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`, args...)
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

	args := append([]any{s.Name, s.DegreeID, s.GraduationYear}, cols...)
	args = append(args, s.ID)
	res, err := r.db.ExecContext(ctx,
		`UPDATE students
		 SET name = ?, degree_id = ?, graduation_year = ?, completed_course_ids = ?, desired_course_ids = ?,
		     unavailability_times = ?, avoid_times = ?
		 WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// MySQL reports zero affected rows when nothing changed.
	var exists int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM students WHERE id = ?", s.ID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return nil
}

// emptyIfNil keeps nil slices from being stored as JSON null.
func emptyIfNil(v any) any {
	switch t := v.(type) {
	case []int64:
		if t == nil {
			return []int64{}
		}
	case []model.TimeSlot:
		if t == nil {
			return []model.TimeSlot{}
		}
	}
	return v
}
