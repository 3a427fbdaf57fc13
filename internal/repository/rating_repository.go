package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// RatingRepo stores student-submitted instructor and course ratings.
type RatingRepo struct {
	db *sql.DB
}

func NewRatingRepo(db *sql.DB) *RatingRepo {
	return &RatingRepo{db: db}
}

// GetAll returns every rating ordered by id.
func (r *RatingRepo) GetAll(ctx context.Context) ([]model.Rating, error) {
	const q = `SELECT id, course_id, instructor_id, student_id, rating_value, description, difficulty,
	                  would_take_again, grade, attendance, created_at
	           FROM ratings ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rating
	for rows.Next() {
		var (
			rt             model.Rating
			courseID       sql.NullInt64
			instructorID   sql.NullInt64
			difficulty     sql.NullFloat64
			wouldTakeAgain sql.NullBool
			grade          sql.NullString
			attendance     sql.NullString
		)
		if err := rows.Scan(&rt.ID, &courseID, &instructorID, &rt.StudentID, &rt.Value, &rt.Description,
			&difficulty, &wouldTakeAgain, &grade, &attendance, &rt.CreatedAt); err != nil {
			return nil, err
		}
		if courseID.Valid {
			rt.CourseID = &courseID.Int64
		}
		if instructorID.Valid {
			rt.InstructorID = &instructorID.Int64
		}
		if difficulty.Valid {
			rt.Difficulty = &difficulty.Float64
		}
		if wouldTakeAgain.Valid {
			rt.WouldTakeAgain = &wouldTakeAgain.Bool
		}
		rt.Grade = grade.String
		rt.Attendance = attendance.String
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Create inserts a rating. ID and CreatedAt are filled in on success.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating) error {
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ratings (course_id, instructor_id, student_id, rating_value, description, difficulty,
		                      would_take_again, grade, attendance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.CourseID, rt.InstructorID, rt.StudentID, rt.Value, rt.Description, rt.Difficulty,
		rt.WouldTakeAgain, nullString(rt.Grade), nullString(rt.Attendance), rt.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = id
	return nil
}
