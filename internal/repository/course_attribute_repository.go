package repository

import (
	"context"
	"database/sql"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// CourseAttributeRepo reads the course_attributes table.
type CourseAttributeRepo struct {
	db *sql.DB
}

func NewCourseAttributeRepo(db *sql.DB) *CourseAttributeRepo {
	return &CourseAttributeRepo{db: db}
}

// GetAll returns every attribute ordered by id.
func (r *CourseAttributeRepo) GetAll(ctx context.Context) ([]model.CourseAttribute, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, degree_works_label, courses_at_slu_label FROM course_attributes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CourseAttribute
	for rows.Next() {
		var a model.CourseAttribute
		if err := rows.Scan(&a.ID, &a.Name, &a.DegreeWorksLabel, &a.CoursesAtSLULabel); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts an attribute and sets its id.
func (r *CourseAttributeRepo) Create(ctx context.Context, a *model.CourseAttribute) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO course_attributes (name, degree_works_label, courses_at_slu_label) VALUES (?, ?, ?)",
		a.Name, a.DegreeWorksLabel, a.CoursesAtSLULabel)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}
