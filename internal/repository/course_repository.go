package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// CourseRepo reads and writes the course catalog. Prerequisite trees live in
// the courses.prerequisites JSON column; attribute ids come from the
// course_attribute_links table.
type CourseRepo struct {
	db *sql.DB
}

// NewCourseRepo constructs a CourseRepo with the provided DB handle.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

const courseColumns = "id, major_code, course_number, title, prerequisites"

func scanCourse(sc interface{ Scan(...any) error }) (model.Course, error) {
	var (
		c      model.Course
		prereq []byte
	)
	if err := sc.Scan(&c.ID, &c.MajorCode, &c.CourseNumber, &c.Title, &prereq); err != nil {
		return model.Course{}, err
	}
	tree, err := model.UnmarshalPrerequisite(prereq)
	if err != nil {
		return model.Course{}, fmt.Errorf("course %d: %w", c.ID, err)
	}
	c.Prerequisites = tree
	return c, nil
}

// GetAll returns every course ordered by id, with attribute ids filled in.
func (r *CourseRepo) GetAll(ctx context.Context) ([]model.Course, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+courseColumns+" FROM courses ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := r.attributeLinks(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].AttributeIDs = links[out[i].ID]
	}
	return out, nil
}

// GetByID fetches one course. It returns ErrNotFound if no row matches.
func (r *CourseRepo) GetByID(ctx context.Context, id int64) (model.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx, "SELECT "+courseColumns+" FROM courses WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Course{}, ErrNotFound
		}
		return model.Course{}, err
	}
	links, err := r.attributeLinks(ctx, id)
	if err != nil {
		return model.Course{}, err
	}
	c.AttributeIDs = links[id]
	return c, nil
}

// attributeLinks maps course id to attribute ids. A courseID of zero loads
// the links of every course.
func (r *CourseRepo) attributeLinks(ctx context.Context, courseID int64) (map[int64][]int64, error) {
	q := "SELECT course_id, attribute_id FROM course_attribute_links"
	var args []any
	if courseID != 0 {
		q += " WHERE course_id = ?"
		args = append(args, courseID)
	}
	q += " ORDER BY course_id, attribute_id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var cid, aid int64
		if err := rows.Scan(&cid, &aid); err != nil {
			return nil, err
		}
		out[cid] = append(out[cid], aid)
	}
	return out, rows.Err()
}

// Create inserts a course and its attribute links in one transaction. On
// success c.ID holds the generated id.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	prereq, err := model.MarshalPrerequisite(c.Prerequisites)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO courses (major_code, course_number, title, prerequisites) VALUES (?, ?, ?, ?)",
		c.MajorCode, c.CourseNumber, c.Title, string(prereq))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, aid := range c.AttributeIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO course_attribute_links (course_id, attribute_id) VALUES (?, ?)", id, aid); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.ID = id
	return nil
}
