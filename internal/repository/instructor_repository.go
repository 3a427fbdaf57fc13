package repository

import (
	"context"
	"database/sql"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// InstructorRepo reads instructors imported from the ratings site.
type InstructorRepo struct {
	db *sql.DB
}

func NewInstructorRepo(db *sql.DB) *InstructorRepo {
	return &InstructorRepo{db: db}
}

// GetAll returns every instructor ordered by id.
func (r *InstructorRepo) GetAll(ctx context.Context) ([]model.Instructor, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, rmp_rating, rmp_num_ratings, rmp_url, department FROM instructors ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Instructor
	for rows.Next() {
		var (
			in     model.Instructor
			rating sql.NullFloat64
			count  sql.NullInt64
			url    sql.NullString
			dept   sql.NullString
		)
		if err := rows.Scan(&in.ID, &in.Name, &rating, &count, &url, &dept); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := rating.Float64
			in.RMPRating = &v
		}
		if count.Valid {
			n := int(count.Int64)
			in.RMPNumRatings = &n
		}
		in.RMPURL = url.String
		in.Department = dept.String
		out = append(out, in)
	}
	return out, rows.Err()
}

// Create inserts an instructor and sets its id.
func (r *InstructorRepo) Create(ctx context.Context, in *model.Instructor) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO instructors (name, rmp_rating, rmp_num_ratings, rmp_url, department) VALUES (?, ?, ?, ?, ?)",
		in.Name, in.RMPRating, in.RMPNumRatings, nullString(in.RMPURL), nullString(in.Department))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	in.ID = id
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
