package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
)

// DegreeRepo reads and writes degrees. The ordered requirement list is a
// JSON column decoded through model.DegreeRequirement.
type DegreeRepo struct {
	db *sql.DB
}

func NewDegreeRepo(db *sql.DB) *DegreeRepo {
	return &DegreeRepo{db: db}
}

const degreeColumns = "id, name, primary_major_code, degree_type, college_code, requirements"

func scanDegree(sc interface{ Scan(...any) error }) (model.Degree, error) {
	var (
		d    model.Degree
		reqs []byte
	)
	if err := sc.Scan(&d.ID, &d.Name, &d.PrimaryMajorCode, &d.DegreeType, &d.CollegeCode, &reqs); err != nil {
		return model.Degree{}, err
	}
	if err := decodeJSON(reqs, &d.Requirements, "degrees.requirements"); err != nil {
		return model.Degree{}, err
	}
	return d, nil
}

// GetByID fetches a degree. It returns ErrNotFound if no row matches.
func (r *DegreeRepo) GetByID(ctx context.Context, id int64) (model.Degree, error) {
	d, err := scanDegree(r.db.QueryRowContext(ctx, "SELECT "+degreeColumns+" FROM degrees WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Degree{}, ErrNotFound
		}
		return model.Degree{}, err
	}
	return d, nil
}

// GetAll returns every degree ordered by id.
func (r *DegreeRepo) GetAll(ctx context.Context) ([]model.Degree, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+degreeColumns+" FROM degrees ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Degree
	for rows.Next() {
		d, err := scanDegree(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create inserts a degree and sets its id.
func (r *DegreeRepo) Create(ctx context.Context, d *model.Degree) error {
	reqs, err := encodeJSON(d.Requirements)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO degrees (name, primary_major_code, degree_type, college_code, requirements) VALUES (?, ?, ?, ?, ?)",
		d.Name, d.PrimaryMajorCode, d.DegreeType, d.CollegeCode, reqs)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}
