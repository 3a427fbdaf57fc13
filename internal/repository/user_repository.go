package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/model"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password, inserts the user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password string, cost int) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?,?)",
		email, hash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

const userColumns = "id,email,password_hash,student_id,is_active,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u         model.User
		studentID sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &studentID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if studentID.Valid {
		u.StudentID = &studentID.Int64
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// LinkStudent attaches a student profile to the user.
func (r *UserRepo) LinkStudent(ctx context.Context, userID, studentID int64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET student_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		studentID, userID)
	return err
}
