package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Dialect selects the few schema details MySQL and SQLite disagree on.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite3"
)

// schema creates every table the repositories use. {{id}} is replaced by
// the dialect's auto-increment primary key. Everything else is valid on
// both engines.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS course_attributes (
		id {{id}},
		name VARCHAR(255) NOT NULL,
		degree_works_label VARCHAR(255) NOT NULL DEFAULT '',
		courses_at_slu_label VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id {{id}},
		major_code VARCHAR(16) NOT NULL,
		course_number VARCHAR(16) NOT NULL,
		title VARCHAR(255) NOT NULL DEFAULT '',
		prerequisites TEXT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS course_attribute_links (
		course_id BIGINT NOT NULL,
		attribute_id BIGINT NOT NULL,
		PRIMARY KEY (course_id, attribute_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sections (
		id {{id}},
		crn VARCHAR(16) NOT NULL,
		instructor_names TEXT NOT NULL,
		campus_code VARCHAR(128) NOT NULL DEFAULT '',
		description TEXT NOT NULL,
		title VARCHAR(255) NOT NULL DEFAULT '',
		course_code VARCHAR(32) NOT NULL,
		semester VARCHAR(16) NOT NULL,
		meeting_times TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS degrees (
		id {{id}},
		name VARCHAR(255) NOT NULL,
		primary_major_code VARCHAR(16) NOT NULL,
		degree_type VARCHAR(16) NOT NULL DEFAULT '',
		college_code VARCHAR(16) NOT NULL DEFAULT '',
		requirements TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id {{id}},
		name VARCHAR(255) NOT NULL,
		degree_id BIGINT NOT NULL,
		graduation_year INT NOT NULL,
		completed_course_ids TEXT NOT NULL,
		desired_course_ids TEXT NOT NULL,
		unavailability_times TEXT NOT NULL,
		avoid_times TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instructors (
		id {{id}},
		name VARCHAR(255) NOT NULL,
		rmp_rating DOUBLE NULL,
		rmp_num_ratings INT NULL,
		rmp_url VARCHAR(512) NULL,
		department VARCHAR(255) NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id {{id}},
		course_id BIGINT NULL,
		instructor_id BIGINT NULL,
		student_id BIGINT NOT NULL,
		rating_value DOUBLE NOT NULL,
		description TEXT NOT NULL,
		difficulty DOUBLE NULL,
		would_take_again BOOLEAN NULL,
		grade VARCHAR(8) NULL,
		attendance VARCHAR(32) NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id {{id}},
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		student_id BIGINT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id {{id}},
		user_id BIGINT NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	id := "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	if d == DialectSQLite {
		id = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, strings.ReplaceAll(stmt, "{{id}}", id)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
