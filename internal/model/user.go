package model

import "time"

// User is an account that can sign in. StudentID links the account to its
// student profile once the profile has been created.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash of the password.
//	StudentID    – students.id of the linked profile, nil until created.
//	IsActive     – whether the account may sign in.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	StudentID    *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
