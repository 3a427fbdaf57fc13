package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo keeps refresh tokens by the hash of their raw value.  A token
// can be redeemed once: Consume revokes it as it returns the owner.
type TokenRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db, now: time.Now}
}

// Store records a new refresh token for userID.
func (r *TokenRepo) Store(ctx context.Context, userID int64, hash string, expires time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?)",
		userID, hash, expires.UTC(), r.now().UTC())
	return err
}

// Consume redeems a refresh token and returns its owner.  Unknown, expired
// and already revoked tokens yield ErrTokenInvalid.  Of two concurrent
// calls for the same token only one succeeds.
func (r *TokenRepo) Consume(ctx context.Context, hash string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var (
		userID    int64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ?", hash).
		Scan(&userID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, err
	}
	now := r.now().UTC()
	if revokedAt.Valid || !now.Before(expiresAt) {
		return 0, ErrTokenInvalid
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL", now, hash)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, ErrTokenInvalid
	}
	return userID, tx.Commit()
}

// RevokeAllForUser revokes every unrevoked token of the user, expired ones
// included, and reports how many there were.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL",
		r.now().UTC(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
