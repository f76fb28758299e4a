package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh tokens.  Only the SHA-256 of the raw token is
// stored.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return translate(err)
}

// ConsumeRefresh validates the token and revokes it, returning the owner.
// Unknown, expired or revoked tokens give ErrNotFound.  The row is locked so
// a token can only be consumed once.
func (r *TokenRepo) ConsumeRefresh(ctx context.Context, tokenHash string, now time.Time) (userID uint64, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM refresh_tokens
		 WHERE token_hash=? AND revoked_at IS NULL AND expires_at > ?
		 LIMIT 1 FOR UPDATE`, tokenHash, now).Scan(&userID)
	if err != nil {
		return 0, translate(err)
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=?", now, tokenHash); err != nil {
		return 0, err
	}
	return userID, tx.Commit()
}

// RevokeAllForUser revokes all of a user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE user_id=? AND revoked_at IS NULL",
		now, userID)
	return err
}
