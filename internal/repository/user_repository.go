package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/job-application-tracker/internal/model"
)

// UserRepo encapsulates all database queries against the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, external_id, name, email, access_token, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var token sql.NullString
	err := row.Scan(&u.ID, &u.ExternalID, &u.Name, &u.Email, &token, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.AccessToken = token.String
	return &u, nil
}

// GetByExternalID fetches a user by the identity provider's stable id.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE external_id = ? LIMIT 1", externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Insert creates a user row for a first-time login. The access token column
// stays NULL when the provider did not hand out a token. On success the ID
// and timestamp fields of u are populated from the database.
func (r *UserRepo) Insert(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (external_id, name, email, access_token) VALUES (?, ?, ?, NULLIF(?, ''))",
		u.ExternalID, u.Name, u.Email, u.AccessToken)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	// Follow-up SELECT to populate DB-assigned timestamps.
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM users WHERE id = ?", u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// UpdateOnLogin refreshes a returning user's profile. The display name is
// replaced unconditionally; the delegated access token is replaced only when
// a non-empty token was obtained in this login pass, because the provider
// issues the token on first consent only and a stored token must never be
// erased by a later token-less login. Email is intentionally not touched.
func (r *UserRepo) UpdateOnLogin(ctx context.Context, id uint64, name, accessToken string) error {
	if accessToken == "" {
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			name, id)
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, access_token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, accessToken, id)
	return err
}
