// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for the applications table. Every
// lookup that mutates or returns a single application filters on both the
// application id and the owning user id; an id alone never grants access.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/job-application-tracker/internal/model"
)

// ApplicationRepo encapsulates all database queries related to job
// applications. It depends on a sql.DB connection pool configured at startup.
type ApplicationRepo struct {
	db *sql.DB
}

// NewApplicationRepo constructs an ApplicationRepo with the provided DB
// handle. This allows dependency injection of the database at startup.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

const applicationColumns = "id, user_id, company_name, job_title, job_url, status, notes, created_at"

func scanApplication(scan func(dest ...any) error) (*model.Application, error) {
	var a model.Application
	var url, notes sql.NullString
	err := scan(&a.ID, &a.UserID, &a.CompanyName, &a.JobTitle, &url, &a.Status, &notes, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.JobURL = url.String
	a.Notes = notes.String
	return &a, nil
}

// ListByOwner returns all applications belonging to a user, most recent
// first. An empty result is a valid outcome and returns a nil slice.
func (r *ApplicationRepo) ListByOwner(ctx context.Context, userID uint64) ([]*model.Application, error) {
	const q = `SELECT ` + applicationColumns + `
	           FROM applications WHERE user_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Application
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndOwner fetches an application by id but only if it belongs to the
// given user. Both a missing row and a row owned by someone else yield
// ErrApplicationNotFound.
func (r *ApplicationRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*model.Application, error) {
	const q = "SELECT " + applicationColumns + " FROM applications WHERE id = ? AND user_id = ?"
	a, err := scanApplication(r.db.QueryRowContext(ctx, q, id, userID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	return a, err
}

// Create inserts a new application. On success the ID and CreatedAt fields
// are populated from the database so callers receive a complete record.
func (r *ApplicationRepo) Create(ctx context.Context, a *model.Application) error {
	const qInsert = `INSERT INTO applications (user_id, company_name, job_title, job_url, status, notes)
	                 VALUES (?, ?, ?, NULLIF(?, ''), ?, NULLIF(?, ''))`
	res, err := r.db.ExecContext(ctx, qInsert,
		a.UserID, a.CompanyName, a.JobTitle, a.JobURL, a.Status, a.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	// Follow-up SELECT to populate the DB-assigned creation timestamp.
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM applications WHERE id = ?", a.ID).Scan(&a.CreatedAt)
}

// Update replaces the mutable fields of an application wholesale, provided
// it belongs to the given owner. The ownership check runs first so a no-op
// update (same values) is still distinguishable from a missing row. Returns
// ErrApplicationNotFound when the id does not exist or is owned by another
// user. On success the stored row is read back into a.
func (r *ApplicationRepo) Update(ctx context.Context, a *model.Application) error {
	if _, err := r.GetByIDAndOwner(ctx, a.ID, a.UserID); err != nil {
		return err
	}
	const q = `UPDATE applications
	           SET company_name = ?, job_title = ?, job_url = NULLIF(?, ''), status = ?, notes = NULLIF(?, '')
	           WHERE id = ? AND user_id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		a.CompanyName, a.JobTitle, a.JobURL, a.Status, a.Notes, a.ID, a.UserID); err != nil {
		return err
	}
	updated, err := r.GetByIDAndOwner(ctx, a.ID, a.UserID)
	if err != nil {
		return err
	}
	*a = *updated
	return nil
}

// DeleteByIDAndOwner removes an application if it belongs to the given user.
// Zero affected rows (missing or not owned) yield ErrApplicationNotFound, so
// a repeated delete of the same id is reported as not found.
func (r *ApplicationRepo) DeleteByIDAndOwner(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM applications WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
