package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nutritrack/nutritrack-server/internal/model"
)

// ErrPhotoNotFound is returned when a photo does not exist or is owned by a
// different user. Handlers translate it into HTTP 404.
var ErrPhotoNotFound = errors.New("photo not found")

// PhotoRepo encapsulates all database queries related to photo metadata.
// The backing file on disk is managed by the storage layer; this repository
// only tracks its metadata row.
type PhotoRepo struct {
	db *sql.DB
}

// NewPhotoRepo constructs a PhotoRepo with the provided DB handle.
func NewPhotoRepo(db *sql.DB) *PhotoRepo {
	return &PhotoRepo{db: db}
}

// Create inserts a new photo metadata row. On success the photo's ID field
// is populated and the DB-assigned creation timestamp is read back.
func (r *PhotoRepo) Create(ctx context.Context, p *model.Photo) error {
	const qInsert = "INSERT INTO photos (user_id, filename, original_name, date, calories) VALUES (?, ?, ?, ?, ?)"
	var calories interface{}
	if p.Calories != nil {
		calories = *p.Calories
	}
	res, err := r.db.ExecContext(ctx, qInsert, p.UserID, p.Filename, p.OriginalName, p.Date, calories)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	const qSelect = "SELECT created_at FROM photos WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, p.ID).Scan(&p.CreatedAt)
}

// ListByUser returns the user's photos newest-created-first.
func (r *PhotoRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Photo, error) {
	const q = `SELECT id, user_id, filename, original_name, date, calories, created_at
	           FROM photos WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Photo{}
	for rows.Next() {
		p := new(model.Photo)
		var calories sql.NullInt64
		if err := rows.Scan(&p.ID, &p.UserID, &p.Filename, &p.OriginalName, &p.Date, &calories, &p.CreatedAt); err != nil {
			return nil, err
		}
		if calories.Valid {
			c := int(calories.Int64)
			p.Calories = &c
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndUser fetches a photo by id only if it belongs to the given
// user, returning ErrPhotoNotFound otherwise.
func (r *PhotoRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Photo, error) {
	const q = `SELECT id, user_id, filename, original_name, date, calories, created_at
	           FROM photos WHERE id = ? AND user_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, userID))
}

// GetByFilenameAndUser fetches a photo by its stored filename only if it
// belongs to the given user. Used by the serve-by-filename route.
func (r *PhotoRepo) GetByFilenameAndUser(ctx context.Context, filename string, userID uint64) (*model.Photo, error) {
	const q = `SELECT id, user_id, filename, original_name, date, calories, created_at
	           FROM photos WHERE filename = ? AND user_id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, filename, userID))
}

// DeleteByIDAndUser removes a photo metadata row only if it belongs to the
// given user. Zero rows affected surfaces as ErrPhotoNotFound.
func (r *PhotoRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint64) error {
	const q = "DELETE FROM photos WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func (r *PhotoRepo) scanOne(row *sql.Row) (*model.Photo, error) {
	p := new(model.Photo)
	var calories sql.NullInt64
	err := row.Scan(&p.ID, &p.UserID, &p.Filename, &p.OriginalName, &p.Date, &calories, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	if calories.Valid {
		c := int(calories.Int64)
		p.Calories = &c
	}
	return p, nil
}
