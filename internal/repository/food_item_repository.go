// Package repository contains data access logic separated from HTTP
// handlers. Every query over user-owned rows is scoped by user_id so a
// caller can never read or delete another user's records; a lookup that
// matches no row for the (id, user) pair reports not-found without
// revealing whether the id exists for someone else.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nutritrack/nutritrack-server/internal/model"
)

// ErrFoodItemNotFound is returned when a food item does not exist or is
// owned by a different user. Handlers translate it into HTTP 404.
var ErrFoodItemNotFound = errors.New("food item not found")

// FoodItemRepo encapsulates all database queries related to food items.
type FoodItemRepo struct {
	db *sql.DB
}

// NewFoodItemRepo constructs a FoodItemRepo with the provided DB handle.
func NewFoodItemRepo(db *sql.DB) *FoodItemRepo {
	return &FoodItemRepo{db: db}
}

// Create inserts a new food item. On success the item's ID field is
// populated with the auto-generated value and a follow-up SELECT fills in
// the DB-assigned creation timestamp so callers receive a fully populated
// record.
func (r *FoodItemRepo) Create(ctx context.Context, f *model.FoodItem) error {
	const qInsert = "INSERT INTO food_items (user_id, name, calories, meal_type, date) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, f.UserID, f.Name, f.Calories, f.MealType, f.Date)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)

	const qSelect = "SELECT created_at FROM food_items WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, f.ID).Scan(&f.CreatedAt)
}

// ListByUser returns the user's food items newest-created-first. When date
// is non-empty only entries logged on that exact calendar day are returned.
func (r *FoodItemRepo) ListByUser(ctx context.Context, userID uint64, date string) ([]*model.FoodItem, error) {
	q := `SELECT id, user_id, name, calories, meal_type, date, created_at
	      FROM food_items WHERE user_id = ?`
	args := []interface{}{userID}
	if date != "" {
		q += " AND date = ?"
		args = append(args, date)
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.FoodItem{}
	for rows.Next() {
		f := new(model.FoodItem)
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Calories, &f.MealType, &f.Date, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDAndUser removes a food item only if it belongs to the given
// user. Zero rows affected means not found or not owned; both cases
// surface as ErrFoodItemNotFound.
func (r *FoodItemRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint64) error {
	const q = "DELETE FROM food_items WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFoodItemNotFound
	}
	return nil
}
