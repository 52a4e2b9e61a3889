package model

import "time"

// Meal type values accepted for a food item. The API rejects anything else.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// ValidMealType reports whether s is one of the accepted meal categories.
func ValidMealType(s string) bool {
	switch s {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// FoodItem represents a single logged food entry in the `food_items` table.
// Entries belong to exactly one user, are created once and deleted whole;
// there is no in-place update. Date is the calendar day the entry was
// logged, in YYYY-MM-DD form.
type FoodItem struct {
	ID        uint64    `json:"id"`         // food_items.id
	UserID    uint64    `json:"user_id"`    // food_items.user_id
	Name      string    `json:"name"`       // food_items.name
	Calories  int       `json:"calories"`   // food_items.calories (positive)
	MealType  string    `json:"meal_type"`  // food_items.meal_type
	Date      string    `json:"date"`       // food_items.date (YYYY-MM-DD)
	CreatedAt time.Time `json:"created_at"` // food_items.created_at
}
