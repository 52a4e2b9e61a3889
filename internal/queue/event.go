// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an activity log.
package queue

// MealLoggedEvent is published when a food entry is successfully saved. It
// carries enough information for downstream consumers to log, notify, or
// feed analytics without querying the primary database.
type MealLoggedEvent struct {
	FoodItemID uint64 `json:"food_item_id"`
	UserID     uint64 `json:"user_id"`
	Name       string `json:"name"`
	Calories   int    `json:"calories"`
	MealType   string `json:"meal_type"`
	Date       string `json:"date"`
	LoggedAt   string `json:"logged_at"`
}

// PhotoUploadedEvent is published when a meal photo upload completes, i.e.
// after both the bytes and the metadata row are persisted.
type PhotoUploadedEvent struct {
	PhotoID      uint64 `json:"photo_id"`
	UserID       uint64 `json:"user_id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Date         string `json:"date"`
	Calories     *int   `json:"calories"`
	UploadedAt   string `json:"uploaded_at"`
}
