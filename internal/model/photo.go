package model

import "time"

// Photo represents an uploaded meal photo in the `photos` table. Filename
// is the system-generated name the bytes are stored under; it is unique
// across all users so uploads can never overwrite each other. OriginalName
// is the client-supplied name and is kept only as untrusted display
// metadata. Calories is an optional annotation.
type Photo struct {
	ID           uint64    `json:"id"`            // photos.id
	UserID       uint64    `json:"user_id"`       // photos.user_id
	Filename     string    `json:"filename"`      // photos.filename (generated, unique)
	OriginalName string    `json:"original_name"` // photos.original_name (untrusted)
	Date         string    `json:"date"`          // photos.date (YYYY-MM-DD)
	Calories     *int      `json:"calories"`      // photos.calories (nullable)
	CreatedAt    time.Time `json:"created_at"`    // photos.created_at
}
