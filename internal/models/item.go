package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemSearchFilter holds search and sort criteria for item listings
type ItemSearchFilter struct {
	Query     string `json:"query,omitempty" query:"query"`           // Case-insensitive substring match across name, code, location
	SortBy    string `json:"sort_by,omitempty" query:"sort_by"`       // Sort field: name, code, quantity, location, updated_at
	SortOrder string `json:"sort_order,omitempty" query:"sort_order"` // Sort order: asc, desc
	Limit     int    `json:"limit,omitempty" query:"limit"`           // Page size (default: 50)
	Offset    int    `json:"offset,omitempty" query:"offset"`         // Page offset
}

// ItemUpdate carries the mutable fields of an item. The product code is
// fixed at creation and deliberately absent here.
type ItemUpdate struct {
	Name     *string `json:"name"`
	Quantity *int    `json:"quantity"`
	Location *string `json:"location"`
	ImageURL *string `json:"image_url"`
}

type Item struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Code        string     `json:"code" db:"code"`
	Quantity    int        `json:"quantity" db:"quantity"`
	Location    string     `json:"location" db:"location"`
	LastInDate  *time.Time `json:"last_in_date" db:"last_in_date"`
	LastOutDate *time.Time `json:"last_out_date" db:"last_out_date"`
	ImageURL    *string    `json:"image_url" db:"image_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
