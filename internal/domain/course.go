package domain

import "time"

// Course as returned by the marketplace listing endpoints. Read-only
// here; course authoring goes through the instructor API.
type Course struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	Level         string    `json:"level,omitempty"`
	Price         float64   `json:"price"`
	DiscountPrice float64   `json:"discountPrice,omitempty"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	RatingCount   int       `json:"ratingCount,omitempty"`
	EnrolledCount int       `json:"enrolledCount,omitempty"`
	InstructorID  string    `json:"instructor"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
}

// Page wraps one page of a paginated collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}
