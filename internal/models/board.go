package models

import "time"

// UncategorizedLabel is the statistics bucket for boards without a category.
const UncategorizedLabel = "uncategorized"

type Board struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`            // Sanitized HTML
	Category   *string   `json:"category,omitempty"` // NULL means uncategorized
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"` // Denormalized for listings
	ViewCount  int64     `json:"view_count"`
	Pinned     bool      `json:"pinned"`
	Deleted    bool      `json:"-"` // Soft-delete marker; deleted boards never leave standard queries
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CategoryLabel returns the category, or the uncategorized sentinel when unset.
func (b *Board) CategoryLabel() string {
	if b.Category == nil || *b.Category == "" {
		return UncategorizedLabel
	}
	return *b.Category
}

// BoardStats aggregates counts over non-deleted boards.
type BoardStats struct {
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"by_category"`
	Today      int64            `json:"today"`
	ThisWeek   int64            `json:"this_week"`
}
