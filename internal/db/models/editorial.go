package models

import "time"

// Editorial represents a piece of editorial content. Editing and
// deleting are ownership-scoped: the author may act with an ":own"
// permission, everyone else needs the ":any" variant.
type Editorial struct {
	// ID is the unique identifier for the editorial.
	ID uint64 `gorm:"primaryKey"`
	// Title is the editorial headline.
	Title string `gorm:"size:255;not null"`
	// Content is the editorial body.
	Content string `gorm:"type:text"`
	// AuthorID is the ID of the user who created the editorial.
	AuthorID uint64 `gorm:"index;not null"`
	// Author is the associated user (loaded via foreign key).
	// When a user is deleted, their editorials are removed with them.
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the editorial was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the editorial was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Editorial model.
func (Editorial) TableName() string {
	return "editorials"
}
