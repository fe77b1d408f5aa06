package entities

import (
	"github.com/google/uuid"
)

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `gorm:"index;type:varchar(32)" json:"name"`
	Slug string    `gorm:"uniqueIndex;type:varchar(32)" json:"slug"`

	Recipes []*Recipe `gorm:"many2many:recipe_tags;"`
	Timestamp
}
