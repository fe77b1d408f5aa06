package entities

import (
	"time"

	"github.com/google/uuid"
)

// ShortLink maps a generated fixed-length code to the canonical recipe URL.
// Codes are generated once and never change afterwards.
type ShortLink struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RecipeID     uuid.UUID `gorm:"uniqueIndex" json:"recipe_id"`
	ShortCode    string    `gorm:"size:10;uniqueIndex;not null" json:"short_code"`
	OriginalLink string    `gorm:"type:text;not null" json:"original_link"`
	CreatedAt    time.Time `gorm:"type:timestamp" json:"created_at"`

	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}
