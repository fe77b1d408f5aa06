package entities

import (
	"github.com/google/uuid"
)

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name            string    `gorm:"index;type:varchar(128);uniqueIndex:idx_name_unit" json:"name"`
	MeasurementUnit string    `gorm:"type:varchar(64);uniqueIndex:idx_name_unit" json:"measurement_unit"`

	Timestamp
}
