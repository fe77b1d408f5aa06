package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prodgeti/foodgram/entities"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// SeedIngredients loads the ingredient catalog from a JSON file of
// {"name", "measurement_unit"} records. Rows that already exist are skipped.
func SeedIngredients(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ingredients file: %w", err)
	}

	var records []ingredientRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("parse ingredients file: %w", err)
	}

	ingredients := make([]*entities.Ingredient, 0, len(records))
	for _, record := range records {
		ingredients = append(ingredients, &entities.Ingredient{
			ID:              uuid.New(),
			Name:            record.Name,
			MeasurementUnit: record.MeasurementUnit,
		})
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(ingredients, 500).Error; err != nil {
		return fmt.Errorf("insert ingredients: %w", err)
	}

	fmt.Printf("Seeded %d ingredients\n", len(ingredients))
	return nil
}

// SeedTags creates one tag per name, deriving the slug from the name.
func SeedTags(db *gorm.DB, names []string) error {
	for _, name := range names {
		tag := &entities.Tag{
			ID:   uuid.New(),
			Name: name,
			Slug: slug.Make(name),
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(tag).Error; err != nil {
			return fmt.Errorf("insert tag %q: %w", name, err)
		}
	}

	fmt.Printf("Seeded %d tags\n", len(names))
	return nil
}
