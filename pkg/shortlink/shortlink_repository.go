package shortlink

import (
	"context"

	"gorm.io/gorm"

	"github.com/prodgeti/foodgram/entities"
)

type (
	ShortLinkRepository interface {
		CreateShortLink(ctx context.Context, link *entities.ShortLink) error
		GetByRecipeID(ctx context.Context, recipeID string) (*entities.ShortLink, error)
		GetByCode(ctx context.Context, code string) (*entities.ShortLink, error)
	}

	shortLinkRepository struct {
		db *gorm.DB
	}
)

func NewShortLinkRepository(db *gorm.DB) ShortLinkRepository {
	return &shortLinkRepository{db: db}
}

func (r *shortLinkRepository) CreateShortLink(ctx context.Context, link *entities.ShortLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *shortLinkRepository) GetByRecipeID(ctx context.Context, recipeID string) (*entities.ShortLink, error) {
	var link entities.ShortLink
	if err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *shortLinkRepository) GetByCode(ctx context.Context, code string) (*entities.ShortLink, error) {
	var link entities.ShortLink
	if err := r.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}
