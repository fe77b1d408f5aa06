package subscription

import (
	"context"

	"gorm.io/gorm"

	"github.com/prodgeti/foodgram/entities"
)

type (
	SubscriptionRepository interface {
		CreateSubscription(ctx context.Context, subscription *entities.Subscription) error
		DeleteSubscription(ctx context.Context, followerID, publisherID string) (int64, error)
		IsSubscribed(ctx context.Context, followerID, publisherID string) (bool, error)
		GetPublishers(ctx context.Context, followerID string, page, limit int) ([]*entities.User, int64, error)
	}

	subscriptionRepository struct {
		db *gorm.DB
	}
)

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, subscription *entities.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *subscriptionRepository) DeleteSubscription(ctx context.Context, followerID, publisherID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND publisher_id = ?", followerID, publisherID).
		Delete(&entities.Subscription{})
	return result.RowsAffected, result.Error
}

func (r *subscriptionRepository) IsSubscribed(ctx context.Context, followerID, publisherID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("follower_id = ? AND publisher_id = ?", followerID, publisherID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *subscriptionRepository) GetPublishers(ctx context.Context, followerID string, page, limit int) ([]*entities.User, int64, error) {
	var publishers []*entities.User
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("follower_id = ?", followerID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.publisher_id = users.id").
		Where("subscriptions.follower_id = ?", followerID).
		Order("subscriptions.created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&publishers).Error; err != nil {
		return nil, 0, err
	}

	return publishers, count, nil
}
