package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prodgeti/foodgram/domain"
	"github.com/prodgeti/foodgram/entities"
	"github.com/prodgeti/foodgram/pkg/recipe"
)

type (
	// UserGetter is the slice of the user repository this package needs;
	// keeping it local avoids a dependency cycle with pkg/user.
	UserGetter interface {
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
	}

	RecipeLister interface {
		GetAuthorRecipes(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error)
		CountAuthorRecipes(ctx context.Context, authorID string) (int64, error)
	}

	SubscriptionService interface {
		Subscribe(ctx context.Context, followerID, publisherID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, followerID, publisherID string) error
		GetSubscriptions(ctx context.Context, followerID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		userRepository         UserGetter
		recipeRepository       RecipeLister
	}
)

func NewSubscriptionService(
	subscriptionRepository SubscriptionRepository,
	userRepository UserGetter,
	recipeRepository RecipeLister,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		userRepository:         userRepository,
		recipeRepository:       recipeRepository,
	}
}

func (s *subscriptionService) publisherResponse(ctx context.Context, publisher *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, err := s.recipeRepository.GetAuthorRecipes(ctx, publisher.ID.String(), recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	count, err := s.recipeRepository.CountAuthorRecipes(ctx, publisher.ID.String())
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	short := make([]domain.RecipeShortResponse, 0, len(recipes))
	for _, rec := range recipes {
		short = append(short, recipe.ToRecipeShortResponse(rec))
	}

	return domain.SubscriptionResponse{
		UserResponse: domain.UserResponse{
			ID:           publisher.ID.String(),
			Email:        publisher.Email,
			Username:     publisher.Username,
			FirstName:    publisher.FirstName,
			LastName:     publisher.LastName,
			IsSubscribed: true,
			Avatar:       publisher.AvatarURL,
		},
		Recipes:      short,
		RecipesCount: count,
	}, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, followerID, publisherID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	if followerID == publisherID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscription
	}

	publisher, err := s.userRepository.GetUserByID(ctx, publisherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	// Fast path; the unique index on (follower, publisher) is the race-safe
	// source of truth.
	subscribed, err := s.subscriptionRepository.IsSubscribed(ctx, followerID, publisherID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if subscribed {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	followerUUID, err := uuid.Parse(followerID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}

	subscription := &entities.Subscription{
		ID:          uuid.New(),
		FollowerID:  followerUUID,
		PublisherID: publisher.ID,
	}
	if err := s.subscriptionRepository.CreateSubscription(ctx, subscription); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	return s.publisherResponse(ctx, publisher, recipesLimit)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, followerID, publisherID string) error {
	if _, err := s.userRepository.GetUserByID(ctx, publisherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	deleted, err := s.subscriptionRepository.DeleteSubscription(ctx, followerID, publisherID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, followerID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	publishers, count, err := s.subscriptionRepository.GetPublishers(ctx, followerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.SubscriptionResponse, 0, len(publishers))
	for _, publisher := range publishers {
		item, err := s.publisherResponse(ctx, publisher, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		response = append(response, item)
	}
	return response, count, nil
}
