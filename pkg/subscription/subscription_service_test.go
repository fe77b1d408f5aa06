package subscription_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/prodgeti/foodgram/domain"
	"github.com/prodgeti/foodgram/entities"
	"github.com/prodgeti/foodgram/pkg/subscription"
)

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) CreateSubscription(ctx context.Context, sub *entities.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) DeleteSubscription(ctx context.Context, followerID, publisherID string) (int64, error) {
	args := m.Called(ctx, followerID, publisherID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriptionRepository) IsSubscribed(ctx context.Context, followerID, publisherID string) (bool, error) {
	args := m.Called(ctx, followerID, publisherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) GetPublishers(ctx context.Context, followerID string, page, limit int) ([]*entities.User, int64, error) {
	args := m.Called(ctx, followerID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.User), args.Get(1).(int64), args.Error(2)
}

type MockUserGetter struct {
	mock.Mock
}

func (m *MockUserGetter) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type MockRecipeLister struct {
	mock.Mock
}

func (m *MockRecipeLister) GetAuthorRecipes(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	args := m.Called(ctx, authorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Recipe), args.Error(1)
}

func (m *MockRecipeLister) CountAuthorRecipes(ctx context.Context, authorID string) (int64, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).(int64), args.Error(1)
}

func TestSubscribe_Self(t *testing.T) {
	service := subscription.NewSubscriptionService(
		new(MockSubscriptionRepository), new(MockUserGetter), new(MockRecipeLister),
	)

	id := uuid.NewString()
	_, err := service.Subscribe(context.Background(), id, id, 0)

	assert.ErrorIs(t, err, domain.ErrSelfSubscription)
}

func TestSubscribe_PublisherMissing(t *testing.T) {
	users := new(MockUserGetter)
	service := subscription.NewSubscriptionService(
		new(MockSubscriptionRepository), users, new(MockRecipeLister),
	)

	users.On("GetUserByID", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := service.Subscribe(context.Background(), uuid.NewString(), uuid.NewString(), 0)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSubscribe_AlreadySubscribed(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	users := new(MockUserGetter)
	service := subscription.NewSubscriptionService(subs, users, new(MockRecipeLister))

	followerID := uuid.NewString()
	publisher := &entities.User{ID: uuid.New(), Username: "chef"}

	users.On("GetUserByID", mock.Anything, publisher.ID.String()).Return(publisher, nil).Once()
	subs.On("IsSubscribed", mock.Anything, followerID, publisher.ID.String()).Return(true, nil).Once()

	_, err := service.Subscribe(context.Background(), followerID, publisher.ID.String(), 0)

	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
	subs.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
}

func TestSubscribe_ConcurrentDuplicate(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	users := new(MockUserGetter)
	service := subscription.NewSubscriptionService(subs, users, new(MockRecipeLister))

	followerID := uuid.NewString()
	publisher := &entities.User{ID: uuid.New(), Username: "chef"}

	// The existence check raced with another request, so the insert hits
	// the unique index instead.
	users.On("GetUserByID", mock.Anything, publisher.ID.String()).Return(publisher, nil).Once()
	subs.On("IsSubscribed", mock.Anything, followerID, publisher.ID.String()).Return(false, nil).Once()
	subs.On("CreateSubscription", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey).Once()

	_, err := service.Subscribe(context.Background(), followerID, publisher.ID.String(), 0)

	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestSubscribe_Success(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	users := new(MockUserGetter)
	recipes := new(MockRecipeLister)
	service := subscription.NewSubscriptionService(subs, users, recipes)

	followerID := uuid.NewString()
	publisher := &entities.User{ID: uuid.New(), Username: "chef", Email: "chef@example.com"}
	published := []*entities.Recipe{
		{ID: uuid.New(), Name: "Borscht", CookingTime: 90},
	}

	users.On("GetUserByID", mock.Anything, publisher.ID.String()).Return(publisher, nil).Once()
	subs.On("IsSubscribed", mock.Anything, followerID, publisher.ID.String()).Return(false, nil).Once()
	subs.On("CreateSubscription", mock.Anything, mock.Anything).Return(nil).Once()
	recipes.On("GetAuthorRecipes", mock.Anything, publisher.ID.String(), 1).Return(published, nil).Once()
	recipes.On("CountAuthorRecipes", mock.Anything, publisher.ID.String()).Return(int64(3), nil).Once()

	res, err := service.Subscribe(context.Background(), followerID, publisher.ID.String(), 1)

	assert.NoError(t, err)
	assert.True(t, res.IsSubscribed)
	assert.Equal(t, "chef", res.Username)
	assert.Len(t, res.Recipes, 1)
	assert.Equal(t, "Borscht", res.Recipes[0].Name)
	assert.Equal(t, int64(3), res.RecipesCount)
	subs.AssertExpectations(t)
	recipes.AssertExpectations(t)
}

func TestUnsubscribe_NotSubscribed(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	users := new(MockUserGetter)
	service := subscription.NewSubscriptionService(subs, users, new(MockRecipeLister))

	followerID := uuid.NewString()
	publisher := &entities.User{ID: uuid.New()}

	users.On("GetUserByID", mock.Anything, publisher.ID.String()).Return(publisher, nil).Once()
	subs.On("DeleteSubscription", mock.Anything, followerID, publisher.ID.String()).
		Return(int64(0), nil).Once()

	err := service.Unsubscribe(context.Background(), followerID, publisher.ID.String())

	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestGetSubscriptions(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	users := new(MockUserGetter)
	recipes := new(MockRecipeLister)
	service := subscription.NewSubscriptionService(subs, users, recipes)

	followerID := uuid.NewString()
	publisher := &entities.User{ID: uuid.New(), Username: "baker"}

	subs.On("GetPublishers", mock.Anything, followerID, 1, 6).
		Return([]*entities.User{publisher}, int64(1), nil).Once()
	recipes.On("GetAuthorRecipes", mock.Anything, publisher.ID.String(), 0).
		Return([]*entities.Recipe{}, nil).Once()
	recipes.On("CountAuthorRecipes", mock.Anything, publisher.ID.String()).
		Return(int64(0), nil).Once()

	res, count, err := service.GetSubscriptions(context.Background(), followerID, 1, 6, 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, res, 1)
	assert.Equal(t, "baker", res[0].Username)
	assert.Empty(t, res[0].Recipes)
}
