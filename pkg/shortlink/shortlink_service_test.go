package shortlink_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/prodgeti/foodgram/domain"
	"github.com/prodgeti/foodgram/entities"
	"github.com/prodgeti/foodgram/pkg/shortlink"
)

type MockShortLinkRepository struct {
	mock.Mock
}

func (m *MockShortLinkRepository) CreateShortLink(ctx context.Context, link *entities.ShortLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockShortLinkRepository) GetByRecipeID(ctx context.Context, recipeID string) (*entities.ShortLink, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ShortLink), args.Error(1)
}

func (m *MockShortLinkRepository) GetByCode(ctx context.Context, code string) (*entities.ShortLink, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ShortLink), args.Error(1)
}

type MockRecipeGetter struct {
	mock.Mock
}

func (m *MockRecipeGetter) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Recipe), args.Error(1)
}

func TestGetOrCreateShortLink_ReusesExistingCode(t *testing.T) {
	linkRepo := new(MockShortLinkRepository)
	recipeRepo := new(MockRecipeGetter)
	service := shortlink.NewShortLinkService(linkRepo, recipeRepo)

	recipeID := uuid.New()
	recipeRepo.On("GetRecipeByID", mock.Anything, recipeID.String()).
		Return(&entities.Recipe{ID: recipeID}, nil).Once()
	linkRepo.On("GetByRecipeID", mock.Anything, recipeID.String()).
		Return(&entities.ShortLink{RecipeID: recipeID, ShortCode: "aB3dE5gH"}, nil).Once()

	res, err := service.GetOrCreateShortLink(context.Background(), recipeID.String())

	assert.NoError(t, err)
	assert.Contains(t, res.ShortLink, "/s/aB3dE5gH")
	linkRepo.AssertNotCalled(t, "CreateShortLink", mock.Anything, mock.Anything)
	linkRepo.AssertExpectations(t)
	recipeRepo.AssertExpectations(t)
}

func TestGetOrCreateShortLink_GeneratesNewCode(t *testing.T) {
	linkRepo := new(MockShortLinkRepository)
	recipeRepo := new(MockRecipeGetter)
	service := shortlink.NewShortLinkService(linkRepo, recipeRepo)

	recipeID := uuid.New()
	recipeRepo.On("GetRecipeByID", mock.Anything, recipeID.String()).
		Return(&entities.Recipe{ID: recipeID}, nil).Once()
	linkRepo.On("GetByRecipeID", mock.Anything, recipeID.String()).
		Return(nil, gorm.ErrRecordNotFound).Once()

	var created *entities.ShortLink
	linkRepo.On("CreateShortLink", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entities.ShortLink)
		}).
		Return(nil).Once()

	res, err := service.GetOrCreateShortLink(context.Background(), recipeID.String())

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Len(t, created.ShortCode, 8)
	assert.Regexp(t, "^[a-zA-Z0-9]+$", created.ShortCode)
	assert.Equal(t, recipeID, created.RecipeID)
	assert.Contains(t, res.ShortLink, "/s/"+created.ShortCode)
	linkRepo.AssertExpectations(t)
}

func TestGetOrCreateShortLink_RecipeMissing(t *testing.T) {
	linkRepo := new(MockShortLinkRepository)
	recipeRepo := new(MockRecipeGetter)
	service := shortlink.NewShortLinkService(linkRepo, recipeRepo)

	recipeRepo.On("GetRecipeByID", mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := service.GetOrCreateShortLink(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestResolveShortLink(t *testing.T) {
	linkRepo := new(MockShortLinkRepository)
	recipeRepo := new(MockRecipeGetter)
	service := shortlink.NewShortLinkService(linkRepo, recipeRepo)

	linkRepo.On("GetByCode", mock.Anything, "aB3dE5gH").
		Return(&entities.ShortLink{ShortCode: "aB3dE5gH", OriginalLink: "http://localhost/recipes/42"}, nil).Once()

	target, err := service.ResolveShortLink(context.Background(), "aB3dE5gH")

	assert.NoError(t, err)
	assert.Equal(t, "http://localhost/recipes/42", target)

	linkRepo.On("GetByCode", mock.Anything, "missing1").
		Return(nil, gorm.ErrRecordNotFound).Once()

	_, err = service.ResolveShortLink(context.Background(), "missing1")

	assert.ErrorIs(t, err, domain.ErrShortLinkNotFound)
	linkRepo.AssertExpectations(t)
}
