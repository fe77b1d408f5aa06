package recipe_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	migration "github.com/prodgeti/foodgram/cmd/database/migrate"
	"github.com/prodgeti/foodgram/entities"
	"github.com/prodgeti/foodgram/pkg/recipe"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(db))
	return db
}

func TestAddFavorite_DuplicateRowTranslated(t *testing.T) {
	db := openTestDB(t)
	repo := recipe.NewRecipeRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	recipeID := uuid.New()

	first := &entities.Favorite{ID: uuid.New(), UserID: userID, RecipeID: recipeID}
	require.NoError(t, repo.AddFavorite(ctx, first))

	second := &entities.Favorite{ID: uuid.New(), UserID: userID, RecipeID: recipeID}
	err := repo.AddFavorite(ctx, second)

	require.Error(t, err)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestAddToShoppingCart_DuplicateRowTranslated(t *testing.T) {
	db := openTestDB(t)
	repo := recipe.NewRecipeRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	recipeID := uuid.New()

	first := &entities.ShoppingCart{ID: uuid.New(), UserID: userID, RecipeID: recipeID}
	require.NoError(t, repo.AddToShoppingCart(ctx, first))

	second := &entities.ShoppingCart{ID: uuid.New(), UserID: userID, RecipeID: recipeID}
	err := repo.AddToShoppingCart(ctx, second)

	require.Error(t, err)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
