package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prodgeti/foodgram/domain"
	"github.com/prodgeti/foodgram/entities"
	"github.com/prodgeti/foodgram/internal/utils"
	"github.com/prodgeti/foodgram/internal/utils/storage"
)

type (
	// SubscriptionChecker and UserGetter are the slices of other repositories
	// this package needs; local interfaces avoid dependency cycles.
	SubscriptionChecker interface {
		IsSubscribed(ctx context.Context, followerID, publisherID string) (bool, error)
	}

	UserGetter interface {
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
	}

	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, principalID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, id string, req domain.UpdateRecipeRequest, principalID, role string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, id, principalID, role string) error
		GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, id, principalID string) (domain.RecipeResponse, error)

		AddFavorite(ctx context.Context, recipeID, principalID string) (domain.RecipeShortResponse, error)
		RemoveFavorite(ctx context.Context, recipeID, principalID string) error
		AddToShoppingCart(ctx context.Context, recipeID, principalID string) (domain.RecipeShortResponse, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, principalID string) error

		DownloadShoppingList(ctx context.Context, principalID string) (string, string, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		tagRepository        TagGetter
		ingredientRepository IngredientGetter
		subscriptionChecker  SubscriptionChecker
		userRepository       UserGetter
		s3                   storage.AwsS3
	}

	TagGetter interface {
		GetTagsByIDs(ctx context.Context, ids []string) ([]*entities.Tag, error)
	}

	IngredientGetter interface {
		GetIngredientsByIDs(ctx context.Context, ids []string) ([]*entities.Ingredient, error)
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	tagRepository TagGetter,
	ingredientRepository IngredientGetter,
	subscriptionChecker SubscriptionChecker,
	userRepository UserGetter,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		tagRepository:        tagRepository,
		ingredientRepository: ingredientRepository,
		subscriptionChecker:  subscriptionChecker,
		userRepository:       userRepository,
		s3:                   s3,
	}
}

func ToRecipeShortResponse(recipe *entities.Recipe) domain.RecipeShortResponse {
	return domain.RecipeShortResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, principalID string) (domain.RecipeResponse, error) {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:   tag.ID.String(),
			Name: tag.Name,
			Slug: tag.Slug,
		})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.RecipeIngredients))
	for _, item := range recipe.RecipeIngredients {
		res := domain.RecipeIngredientResponse{
			ID:     item.IngredientID.String(),
			Amount: item.Amount,
		}
		if item.Ingredient != nil {
			res.Name = item.Ingredient.Name
			res.MeasurementUnit = item.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	var author domain.UserResponse
	if recipe.Author != nil {
		isSubscribed := false
		if principalID != "" && principalID != recipe.Author.ID.String() {
			var err error
			isSubscribed, err = s.subscriptionChecker.IsSubscribed(ctx, principalID, recipe.Author.ID.String())
			if err != nil {
				return domain.RecipeResponse{}, err
			}
		}
		author = domain.UserResponse{
			ID:           recipe.Author.ID.String(),
			Email:        recipe.Author.Email,
			Username:     recipe.Author.Username,
			FirstName:    recipe.Author.FirstName,
			LastName:     recipe.Author.LastName,
			IsSubscribed: isSubscribed,
			Avatar:       recipe.Author.AvatarURL,
		}
	}

	// Anonymous callers always see false, whatever the storage state.
	isFavorited := false
	isInCart := false
	if principalID != "" {
		var err error
		if isFavorited, err = s.recipeRepository.IsFavorited(ctx, principalID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isInCart, err = s.recipeRepository.IsInShoppingCart(ctx, principalID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}, nil
}

type recipePayload struct {
	tags  []*entities.Tag
	items []struct {
		ingredient *entities.Ingredient
		amount     int
	}
}

// validatePayload runs every payload rule before any write: non-empty
// unique tag and ingredient lists, bounded cooking time and amounts, and
// existence of every referenced tag and ingredient.
func (s *recipeService) validatePayload(ctx context.Context, tagIDs []string, ingredients []domain.RecipeIngredientRequest, cookingTime int) (*recipePayload, error) {
	if len(tagIDs) == 0 {
		return nil, domain.ErrNoTags
	}
	seenTags := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seenTags[id] {
			return nil, domain.ErrDuplicateTags
		}
		seenTags[id] = true
	}

	if len(ingredients) == 0 {
		return nil, domain.ErrNoIngredients
	}
	seenIngredients := make(map[string]bool, len(ingredients))
	for _, item := range ingredients {
		if seenIngredients[item.ID] {
			return nil, domain.ErrDuplicateIngredients
		}
		seenIngredients[item.ID] = true

		if item.Amount < domain.MinAmount || item.Amount > domain.MaxAmount {
			return nil, domain.ErrAmountOutOfRange
		}
	}

	if cookingTime < domain.MinCookingTime || cookingTime > domain.MaxCookingTime {
		return nil, domain.ErrCookingTimeOutOfRange
	}

	tags, err := s.tagRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, domain.ErrTagNotFound
	}

	ingredientIDs := make([]string, 0, len(ingredients))
	for _, item := range ingredients {
		ingredientIDs = append(ingredientIDs, item.ID)
	}
	found, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ingredients) {
		return nil, domain.ErrIngredientNotFound
	}

	byID := make(map[string]*entities.Ingredient, len(found))
	for _, ing := range found {
		byID[ing.ID.String()] = ing
	}

	payload := &recipePayload{tags: tags}
	for _, item := range ingredients {
		payload.items = append(payload.items, struct {
			ingredient *entities.Ingredient
			amount     int
		}{ingredient: byID[item.ID], amount: item.Amount})
	}
	return payload, nil
}

func (s *recipeService) uploadImage(recipeID uuid.UUID, image string) (string, error) {
	data, contentType, err := utils.DecodeBase64Image(image)
	if err != nil {
		return "", domain.ErrInvalidImage
	}

	fileName := fmt.Sprintf("recipe-%s", recipeID.String())
	objectKey, err := s.s3.UploadFile(fileName, data, contentType, "recipes", storage.AllowImage...)
	if err != nil {
		return "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, principalID string) (domain.RecipeResponse, error) {
	if req.Image == "" {
		return domain.RecipeResponse{}, domain.ErrImageRequired
	}

	payload, err := s.validatePayload(ctx, req.Tags, req.Ingredients, req.CookingTime)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	authorUUID, err := uuid.Parse(principalID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipeID := uuid.New()
	imageURL, err := s.uploadImage(recipeID, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          recipeID,
		AuthorID:    authorUUID,
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	items := make([]*entities.RecipeIngredient, 0, len(payload.items))
	for _, item := range payload.items {
		items = append(items, &entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: item.ingredient.ID,
			Amount:       item.amount,
		})
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, payload.tags, items); err != nil {
		// Rolled back, so the uploaded object has no owner.
		if key := s.s3.GetObjectKeyFromLink(imageURL); key != "" {
			_ = s.s3.DeleteFile(key)
		}
		return domain.RecipeResponse{}, err
	}

	created, err := s.recipeRepository.GetRecipeByID(ctx, recipeID.String())
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, created, principalID)
}

func canModify(recipe *entities.Recipe, principalID, role string) bool {
	return recipe.AuthorID.String() == principalID || role == domain.RoleAdmin
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id string, req domain.UpdateRecipeRequest, principalID, role string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if !canModify(recipe, principalID, role) {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	payload, err := s.validatePayload(ctx, req.Tags, req.Ingredients, req.CookingTime)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	// The previous object is removed only after the update commits; until
	// then the stored URL must stay valid. A same-type replacement reuses
	// the same object key, so there is nothing to delete in that case.
	oldImageURL := ""
	if req.Image != "" {
		imageURL, err := s.uploadImage(recipe.ID, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		if imageURL != recipe.ImageURL {
			oldImageURL = recipe.ImageURL
		}
		recipe.ImageURL = imageURL
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime

	items := make([]*entities.RecipeIngredient, 0, len(payload.items))
	for _, item := range payload.items {
		items = append(items, &entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipe.ID,
			IngredientID: item.ingredient.ID,
			Amount:       item.amount,
		})
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, payload.tags, items); err != nil {
		if oldImageURL != "" {
			if key := s.s3.GetObjectKeyFromLink(recipe.ImageURL); key != "" {
				_ = s.s3.DeleteFile(key)
			}
		}
		return domain.RecipeResponse{}, err
	}

	if oldImageURL != "" {
		if key := s.s3.GetObjectKeyFromLink(oldImageURL); key != "" {
			_ = s.s3.DeleteFile(key)
		}
	}

	updated, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, updated, principalID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id, principalID, role string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if !canModify(recipe, principalID, role) {
		return domain.ErrNotRecipeAuthor
	}

	if key := s.s3.GetObjectKeyFromLink(recipe.ImageURL); key != "" {
		_ = s.s3.DeleteFile(key)
	}

	return s.recipeRepository.DeleteRecipe(ctx, id)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.RecipeResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = domain.DefaultPageSize
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		item, err := s.toRecipeResponse(ctx, recipe, filter.PrincipalID)
		if err != nil {
			return nil, 0, err
		}
		response = append(response, item)
	}
	return response, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, id, principalID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, recipe, principalID)
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, principalID string) (domain.RecipeShortResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeShortResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeShortResponse{}, err
	}

	favorited, err := s.recipeRepository.IsFavorited(ctx, principalID, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if favorited {
		return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
	}

	userUUID, err := uuid.Parse(principalID)
	if err != nil {
		return domain.RecipeShortResponse{}, domain.ErrParseUUID
	}

	favorite := &entities.Favorite{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipe.ID,
	}
	if err := s.recipeRepository.AddFavorite(ctx, favorite); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.RecipeShortResponse{}, err
	}

	return ToRecipeShortResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, principalID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	deleted, err := s.recipeRepository.RemoveFavorite(ctx, principalID, recipeID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotFavorited
	}
	return nil
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, principalID string) (domain.RecipeShortResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeShortResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeShortResponse{}, err
	}

	inCart, err := s.recipeRepository.IsInShoppingCart(ctx, principalID, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if inCart {
		return domain.RecipeShortResponse{}, domain.ErrAlreadyInShoppingCart
	}

	userUUID, err := uuid.Parse(principalID)
	if err != nil {
		return domain.RecipeShortResponse{}, domain.ErrParseUUID
	}

	cart := &entities.ShoppingCart{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipe.ID,
	}
	if err := s.recipeRepository.AddToShoppingCart(ctx, cart); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyInShoppingCart
		}
		return domain.RecipeShortResponse{}, err
	}

	return ToRecipeShortResponse(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, principalID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	deleted, err := s.recipeRepository.RemoveFromShoppingCart(ctx, principalID, recipeID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotInShoppingCart
	}
	return nil
}

// BuildShoppingListText renders the aggregated list as the plain-text export,
// one `- {name} ({unit}) - {amount}` line per ingredient.
func BuildShoppingListText(items []domain.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString("Shopping list\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s) - %d\n", item.Name, item.MeasurementUnit, item.Amount)
	}
	return b.String()
}

// DownloadShoppingList returns the attachment filename and its plain-text
// content for the caller's aggregated cart.
func (s *recipeService) DownloadShoppingList(ctx context.Context, principalID string) (string, string, error) {
	user, err := s.userRepository.GetUserByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", domain.ErrUserNotFound
		}
		return "", "", err
	}

	items, err := s.recipeRepository.GetShoppingList(ctx, principalID)
	if err != nil {
		return "", "", err
	}

	filename := fmt.Sprintf("%s_shopping_list.txt", user.Username)
	return filename, BuildShoppingListText(items), nil
}
