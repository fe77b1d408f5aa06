package shortlink

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prodgeti/foodgram/domain"
	"github.com/prodgeti/foodgram/entities"
	"github.com/prodgeti/foodgram/internal/utils"
)

const (
	codeLength   = 8
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Collisions at this length are vanishingly rare; the retry loop exists
	// for the unique-index backstop.
	maxGenerateAttempts = 5
)

type (
	RecipeGetter interface {
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
	}

	ShortLinkService interface {
		GetOrCreateShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error)
		ResolveShortLink(ctx context.Context, code string) (string, error)
	}

	shortLinkService struct {
		shortLinkRepository ShortLinkRepository
		recipeRepository    RecipeGetter
	}
)

func NewShortLinkService(shortLinkRepository ShortLinkRepository, recipeRepository RecipeGetter) ShortLinkService {
	return &shortLinkService{
		shortLinkRepository: shortLinkRepository,
		recipeRepository:    recipeRepository,
	}
}

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// GetOrCreateShortLink returns the existing code for a recipe or generates a
// new one; once created the code never changes.
func (s *shortLinkService) GetOrCreateShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error) {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortLinkResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortLinkResponse{}, err
	}

	if link, err := s.shortLinkRepository.GetByRecipeID(ctx, recipeID); err == nil {
		return domain.ShortLinkResponse{ShortLink: s.publicLink(link.ShortCode)}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ShortLinkResponse{}, err
	}

	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.ShortLinkResponse{}, domain.ErrParseUUID
	}

	var lastErr error
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return domain.ShortLinkResponse{}, err
		}

		link := &entities.ShortLink{
			ID:           uuid.New(),
			RecipeID:     recipeUUID,
			ShortCode:    code,
			OriginalLink: fmt.Sprintf("%s/recipes/%s", utils.GetConfig("APP_URL"), recipeID),
		}
		if err := s.shortLinkRepository.CreateShortLink(ctx, link); err != nil {
			lastErr = err
			continue
		}
		return domain.ShortLinkResponse{ShortLink: s.publicLink(code)}, nil
	}

	// A concurrent request may have created the link while we were retrying.
	if link, err := s.shortLinkRepository.GetByRecipeID(ctx, recipeID); err == nil {
		return domain.ShortLinkResponse{ShortLink: s.publicLink(link.ShortCode)}, nil
	}
	return domain.ShortLinkResponse{}, lastErr
}

func (s *shortLinkService) ResolveShortLink(ctx context.Context, code string) (string, error) {
	link, err := s.shortLinkRepository.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrShortLinkNotFound
		}
		return "", err
	}
	return link.OriginalLink, nil
}

func (s *shortLinkService) publicLink(code string) string {
	return fmt.Sprintf("%s/s/%s", utils.GetConfig("APP_URL"), code)
}
