package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/prodgeti/foodgram/domain"
	"github.com/prodgeti/foodgram/internal/api/presenters"
	"github.com/prodgeti/foodgram/pkg/shortlink"
)

type (
	ShortLinkHandler interface {
		GetShortLink(c *fiber.Ctx) error
		Redirect(c *fiber.Ctx) error
	}

	shortLinkHandler struct {
		shortLinkService shortlink.ShortLinkService
	}
)

func NewShortLinkHandler(shortLinkService shortlink.ShortLinkService) ShortLinkHandler {
	return &shortLinkHandler{shortLinkService: shortLinkService}
}

func (h *shortLinkHandler) GetShortLink(c *fiber.Ctx) error {
	res, err := h.shortLinkService.GetOrCreateShortLink(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRecipeNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetShortLink, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetShortLink, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetShortLink)
}

func (h *shortLinkHandler) Redirect(c *fiber.Ctx) error {
	target, err := h.shortLinkService.ResolveShortLink(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, domain.ErrShortLinkNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedResolveShortLink, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedResolveShortLink, err)
	}

	return c.Redirect(target, fiber.StatusFound)
}
