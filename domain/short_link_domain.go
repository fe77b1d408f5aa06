package domain

import (
	"errors"
)

var (
	MessageSuccessResolveShortLink = "success resolve short link"
	MessageFailedResolveShortLink  = "failed to resolve short link"

	ErrShortLinkNotFound = errors.New("short link not found")
)

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}
