package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrNotDataURI = errors.New("not a base64 data URI")

// DecodeBase64Image parses an inline image of the form
// "data:image/png;base64,<payload>" and returns the raw bytes and MIME type.
func DecodeBase64Image(data string) ([]byte, string, error) {
	if !strings.HasPrefix(data, "data:") {
		return nil, "", ErrNotDataURI
	}
	rest := strings.TrimPrefix(data, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, "", ErrNotDataURI
	}
	contentType := rest[:sep]
	payload := rest[sep+len(";base64,"):]

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return raw, contentType, nil
}
