package vision

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/vbonduro/fridgechef/internal/domain"
)

// ExtractionPrompt is the shared instruction used by all vision adapters.
const ExtractionPrompt = "Only output the ingredients in the photo, comma separated, write nothing else."

// Extractor turns one image into ingredient names. Implementations make one
// outbound call per invocation and keep no state between calls. Every failure
// is returned as a *domain.ExtractionError.
type Extractor interface {
	Extract(ctx context.Context, image domain.ImageRecord) ([]string, error)
}

var errEmptyImage = errors.New("image payload is empty")

// MimeType returns the image media type, falling back to image/jpeg.
func MimeType(image domain.ImageRecord) string {
	switch image.MimeType {
	case "image/png", "image/gif", "image/webp", "image/jpeg":
		return image.MimeType
	default:
		return "image/jpeg"
	}
}

// Base64 encodes the image payload for transport.
func Base64(image domain.ImageRecord) (string, error) {
	if len(image.Data) == 0 {
		return "", errEmptyImage
	}
	return base64.StdEncoding.EncodeToString(image.Data), nil
}

// DataURI encodes the image as a data: URI suitable for image_url blocks.
func DataURI(image domain.ImageRecord) (string, error) {
	encoded, err := Base64(image)
	if err != nil {
		return "", err
	}
	return "data:" + MimeType(image) + ";base64," + encoded, nil
}

// Prompt returns the extraction instruction, extended with the user's hint
// when one was supplied.
func Prompt(image domain.ImageRecord) string {
	if image.Context == "" {
		return ExtractionPrompt
	}
	return ExtractionPrompt + "\nContext: " + image.Context
}
