package service

import (
	"encoding/base64"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
)

// imageDataURL encodes a stored image as an embeddable base64 data URI.
// Returns nil when no image is present.
func imageDataURL(img *domain.Image) *string {
	if img == nil || len(img.Data) == 0 {
		return nil
	}
	uri := "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	return &uri
}

// validateImage checks an uploaded image against the allow-list and size cap.
func validateImage(img *domain.Image) error {
	if img == nil {
		return nil
	}
	if !domain.ValidImageType(img.ContentType) {
		return domain.Invalid("invalid image type, allowed types: JPEG, PNG, GIF, WebP")
	}
	if len(img.Data) > domain.MaxImageBytes {
		return domain.Invalid("file too large, maximum size is 5MB")
	}
	return nil
}
