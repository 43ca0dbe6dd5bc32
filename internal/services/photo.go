package services

import (
	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/Raiterion-coder/finance-manager/internal/errors"
)

// acceptedPhotoTypes are the receipt image formats we store.
var acceptedPhotoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/bmp":  true,
	"image/gif":  true,
	"image/webp": true,
}

// detectPhotoType sniffs data and returns its MIME type if it is an accepted image.
func detectPhotoType(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", apperrors.WithMessage(apperrors.ErrInvalidPhoto, "photo is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", apperrors.ErrPhotoTooLarge
	}

	mt := mimetype.Detect(data)
	if !acceptedPhotoTypes[mt.String()] {
		return "", apperrors.ErrInvalidPhoto
	}
	return mt.String(), nil
}

// PhotoExtension returns the file extension (with dot) for a stored photo type.
func PhotoExtension(mimeType string) string {
	if mt := mimetype.Lookup(mimeType); mt != nil {
		return mt.Extension()
	}
	return ""
}
