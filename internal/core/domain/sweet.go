package domain

import "time"

const (
	MaxSweetNameLen = 100
	MaxCategoryLen  = 50

	// MaxImageBytes caps uploaded image payloads at 5 MB.
	MaxImageBytes = 5 * 1024 * 1024
)

// allowedImageTypes is the closed set of accepted image content types.
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// ValidImageType reports whether contentType is on the image allow-list.
func ValidImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// Image is a stored binary payload with its declared content type.
type Image struct {
	Data        []byte
	ContentType string
}

// Sweet is the inventory aggregate root.
type Sweet struct {
	ID        string
	Name      string
	Category  string
	Price     float64
	Quantity  int64
	Image     *Image // optional
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InStock reports whether at least one unit can be purchased.
func (s *Sweet) InStock() bool {
	return s.Quantity > 0
}
