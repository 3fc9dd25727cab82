package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Category is a colored tag used to filter products.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Color       string    `json:"color"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const DefaultCategoryColor = "#000000"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether color is a #RGB or #RRGGBB hex string.
func ValidColor(color string) bool {
	return hexColor.MatchString(color)
}
