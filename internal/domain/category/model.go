package category

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyName is returned when a category has no name.
var ErrEmptyName = errors.New("category name cannot be empty")

// Category groups products.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
