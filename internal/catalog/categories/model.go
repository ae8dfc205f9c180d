package categories

import (
	"errors"
	"time"
)

// Category is a live catalog category.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryInput is the mutable payload for create/update. It doubles as
// the body shape of category moderation requests.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("categories: not found")
	// ErrAlreadyExists indicates a duplicate name.
	ErrAlreadyExists = errors.New("categories: already exists")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("categories: invalid input")
)
