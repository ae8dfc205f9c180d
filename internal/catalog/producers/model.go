package producers

import (
	"errors"
	"time"
)

// Producer is a live catalog producer (brand/manufacturer).
type Producer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProducerInput is the mutable payload for create/update. It doubles as
// the body shape of producer moderation requests.
type ProducerInput struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Country     string `json:"country" validate:"max=80"`
	Description string `json:"description" validate:"max=2000"`
}

var (
	ErrNotFound      = errors.New("producers: not found")
	ErrAlreadyExists = errors.New("producers: already exists")
	ErrValidation    = errors.New("producers: invalid input")
)
