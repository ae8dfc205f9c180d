package products

import (
	"errors"
	"time"
)

// Product is a live catalog product row joined with its category and
// producer names for listing.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	ProducerID   int64     `json:"producer_id"`
	ProducerName string    `json:"producer_name,omitempty"`
	Price        float64   `json:"price"`
	Stock        int       `json:"stock"`
	Images       []string  `json:"images"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductInput is the mutable payload for create/update. It doubles as
// the body shape of product moderation requests.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	CategoryID  int64    `json:"category_id" validate:"required,gt=0"`
	ProducerID  int64    `json:"producer_id" validate:"required,gt=0"`
	Price       float64  `json:"price" validate:"gte=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Images      []string `json:"images" validate:"max=10,dive,url"`
	IsActive    *bool    `json:"is_active"`
}

var (
	ErrNotFound   = errors.New("products: not found")
	ErrValidation = errors.New("products: invalid input")
	// ErrMissingRelation indicates an unknown category or producer reference.
	ErrMissingRelation = errors.New("products: unknown category or producer")
)
