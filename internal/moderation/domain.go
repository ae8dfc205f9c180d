// Package moderation implements the supplier request workflow: suppliers
// submit catalog change requests, moderators approve or reject them, and
// approval applies the change to the live catalog in the same
// transaction that records the decision.
package moderation

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RequestType identifies the kind of catalog change a request carries.
type RequestType string

const (
	TypeCreateProduct  RequestType = "create-product"
	TypeUpdateProduct  RequestType = "update-product"
	TypeCreateCategory RequestType = "create-category"
	TypeUpdateCategory RequestType = "update-category"
	TypeCreateProducer RequestType = "create-producer"
	TypeUpdateProducer RequestType = "update-producer"
)

// ParseRequestType validates a raw type string against the closed set.
func ParseRequestType(raw string) (RequestType, bool) {
	switch t := RequestType(raw); t {
	case TypeCreateProduct, TypeUpdateProduct,
		TypeCreateCategory, TypeUpdateCategory,
		TypeCreateProducer, TypeUpdateProducer:
		return t, true
	default:
		return "", false
	}
}

// IsUpdate reports whether the type mutates an existing catalog entity,
// which requires the body to reference that entity's id.
func (t RequestType) IsUpdate() bool {
	switch t {
	case TypeUpdateProduct, TypeUpdateCategory, TypeUpdateProducer:
		return true
	}
	return false
}

// Status is the request lifecycle state. Transitions are one-way:
// PENDING to APPROVED or REJECTED, never back.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// RequestRecord is a persisted moderation request.
type RequestRecord struct {
	ID          uuid.UUID       `json:"id"`
	Type        RequestType     `json:"type"`
	Body        json.RawMessage `json:"body"`
	SubmittedBy int64           `json:"submitted_by"`
	Status      Status          `json:"status"`
	DecidedBy   *int64          `json:"decided_by,omitempty"`
	DecidedAt   *time.Time      `json:"decided_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

var (
	ErrNotFound = errors.New("moderation: request not found")
	// ErrInvalidState signals a decision attempt on a request that is no
	// longer pending.
	ErrInvalidState = errors.New("moderation: request is not pending")
	ErrForbidden    = errors.New("moderation: operation not allowed for this principal")
	ErrValidation   = errors.New("moderation: invalid request payload")
)
