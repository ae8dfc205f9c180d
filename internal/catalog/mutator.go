// Package catalog glues the moderation workflow to the live catalog:
// approved request bodies are translated into category, producer and
// product mutations.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hivemart/hivemart/internal/catalog/categories"
	"github.com/hivemart/hivemart/internal/catalog/producers"
	"github.com/hivemart/hivemart/internal/catalog/products"
	"github.com/hivemart/hivemart/internal/moderation"
)

// Mutator implements moderation.CatalogPort over the catalog services.
type Mutator struct {
	categories *categories.Service
	producers  *producers.Service
	products   *products.Service
}

func NewMutator(categoryService *categories.Service, producerService *producers.Service, productService *products.Service) *Mutator {
	return &Mutator{
		categories: categoryService,
		producers:  producerService,
		products:   productService,
	}
}

// Apply dispatches an approved request body to the matching catalog
// mutation. Update bodies carry the target entity id alongside the
// input fields.
func (m *Mutator) Apply(ctx context.Context, t moderation.RequestType, body json.RawMessage) error {
	switch t {
	case moderation.TypeCreateCategory:
		var input categories.CategoryInput
		if err := json.Unmarshal(body, &input); err != nil {
			return fmt.Errorf("decode category body: %w", err)
		}
		_, err := m.categories.Create(ctx, input)
		return err

	case moderation.TypeUpdateCategory:
		var payload struct {
			ID int64 `json:"id"`
			categories.CategoryInput
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("decode category body: %w", err)
		}
		_, err := m.categories.Update(ctx, payload.ID, payload.CategoryInput)
		return err

	case moderation.TypeCreateProducer:
		var input producers.ProducerInput
		if err := json.Unmarshal(body, &input); err != nil {
			return fmt.Errorf("decode producer body: %w", err)
		}
		_, err := m.producers.Create(ctx, input)
		return err

	case moderation.TypeUpdateProducer:
		var payload struct {
			ID int64 `json:"id"`
			producers.ProducerInput
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("decode producer body: %w", err)
		}
		_, err := m.producers.Update(ctx, payload.ID, payload.ProducerInput)
		return err

	case moderation.TypeCreateProduct:
		var input products.ProductInput
		if err := json.Unmarshal(body, &input); err != nil {
			return fmt.Errorf("decode product body: %w", err)
		}
		_, err := m.products.Create(ctx, input)
		return err

	case moderation.TypeUpdateProduct:
		var payload struct {
			ID int64 `json:"id"`
			products.ProductInput
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("decode product body: %w", err)
		}
		_, err := m.products.Update(ctx, payload.ID, payload.ProductInput)
		return err

	default:
		return fmt.Errorf("unsupported request type %q", t)
	}
}
