package repositories

import (
	"context"

	"storeapi/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// Missing records are reported with an apperr.NotFound error.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update patches the supplied fields and returns the post-update product.
	Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error)
	// Delete removes the product and returns it as it was before removal.
	Delete(ctx context.Context, id string) (*models.Product, error)
}
