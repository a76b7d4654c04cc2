package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storeapi/internal/apperr"
	"storeapi/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at").Find(&products).Error; err != nil {
		return nil, apperr.E(apperr.Upstream, "get products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "get product", fmt.Errorf("product with ID %s not found", id))
		}
		return nil, apperr.E(apperr.Upstream, "get product", err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return apperr.E(apperr.Upstream, "create product", err)
	}
	return nil
}

// Update writes only the supplied columns, then reloads the row.
func (r *GORMProductRepository) Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.CategoryID != nil {
		fields["category_id"] = *in.CategoryID
	}

	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, apperr.E(apperr.Upstream, "update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.E(apperr.NotFound, "update product", fmt.Errorf("product with ID %s not found for update", id))
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a product by its ID and returns the removed row.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	product, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return nil, apperr.E(apperr.Upstream, "delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.E(apperr.NotFound, "delete product", fmt.Errorf("product with ID %s not found for deletion", id))
	}
	return product, nil
}
