package services

import (
	"context"
	"errors"

	"storeapi/internal/apperr"
	"storeapi/internal/models"
	"storeapi/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	events   EventPublisher
	validate *validator.Validate
	log      *zap.Logger
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		events:   events,
		validate: newValidator(),
		log:      log,
	}
}

// GetProducts retrieves all products.
func (s *ProductService) GetProducts(ctx context.Context) (Result[[]models.Product], error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.Error("Error fetching products", zap.Error(err))
		return Result[[]models.Product]{}, apperr.E(apperr.Upstream, "get products", err)
	}
	if len(products) == 0 {
		return Fail[[]models.Product]("No products found"), nil
	}
	return Ok(products), nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (Result[*models.Product], error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return Fail[*models.Product]("Product not found"), nil
		}
		s.log.Error("Error fetching product", zap.String("id", id), zap.Error(err))
		return Result[*models.Product]{}, apperr.E(apperr.Upstream, "get product", err)
	}
	return Ok(product), nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (Result[*models.Product], error) {
	if in.Price == nil {
		return Result[*models.Product]{}, apperr.Validationf("create product", "Field 'price' failed on the 'required' tag")
	}
	product := &models.Product{}
	in.Apply(product)
	if err := s.validate.Struct(product); err != nil {
		return Result[*models.Product]{}, apperr.Validationf("create product", "%s", describeValidation(err))
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if apperr.Is(err, apperr.Validation) {
			return Result[*models.Product]{}, err
		}
		s.log.Error("Error creating product", zap.Error(err))
		return Result[*models.Product]{}, apperr.E(apperr.Upstream, "create product", err)
	}
	if product.ID == "" {
		return Fail[*models.Product]("Failed to create product"), nil
	}

	publishEvent(ctx, s.events, s.log, EventProductCreated, product)
	return Ok(product), nil
}

// UpdateProduct patches the supplied fields and returns the updated product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (Result[*models.Product], error) {
	if err := s.validatePatch(in); err != nil {
		return Result[*models.Product]{}, err
	}

	// Nothing to write: answer with the stored document, no event.
	if in.Empty() {
		product, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				return Fail[*models.Product]("Failed to update product"), nil
			}
			s.log.Error("Error updating product", zap.String("id", id), zap.Error(err))
			return Result[*models.Product]{}, apperr.E(apperr.Upstream, "update product", err)
		}
		return Ok(product), nil
	}

	product, err := s.repo.Update(ctx, id, in)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.NotFound:
			return Fail[*models.Product]("Failed to update product"), nil
		case apperr.Validation:
			return Result[*models.Product]{}, err
		}
		s.log.Error("Error updating product", zap.String("id", id), zap.Error(err))
		return Result[*models.Product]{}, apperr.E(apperr.Upstream, "update product", err)
	}

	publishEvent(ctx, s.events, s.log, EventProductUpdated, product)
	return Ok(product), nil
}

// DeleteProduct removes a product and returns it.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (Result[*models.Product], error) {
	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return Fail[*models.Product]("Failed to delete product"), nil
		}
		s.log.Error("Error deleting product", zap.String("id", id), zap.Error(err))
		return Result[*models.Product]{}, apperr.E(apperr.Upstream, "delete product", err)
	}

	publishEvent(ctx, s.events, s.log, EventProductDeleted, product)
	return Ok(product), nil
}

// validatePatch applies the create rules to the fields present in a patch.
func (s *ProductService) validatePatch(in models.ProductInput) error {
	if in.Name != nil {
		if err := s.validate.Var(*in.Name, "required"); err != nil {
			return apperr.Validationf("update product", "Field 'name' failed on the 'required' tag")
		}
	}
	if in.CategoryID != nil {
		if err := s.validate.Var(*in.CategoryID, "required,mongodb"); err != nil {
			return apperr.Validationf("update product", "Field 'categoryId' failed on the '%s' tag", validationTag(err))
		}
	}
	return nil
}

func validationTag(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return "required"
}
