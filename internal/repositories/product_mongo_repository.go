package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storeapi/internal/apperr"
	"storeapi/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductsCollection is the collection holding product documents.
const ProductsCollection = "products"

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Price       float64            `bson:"price"`
	CategoryID  primitive.ObjectID `bson:"categoryId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *productDocument) model() *models.Product {
	return &models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		CategoryID:  d.CategoryID.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	col *mongo.Collection
}

// NewMongoProductRepository creates a repository over db's products collection.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection(ProductsCollection)}
}

// GetAll retrieves every product document.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cur, err := r.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, apperr.E(apperr.Upstream, "get products", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.E(apperr.Upstream, "get products", err)
	}

	products := make([]models.Product, 0, len(docs))
	for i := range docs {
		products = append(products, *docs[i].model())
	}
	return products, nil
}

// GetByID retrieves a product by its hex ID. A malformed ID cannot match any
// document and is reported as not found.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, productNotFound("get product", id)
	}

	var doc productDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, productNotFound("get product", id)
		}
		return nil, apperr.E(apperr.Upstream, "get product", err)
	}
	return doc.model(), nil
}

// Create inserts product and fills in its ID and timestamps.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	categoryID, err := primitive.ObjectIDFromHex(product.CategoryID)
	if err != nil {
		return apperr.Validationf("create product", "categoryId %q is not a valid identifier", product.CategoryID)
	}

	now := time.Now().UTC()
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.ID != "" {
		if doc.ID, err = primitive.ObjectIDFromHex(product.ID); err != nil {
			return apperr.Validationf("create product", "id %q is not a valid identifier", product.ID)
		}
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return apperr.E(apperr.Upstream, "create product", err)
	}
	*product = *doc.model()
	return nil
}

// Update applies a $set of the supplied fields and returns the document
// after the update.
func (r *MongoProductRepository) Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, productNotFound("update product", id)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.CategoryID != nil {
		categoryID, err := primitive.ObjectIDFromHex(*in.CategoryID)
		if err != nil {
			return nil, apperr.Validationf("update product", "categoryId %q is not a valid identifier", *in.CategoryID)
		}
		set["categoryId"] = categoryID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDocument
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, productNotFound("update product", id)
		}
		return nil, apperr.E(apperr.Upstream, "update product", err)
	}
	return doc.model(), nil
}

// Delete removes the product and returns the removed document.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, productNotFound("delete product", id)
	}

	var doc productDocument
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, productNotFound("delete product", id)
		}
		return nil, apperr.E(apperr.Upstream, "delete product", err)
	}
	return doc.model(), nil
}

func productNotFound(op, id string) error {
	return apperr.E(apperr.NotFound, op, fmt.Errorf("product with ID %s not found", id))
}
