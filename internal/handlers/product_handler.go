package handlers

import (
	"storeapi/internal/middleware"
	"storeapi/internal/models"
	"storeapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	resp    Responder
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, resp Responder) *ProductHandler {
	return &ProductHandler{
		service: service,
		resp:    resp,
	}
}

// RegisterRoutes registers the product routes behind auth.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products", auth)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	res, err := h.service.GetProducts(c.UserContext())
	return writeResult(c, h.resp, res, err, fiber.StatusOK, "Fetched products successfully")
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	res, err := h.service.GetProduct(c.UserContext(), productID(c))
	return writeResult(c, h.resp, res, err, fiber.StatusOK, "Data Fetched Successfully")
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := parseBody(c, &in); err != nil {
		return h.resp.Error(c, err)
	}
	res, err := h.service.CreateProduct(c.UserContext(), in)
	if err == nil && res.Succeeded() {
		h.audit(c, "product created", res.Data().ID)
	}
	return writeResult(c, h.resp, res, err, fiber.StatusOK, "Product created successfully")
}

// HandleUpdateProduct patches an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := parseBody(c, &in); err != nil {
		return h.resp.Error(c, err)
	}
	res, err := h.service.UpdateProduct(c.UserContext(), productID(c), in)
	if err == nil && res.Succeeded() {
		h.audit(c, "product updated", res.Data().ID)
	}
	return writeResult(c, h.resp, res, err, fiber.StatusOK, "Product updated successfully")
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	res, err := h.service.DeleteProduct(c.UserContext(), productID(c))
	if err == nil && res.Succeeded() {
		h.audit(c, "product deleted", res.Data().ID)
	}
	return writeResult(c, h.resp, res, err, fiber.StatusOK, "Deleted successfully")
}

// productID copies the route parameter out of Fiber's reusable buffer.
func productID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

// audit logs a catalogue write together with the authenticated caller.
func (h *ProductHandler) audit(c *fiber.Ctx, msg, id string) {
	if h.resp.Log == nil {
		return
	}
	fields := []zap.Field{zap.String("product_id", id), zap.String("request_id", requestID(c))}
	if user, ok := middleware.CurrentUser(c); ok {
		fields = append(fields, zap.String("user_id", user.ID), zap.String("user_email", user.Email))
	}
	h.resp.Log.Info(msg, fields...)
}
