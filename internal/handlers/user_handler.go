package handlers

import (
	"storeapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for signup and login.
type UserHandler struct {
	service *services.UserService
	resp    Responder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, resp Responder) *UserHandler {
	return &UserHandler{
		service: service,
		resp:    resp,
	}
}

// RegisterRoutes registers the public user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/signup", h.HandleSignup)
	userRoutes.Post("/login", h.HandleLogin)
}

// HandleSignup handles POST /users/signup.
func (h *UserHandler) HandleSignup(c *fiber.Ctx) error {
	var req services.SignupRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.Error(c, err)
	}
	res, err := h.service.Signup(c.UserContext(), req)
	return writeResult(c, h.resp, res, err, fiber.StatusCreated, "Signup successful")
}

// HandleLogin handles POST /users/login.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return h.resp.Error(c, err)
	}
	res, err := h.service.Login(c.UserContext(), req)
	return writeResult(c, h.resp, res, err, fiber.StatusOK, "Login successful")
}
