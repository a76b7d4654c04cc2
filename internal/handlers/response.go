package handlers

import (
	"storeapi/internal/apperr"
	"storeapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// envelope is the body of every controller response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// Responder maps service outcomes onto HTTP statuses and the JSON envelope.
// It is the only place status codes for controller actions are decided.
type Responder struct {
	// HideInternalErrors replaces the cause of 500 responses with a
	// generic message.
	HideInternalErrors bool
	Log                *zap.Logger
}

// Error writes the response for an error returned by a service.
func (r Responder) Error(c *fiber.Ctx, err error) error {
	message := apperr.Message(err)
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.NotFound, apperr.Conflict:
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: message})
	}

	r.Log.Error("request failed",
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	if r.HideInternalErrors || message == "" {
		message = "Server error"
	}
	return c.Status(fiber.StatusInternalServerError).JSON(envelope{Success: false, Message: message})
}

// writeResult writes a service outcome: errors via Error, failures as 400,
// successes with status and the action's fixed message.
func writeResult[T any](c *fiber.Ctx, r Responder, res services.Result[T], err error, status int, message string) error {
	if err != nil {
		return r.Error(c, err)
	}
	if !res.Succeeded() {
		msg := res.Message()
		if msg == "" {
			msg = "Something went wrong"
		}
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: msg})
	}
	return c.Status(status).JSON(envelope{Success: true, Data: res.Data(), Message: message})
}

// parseBody decodes a JSON body into out. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperr.Validationf("parse body", "Invalid request body")
	}
	return nil
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
