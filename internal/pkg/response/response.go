package response

import "github.com/gofiber/fiber/v2"

// ErrorBody is the error payload shape shared by every failure response
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// OK sends a 200 response with the given body
func OK(c *fiber.Ctx, body interface{}) error {
	return c.JSON(body)
}

// Created sends a 201 response with the given body
func Created(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

// Error sends an error response with a localized message
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(ErrorBody{Message: message})
}

// ErrorWithDetail sends an error response carrying an extra detail string
func ErrorWithDetail(c *fiber.Ctx, statusCode int, message, detail string) error {
	return c.Status(statusCode).JSON(ErrorBody{Message: message, Error: detail})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}
