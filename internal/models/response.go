package models

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint replies with.
type APIResponse struct {
	Data       any    `json:"data"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
}

// NewResponse builds an envelope; Success is derived from the status code.
func NewResponse(data any, message string, statusCode int) APIResponse {
	return APIResponse{
		Data:       data,
		Message:    message,
		StatusCode: statusCode,
		Success:    statusCode < 400,
	}
}

// Respond writes data in the envelope with the given status.
func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(NewResponse(data, message, status))
}

// OK writes a 200 envelope.
func OK(c *fiber.Ctx, data any, message string) error {
	return Respond(c, fiber.StatusOK, data, message)
}

// Created writes a 201 envelope.
func Created(c *fiber.Ctx, data any, message string) error {
	return Respond(c, fiber.StatusCreated, data, message)
}
