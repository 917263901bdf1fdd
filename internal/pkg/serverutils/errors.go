package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ApiError carries an HTTP status with a user-facing message. Services return
// it for expected failures (not found, bad input); everything else maps to a
// 500 with a generic message.
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(statusCode int, message string) *ApiError {
	return &ApiError{StatusCode: statusCode, Message: message}
}

func NotFoundError(message string) *ApiError {
	return NewApiError(fiber.StatusNotFound, message)
}

func BadRequestError(message string) *ApiError {
	return NewApiError(fiber.StatusBadRequest, message)
}

// ServiceUnavailableError signals a dependency outage (store, embedding
// endpoint). Distinct from empty results: a query that matches nothing still
// returns 200 with an empty list.
func ServiceUnavailableError(message string) *ApiError {
	return NewApiError(fiber.StatusServiceUnavailable, message)
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// uniform envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.StatusCode).JSON(ErrorResponse(apiErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
