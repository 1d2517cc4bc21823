package common

import (
	"errors"
	"time"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type      string    `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title     string    `json:"title"`              // Short, human-readable summary
	Status    int       `json:"status"`             // HTTP status code
	Detail    string    `json:"detail,omitempty"`   // Human-readable explanation
	Instance  string    `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Code      string    `json:"code,omitempty"`     // Stable domain error code
	Timestamp time.Time `json:"timestamp"`
	Errors    any       `json:"errors,omitempty"` // Optional: additional error details
}

// ContentTypeProblem is the media type of error responses.
const ContentTypeProblem = "application/problem+json"

// ProblemDetailsJSON writes err as a problem response. The status is derived
// from err unless an int is passed in opts; a string in opts overrides the
// detail, any other value is reported under "errors".
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, opts ...any) error {
	pd := ProblemDetails{
		Type:      "about:blank",
		Title:     title,
		Status:    ErrorToStatusCode(err),
		Instance:  c.OriginalURL(),
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		pd.Detail = err.Error()
		pd.Code = domain.CodeOf(err)
		if pd.Status == fiber.StatusInternalServerError {
			// Unclassified errors may carry driver text.
			pd.Detail = "Internal server error"
		}
	}
	for _, opt := range opts {
		switch v := opt.(type) {
		case int:
			pd.Status = v
		case string:
			pd.Detail = v
		case nil:
		default:
			pd.Errors = v
		}
	}
	c.Set(fiber.HeaderContentType, ContentTypeProblem)
	return c.Status(pd.Status).JSON(pd, ContentTypeProblem)
}

// SuccessResponseJSON writes data wrapped in a Response.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	if err == nil {
		return fiber.StatusBadRequest
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch domain.CodeOf(err) {
	case "insufficient_funds":
		return fiber.StatusBadRequest
	case "invalid_currency_code", "unsupported_currency", "invalid_syntax", "invalid_amount":
		return fiber.StatusUnprocessableEntity
	case "unauthorized":
		return fiber.StatusUnauthorized
	case "transfer_not_allowed", "user_unconfirmed":
		return fiber.StatusForbidden
	case "timeout":
		return fiber.StatusGatewayTimeout
	case "external_service_error":
		return fiber.StatusBadGateway
	}
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindInvalidInput:
		return fiber.StatusBadRequest
	case domain.KindPreconditionFailed:
		return fiber.StatusForbidden
	case domain.KindUpstreamFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
