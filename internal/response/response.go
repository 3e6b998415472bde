// Package response renders the wire contract of the crash-report API. Every
// rejection is a same-shape JSON object with an "error" string; structured
// extras (details, retry_after) appear only where they help the client
// self-correct. No response ever carries stack traces or secrets.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// IngestAccepted is the success body of an admitted report.
type IngestAccepted struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// APIError is the error body shared by all rejections.
type APIError struct {
	Error         string   `json:"error"`
	Details       []string `json:"details,omitempty"`
	RetryAfter    *int     `json:"retry_after,omitempty"`
	StoredLocally bool     `json:"stored_locally,omitempty"`
}

// Pagination describes one page of the read API.
type Pagination struct {
	Limit    int `json:"limit"`
	Offset   int `json:"offset"`
	Returned int `json:"returned"`
}

// ReadResult is the success body of the read API.
type ReadResult struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Accepted sends 200 for a persisted report.
func Accepted(c echo.Context, id string) error {
	return c.JSON(http.StatusOK, IngestAccepted{Success: true, ID: id})
}

// RateLimited sends 429 with the seconds left in the current window.
func RateLimited(c echo.Context, retryAfter int) error {
	return c.JSON(http.StatusTooManyRequests, APIError{Error: "Rate limit exceeded", RetryAfter: &retryAfter})
}

// InvalidSignature sends 401.
func InvalidSignature(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, APIError{Error: "Invalid signature"})
}

// InvalidJSON sends 400 for a body that does not parse.
func InvalidJSON(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, APIError{Error: "Invalid JSON"})
}

// InvalidCrashData sends 400 with every violated validation rule.
func InvalidCrashData(c echo.Context, details []string) error {
	return c.JSON(http.StatusBadRequest, APIError{Error: "Invalid crash data", Details: details})
}

// BadRequest sends 400 with a caller-supplied message.
func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, APIError{Error: msg})
}

// PayloadTooLarge sends 413.
func PayloadTooLarge(c echo.Context) error {
	return c.JSON(http.StatusRequestEntityTooLarge, APIError{Error: "Payload too large"})
}

// MethodNotAllowed sends 405.
func MethodNotAllowed(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, APIError{Error: "Method not allowed"})
}

// PersistenceFailed sends 500 and tells the client library to keep its local
// copy and retry later.
func PersistenceFailed(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, APIError{Error: "Failed to save crash report", StoredLocally: true})
}

// ReadFailed sends 500 for a failed read query.
func ReadFailed(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, APIError{Error: "Failed to read crash reports"})
}

// Internal sends 500 for anything unanticipated.
func Internal(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, APIError{Error: "Internal server error", StoredLocally: true})
}

// Read sends 200 with query results and pagination.
func Read(c echo.Context, data any, p *Pagination) error {
	return c.JSON(http.StatusOK, ReadResult{Success: true, Data: data, Pagination: p})
}
