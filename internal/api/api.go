// Package api defines the JSON wire format shared by the HTTP server and client.
//
// Every response uses the envelope
//
//	{"data": ..., "message": "...", "success": true}
//
// Paginated listings add a "pagination" object. Failures set success=false
// and carry a machine-readable code next to the human-readable message.
package api

import "github.com/manvel7/Antd-small-test/internal/user"

// Route paths, relative to the API base URL.
const (
	PathUsers      = "/users"
	PathUserSearch = "/users/search"
)

// PathUser returns the path of a single user.
func PathUser(id string) string {
	return PathUsers + "/" + id
}

// Response is the success envelope.
type Response[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PageResponse is the envelope of a paginated listing.
type PageResponse struct {
	Data       []user.Record `json:"data"`
	Pagination Pagination    `json:"pagination"`
	Message    string        `json:"message,omitempty"`
	Success    bool          `json:"success"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Message string       `json:"message"`
	Code    string       `json:"code,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
	Success bool         `json:"success"`
}

// FieldError reports a rejected field of a request body.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error codes.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeValidationFailed = "validation_failed"
	CodeNotFound         = "not_found"
	CodeInternal         = "internal"
	CodeInvalidQuery     = "invalid_query"
)
