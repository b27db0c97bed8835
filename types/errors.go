/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

import "fmt"

// Error codes carried by APIError.
const (
	CodeNotFound   = "not_found"
	CodeValidation = "invalid_request"
	CodeConflict   = "conflict"
	CodeInternal   = "internal"
)

// APIError is the JSON body of every failed API response.
type APIError struct {
	Message string `json:"error"`
	Code    string `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new API error body.
func NewAPIError(code string, message string) *APIError {
	return &APIError{Code: code, Message: message}
}
