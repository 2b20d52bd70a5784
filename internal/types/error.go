package types

import "fmt"

// CustomError carries an HTTP status code and a category through the
// fiber error handler so failures render in the shared envelope.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// NewCustomError builds a CustomError.
func NewCustomError(code int, message, errorType string) *CustomError {
	return &CustomError{Code: code, Message: message, Type: errorType}
}
