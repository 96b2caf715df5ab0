package client

import (
	"errors"
	"fmt"

	fiber "github.com/gofiber/fiber/v2"
)

// AuthenticationError is a 401 or 403 response
type AuthenticationError struct {
	Status  int
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of the response
func (e *AuthenticationError) StatusCode() int { return e.Status }

// Unwrap exposes the response as a fiber error
func (e *AuthenticationError) Unwrap() error { return fiber.NewError(e.Status, e.Message) }

// NotFoundError is a 404 response
type NotFoundError struct {
	Status  int
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found (HTTP %d): %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of the response
func (e *NotFoundError) StatusCode() int { return e.Status }

// Unwrap exposes the response as a fiber error
func (e *NotFoundError) Unwrap() error { return fiber.NewError(e.Status, e.Message) }

// TimeoutError is a 408 reported by the server. It is unrelated to the
// client-side polling deadline.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("server reported request timeout (HTTP 408): %s", e.Message)
}

// StatusCode returns the HTTP status of the response
func (e *TimeoutError) StatusCode() int { return fiber.StatusRequestTimeout }

// Unwrap exposes the response as a fiber error
func (e *TimeoutError) Unwrap() error {
	return fiber.NewError(fiber.StatusRequestTimeout, e.Message)
}

// ServerError is a 5xx response
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of the response
func (e *ServerError) StatusCode() int { return e.Status }

// Unwrap exposes the response as a fiber error
func (e *ServerError) Unwrap() error { return fiber.NewError(e.Status, e.Message) }

// APIError is any other non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status of the response
func (e *APIError) StatusCode() int { return e.Status }

// Unwrap exposes the response as a fiber error
func (e *APIError) Unwrap() error { return fiber.NewError(e.Status, e.Message) }

// DecodeError is a 2xx response whose body did not decode into the expected document
type DecodeError struct {
	// Target names the document type that was expected
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error decoding %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError is a failure to complete the request at all (DNS, TLS, socket, client timeout)
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error sending request %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 response
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
