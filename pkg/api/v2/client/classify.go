package client

import (
	"encoding/json"
	"fmt"
	"reflect"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/appian-deploy/appian-deploy/internal/logger"
)

// validator is implemented by documents that can check their required fields
type validator interface {
	Validate() error
}

// Classify turns a completed response into a decoded document or a typed error.
// On 2xx the body is decoded into v; v is left untouched on any failure.
// Classify never retries.
func Classify(statusCode int, body []byte, url string, v interface{}) error {
	fields := map[string]interface{}{
		"status": statusCode,
		"url":    url,
	}

	err := classify(statusCode, body, v)
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("request failed", fields)
		return err
	}

	logger.DebugWithFields("request succeeded", fields)
	return nil
}

func classify(statusCode int, body []byte, v interface{}) error {
	message := string(body)

	switch {
	case statusCode >= 200 && statusCode < 300:
		return decode(body, v)
	case statusCode == fiber.StatusUnauthorized, statusCode == fiber.StatusForbidden:
		return &AuthenticationError{Status: statusCode, Message: message}
	case statusCode == fiber.StatusNotFound:
		return &NotFoundError{Status: statusCode, Message: message}
	case statusCode == fiber.StatusRequestTimeout:
		return &TimeoutError{Message: message}
	case statusCode >= 500 && statusCode < 600:
		return &ServerError{Status: statusCode, Message: message}
	default:
		return &APIError{Status: statusCode, Message: message}
	}
}

// decode unmarshals into a fresh value of v's type and only copies it into v
// when both decoding and validation succeed. An empty body is a decode failure
// whenever a target is given.
func decode(body []byte, v interface{}) error {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &DecodeError{Target: fmt.Sprintf("%T", v), Err: fmt.Errorf("target must be a non-nil pointer")}
	}
	target := rv.Type().Elem().String()

	fresh := reflect.New(rv.Type().Elem())
	if err := json.Unmarshal(body, fresh.Interface()); err != nil {
		return &DecodeError{Target: target, Err: err}
	}
	if val, ok := fresh.Interface().(validator); ok {
		if err := val.Validate(); err != nil {
			return &DecodeError{Target: target, Err: err}
		}
	}

	rv.Elem().Set(fresh.Elem())
	return nil
}
