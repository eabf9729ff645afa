package gor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chiefastro/gor/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrMalformedInput         = domain.ErrMalformedInput
	ErrBackendUnavailable     = domain.ErrBackendUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError

	// ErrUnauthorized is returned when the server rejects the API key.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gor: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps well-known statuses onto sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrMalformedInput
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusBadGateway:
		return ErrEmbeddingProviderError
	default:
		return nil
	}
}

func apiErrorFromResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}
