package image

import (
	"errors"
	"fmt"
)

// APIError mirrors the "error" object of the images API.
type APIError struct {
	Type    string  `json:"type"`
	Message string  `json:"message"`
	Code    *string `json:"code,omitempty"`
	Param   *string `json:"param,omitempty"`
}

// ProviderError is returned for any non-2xx answer from the provider.
type ProviderError struct {
	StatusCode int
	Payload    APIError
}

func (e *ProviderError) Error() string {
	if e.Payload.Message == "" {
		return fmt.Sprintf("provider returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned HTTP %d: %s", e.StatusCode, e.Payload.Message)
}

// AsProviderError unwraps err down to a *ProviderError, if there is one.
func AsProviderError(err error) (*ProviderError, bool) {
	var perr *ProviderError
	ok := errors.As(err, &perr)
	return perr, ok
}
