package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDeviceLimit  = errors.New("device limit reached")

	ErrResponseTooLarge = errors.New("response body too large")
)

// NetworkErrorMessage is reported when a request produced no response.
const NetworkErrorMessage = "Network error - no response received"

// Markers the backend uses to reject a login because the account is signed
// in on too many devices.
const (
	DeviceLimitCode     = "DEVICE_LIMIT_REACHED"
	DeviceLimitRedirect = "device-limit"
)

// APIError is the single error shape returned by HTTPClient.
//
//   - backend rejection: Message, Status and Data are set
//   - no response (offline, timeout): Message and IsNetworkError
//   - request could not be built: Message only
//   - response body over MaxResponseBytes: Message and Status
type APIError struct {
	Message        string
	Status         int
	Data           json.RawMessage
	Code           string
	Redirect       string
	IsNetworkError bool

	cause error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// Unauthorized reports a 401 or 403 that is not a device-limit rejection.
func (e *APIError) Unauthorized() bool {
	return (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden) && !e.DeviceLimit()
}

func (e *APIError) DeviceLimit() bool {
	return e.Code == DeviceLimitCode || e.Redirect == DeviceLimitRedirect
}

func (e *APIError) Unwrap() []error {
	var errs []error
	switch {
	case e.DeviceLimit():
		errs = append(errs, ErrDeviceLimit)
	case e.Unauthorized():
		errs = append(errs, ErrUnauthorized)
	case e.IsNetworkError:
		errs = append(errs, ErrUnavailable)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func networkError(err error) *APIError {
	return &APIError{Message: NetworkErrorMessage, IsNetworkError: true, cause: err}
}

func requestError(err error) *APIError {
	return &APIError{Message: err.Error(), cause: err}
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
