package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationKind identifies why a request was rejected before reaching the network.
type ValidationKind string

const (
	TooFewDrugs            ValidationKind = "too_few_drugs"
	MissingPediatricWeight ValidationKind = "missing_pediatric_weight"
)

// Sentinels matched by errors.Is against a *ValidationError of the same kind.
var (
	ErrTooFewDrugs            = &ValidationError{Kind: TooFewDrugs}
	ErrMissingPediatricWeight = &ValidationError{Kind: MissingPediatricWeight}
	ErrHistoryUnavailable     = errors.New("history unavailable")
)

// ValidationError represents a client-side input error. It never reaches the network.
type ValidationError struct {
	Kind    ValidationKind `json:"kind"`
	Message string         `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return defaultValidationMessage(e.Kind)
}

// Is matches any ValidationError carrying the same kind.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// NewValidationError creates a ValidationError with the user-facing message for kind.
func NewValidationError(kind ValidationKind) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: defaultValidationMessage(kind),
	}
}

func defaultValidationMessage(kind ValidationKind) string {
	switch kind {
	case TooFewDrugs:
		return "Enter at least two drugs"
	case MissingPediatricWeight:
		return "Pediatric mode requires patient weight (kg)."
	default:
		return "invalid input"
	}
}

// RequestErrorKind distinguishes transport failures from server-reported failures.
type RequestErrorKind string

const (
	RequestNetwork RequestErrorKind = "network"
	RequestServer  RequestErrorKind = "server"
)

// RequestError represents a failed round-trip with the assessment service.
type RequestError struct {
	Kind       RequestErrorKind `json:"kind"`
	Endpoint   string           `json:"endpoint"`
	Message    string           `json:"message"`
	StatusCode int              `json:"status_code,omitempty"`
	Err        error            `json:"-"`
}

// Error implements the error interface
func (e *RequestError) Error() string {
	switch e.Kind {
	case RequestServer:
		if e.StatusCode != 0 {
			return fmt.Sprintf("%s: server error (%d): %s", e.Endpoint, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s: server error: %s", e.Endpoint, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: network error: %v", e.Endpoint, e.Err)
		}
		return fmt.Sprintf("%s: network error: %s", e.Endpoint, e.Message)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown inline in the results area.
func (e *RequestError) UserMessage() string {
	if e.Kind == RequestServer && e.Message != "" {
		return e.Message
	}
	if e.Kind == RequestServer {
		return "Server error"
	}
	return "Could not reach the interaction service"
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(endpoint string, err error) *RequestError {
	return &RequestError{
		Kind:     RequestNetwork,
		Endpoint: endpoint,
		Err:      err,
	}
}

// NewServerError builds an error from a non-success response. An empty message
// falls back to the HTTP status text.
func NewServerError(endpoint string, statusCode int, message string) *RequestError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	if message == "" {
		message = "Server error"
	}
	return &RequestError{
		Kind:       RequestServer,
		Endpoint:   endpoint,
		Message:    message,
		StatusCode: statusCode,
	}
}

// IsNetworkError reports whether err is a transport-level RequestError.
func IsNetworkError(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == RequestNetwork
}

// IsServerError reports whether err is a server-reported RequestError.
func IsServerError(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == RequestServer
}
