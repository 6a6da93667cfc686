// Package errors defines the error taxonomy shared by the 4Devs gateway,
// the city resolver and the tool adapters.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ValidationError indicates invalid input parameters. It is always raised
// before any network call is made.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ResolutionKind classifies a failed city resolution.
type ResolutionKind string

const (
	CatalogEmpty   ResolutionKind = "catalog_empty"
	NoMatch        ResolutionKind = "no_match"
	AmbiguousMatch ResolutionKind = "ambiguous_match"
)

// CityResolutionError is returned when a free-text city name cannot be
// turned into exactly one city code.
type CityResolutionError struct {
	Kind        ResolutionKind
	City        string
	State       string
	Suggestions []string
}

func (e *CityResolutionError) Error() string {
	switch e.Kind {
	case CatalogEmpty:
		return fmt.Sprintf("no cities found for state %s", e.State)
	case AmbiguousMatch:
		return fmt.Sprintf("Multiple cities match %q in %s. Suggestions: %s",
			e.City, e.State, strings.Join(e.Suggestions, ", "))
	case NoMatch:
		if len(e.Suggestions) == 0 {
			return fmt.Sprintf("City %q not found in %s", e.City, e.State)
		}
		return fmt.Sprintf("No close match for %q in %s. Did you mean: %s?",
			e.City, e.State, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("city resolution failed for %q in %s", e.City, e.State)
}

// TransportError wraps a connectivity failure talking to the provider.
// Timeout is set when the fixed request deadline expired.
type TransportError struct {
	Action  string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("network timeout calling %s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("transport error calling %s: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError reports a provider reply the adapters cannot use, typically
// a 5xx status. Body holds a truncated excerpt of the reply.
type ProviderError struct {
	Action     string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("provider returned status %d for %s: %s", e.StatusCode, e.Action, e.Body)
	}
	return fmt.Sprintf("provider returned status %d for %s", e.StatusCode, e.Action)
}

// ContractError indicates the provider replied with a structurally
// unexpected payload (wrong shape, empty result set).
type ContractError struct {
	Action  string
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %s", e.Action, e.Message)
}

// NewContractError creates a ContractError.
func NewContractError(action, format string, args ...any) *ContractError {
	return &ContractError{Action: action, Message: fmt.Sprintf(format, args...)}
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsResolution returns true if err is or wraps a CityResolutionError.
func IsResolution(err error) bool {
	var target *CityResolutionError
	return stderrors.As(err, &target)
}

// IsTransport returns true if err is or wraps a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return stderrors.As(err, &target)
}

// IsTimeout returns true if err is a TransportError caused by the request deadline.
func IsTimeout(err error) bool {
	var target *TransportError
	return stderrors.As(err, &target) && target.Timeout
}

// IsProvider returns true if err is or wraps a ProviderError.
func IsProvider(err error) bool {
	var target *ProviderError
	return stderrors.As(err, &target)
}

// IsContract returns true if err is or wraps a ContractError.
func IsContract(err error) bool {
	var target *ContractError
	return stderrors.As(err, &target)
}

// Suggestions returns the suggestion list carried by a resolution error, if any.
func Suggestions(err error) []string {
	var target *CityResolutionError
	if stderrors.As(err, &target) {
		return target.Suggestions
	}
	return nil
}

// Kind maps err to a stable identifier used in error envelopes, logs and metrics.
func Kind(err error) string {
	var resErr *CityResolutionError
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "invalid_input"
	case stderrors.As(err, &resErr):
		return string(resErr.Kind)
	case IsTimeout(err):
		return "network_timeout"
	case IsTransport(err):
		return "transport_error"
	case IsProvider(err):
		return "provider_error"
	case IsContract(err):
		return "upstream_contract_violation"
	}
	return "internal_error"
}
