package shipping

import (
	"errors"
	"fmt"
)

// Operation names the five provider operations for capability gating,
// error reporting and instrumentation.
type Operation string

const (
	OpCreateLabel          Operation = "create_label"
	OpTrackShipment        Operation = "track_shipment"
	OpValidateAddress      Operation = "validate_address"
	OpCarrierServices      Operation = "carrier_services"
	OpEstimateShippingCost Operation = "estimate_shipping_cost"
)

// ShippingError is the uniform wrapper every provider operation fails
// with. Callers see one error type regardless of whether the HTTP call,
// the response parse, or a business rule failed underneath.
type ShippingError struct {
	Provider  string
	Operation Operation
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *ShippingError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Operation, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShippingError) Unwrap() error {
	return e.Cause
}

// NewShippingError wraps err as a provider failure of the given operation.
// The original message and cause are always preserved.
func NewShippingError(provider string, op Operation, err error) *ShippingError {
	return &ShippingError{
		Provider:  provider,
		Operation: op,
		Message:   err.Error(),
		Cause:     err,
	}
}

// UnsupportedOperationError is raised by a session before any network
// call when the provider declares the operation unsupported.
type UnsupportedOperationError struct {
	Provider  string
	Operation Operation
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Provider, e.Operation)
}

// AddressValidationError reports that the provider rejected an address.
// Detail carries the provider's explanation text, which may be empty.
type AddressValidationError struct {
	Detail string
}

func (e *AddressValidationError) Error() string {
	if e.Detail == "" {
		return "address validation failed"
	}
	return "address validation failed: " + e.Detail
}

// Sentinel errors for common failure modes inside provider operations.
var (
	// ErrCarrierNotFound indicates the carrier is not in the catalog.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrProviderNotFound indicates no system with that name is registered.
	ErrProviderNotFound = errors.New("shipping provider not found")

	// ErrTrackingNumberRequired indicates an empty tracking number.
	ErrTrackingNumberRequired = errors.New("tracking number is required")

	// ErrSystemRequired indicates a session was opened without a system.
	ErrSystemRequired = errors.New("shipping system is required")

	// ErrConnectParamsRequired indicates a session was opened without
	// connection parameters.
	ErrConnectParamsRequired = errors.New("connection parameters are required")

	// ErrNotConfigured indicates the system has no provider section in
	// the configuration tree and therefore no carrier catalog.
	ErrNotConfigured = errors.New("shipping system is not configured")
)
