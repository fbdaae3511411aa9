// Package shipping provides an abstraction layer for shipping-carrier
// providers. A System is one running provider connector; callers open a
// capability-gated Session against it and request labels, tracking,
// address validation or cost estimates without seeing provider-specific
// wire formats.
package shipping

import (
	"context"
	"time"
)

// Capabilities declares which of the five provider operations a system
// supports. It is a static, provider-specific descriptor; the session
// consults it before every delegated call.
type Capabilities struct {
	LabelCreation          bool
	ShipmentTracking       bool
	AddressValidation      bool
	CarrierServices        bool
	ShippingCostEstimation bool
}

// ConnectParams are the connection parameters of one session: the
// credential and endpoint used for outbound provider calls. Timeout
// covers the whole HTTP round trip and is clamped to zero-or-positive.
type ConnectParams struct {
	APIToken string
	BaseURL  string
	Timeout  time.Duration
}

// IsZero reports whether no parameter has been set.
func (p ConnectParams) IsZero() bool {
	return p == ConnectParams{}
}

// System is one provider connector. Implementations embed BaseSystem for
// the session registry, carrier catalog, instrumentation counters and the
// default tracking operations, and supply the provider-specific rest.
type System interface {
	// Name returns the provider identifier (e.g. "shippo").
	Name() string

	// Capabilities returns the provider's supported-operation descriptor.
	Capabilities() Capabilities

	// StartSession opens an authenticated session against this system.
	StartSession(ctx context.Context, params SessionParams) (*Session, error)

	// Carriers returns the configured carrier catalog.
	Carriers(ctx context.Context, sess *Session) ([]*Carrier, error)

	// CreateLabel purchases a shipping label for the shipment.
	CreateLabel(ctx context.Context, sess *Session, shipment *Shipment) (*Label, error)

	// TrackShipment returns the tracking state of a shipment.
	TrackShipment(ctx context.Context, sess *Session, carrierID, trackingNumber string) (*TrackInfo, error)

	// TrackingURL returns a public tracking page URL, or "" when the
	// carrier is unknown or has no tracking template.
	TrackingURL(ctx context.Context, sess *Session, carrierID, trackingNumber string) (string, error)

	// ValidateAddress submits an address for provider-side validation and
	// returns the possibly corrected address.
	ValidateAddress(ctx context.Context, sess *Session, addr *Address) (*Address, error)

	// EstimateShippingCost quotes the best available rate for a shipment.
	EstimateShippingCost(ctx context.Context, sess *Session, shipment *Shipment) (*ShippingRate, error)
}
