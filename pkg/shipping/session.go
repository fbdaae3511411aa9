package shipping

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SessionParams identify the user a session acts for and the connection
// parameters its provider calls use. Zero Connect params fall back to
// the system's configured defaults.
type SessionParams struct {
	Name    string
	User    string
	Connect ConnectParams
}

// Session is a short-lived, capability-gated handle bound to one
// authenticated user of a shipping system. It registers itself in the
// owning system's session set on creation and deregisters on Close;
// Close is safe to call more than once.
//
// Every operation first checks the owning system's capability flag and
// fails with *UnsupportedOperationError before contacting the system.
type Session struct {
	id     uuid.UUID
	name   string
	user   string
	params ConnectParams
	system System
	host   *BaseSystem

	closeOnce sync.Once
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Name returns the session name.
func (s *Session) Name() string { return s.name }

// User returns the user the session acts for.
func (s *Session) User() string { return s.user }

// ConnectParams returns the resolved connection parameters.
func (s *Session) ConnectParams() ConnectParams { return s.params }

// System returns the owning shipping system.
func (s *Session) System() System { return s.system }

// Close removes the session from the owning system's session set.
// Closing an already closed session is a no-op.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.host.closeSession(s.id)
	})
}

// CreateLabel purchases a shipping label for the shipment.
func (s *Session) CreateLabel(ctx context.Context, shipment *Shipment) (*Label, error) {
	if !s.system.Capabilities().LabelCreation {
		return nil, &UnsupportedOperationError{Provider: s.system.Name(), Operation: OpCreateLabel}
	}
	return s.system.CreateLabel(ctx, s, shipment)
}

// TrackShipment returns the tracking state of a shipment.
func (s *Session) TrackShipment(ctx context.Context, carrierID, trackingNumber string) (*TrackInfo, error) {
	if !s.system.Capabilities().ShipmentTracking {
		return nil, &UnsupportedOperationError{Provider: s.system.Name(), Operation: OpTrackShipment}
	}
	return s.system.TrackShipment(ctx, s, carrierID, trackingNumber)
}

// TrackingURL returns a public tracking page URL for a shipment.
func (s *Session) TrackingURL(ctx context.Context, carrierID, trackingNumber string) (string, error) {
	if !s.system.Capabilities().ShipmentTracking {
		return "", &UnsupportedOperationError{Provider: s.system.Name(), Operation: OpTrackShipment}
	}
	return s.system.TrackingURL(ctx, s, carrierID, trackingNumber)
}

// ValidateAddress submits an address for provider-side validation.
func (s *Session) ValidateAddress(ctx context.Context, addr *Address) (*Address, error) {
	if !s.system.Capabilities().AddressValidation {
		return nil, &UnsupportedOperationError{Provider: s.system.Name(), Operation: OpValidateAddress}
	}
	return s.system.ValidateAddress(ctx, s, addr)
}

// Carriers returns the system's carrier catalog.
func (s *Session) Carriers(ctx context.Context) ([]*Carrier, error) {
	if !s.system.Capabilities().CarrierServices {
		return nil, &UnsupportedOperationError{Provider: s.system.Name(), Operation: OpCarrierServices}
	}
	return s.system.Carriers(ctx, s)
}

// EstimateShippingCost quotes the best available rate for a shipment.
func (s *Session) EstimateShippingCost(ctx context.Context, shipment *Shipment) (*ShippingRate, error) {
	if !s.system.Capabilities().ShippingCostEstimation {
		return nil, &UnsupportedOperationError{Provider: s.system.Name(), Operation: OpEstimateShippingCost}
	}
	return s.system.EstimateShippingCost(ctx, s, shipment)
}
