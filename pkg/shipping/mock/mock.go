// Package mock provides a mock shipping system for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
)

// System is a mock shipping system with configurable capabilities.
// Operations return canned data without any network interaction, which
// makes it useful for capability-gating tests and local development.
type System struct {
	*shipping.BaseSystem
}

// New creates a mock system with the given name and capabilities.
// Sessions never reach a network, so placeholder connect params are
// installed as defaults.
func New(name string, caps shipping.Capabilities, logger *otelzap.Logger) *System {
	s := &System{
		BaseSystem: shipping.NewBaseSystem(name, caps, logger, nil),
	}
	s.SetDefaultConnectParams(shipping.ConnectParams{APIToken: "mock"})
	return s
}

// StartSession opens a session against the mock system.
func (s *System) StartSession(ctx context.Context, params shipping.SessionParams) (*shipping.Session, error) {
	return s.OpenSession(s, params)
}

// CreateLabel returns a canned label.
func (s *System) CreateLabel(ctx context.Context, sess *shipping.Session, shipment *shipping.Shipment) (*shipping.Label, error) {
	s.Stats().RecordCall(shipping.OpCreateLabel)
	now := time.Now()
	objectID := fmt.Sprintf("%s-label-%d", s.Name(), now.UnixNano())
	return &shipping.Label{
		ObjectID:       objectID,
		URL:            fmt.Sprintf("https://labels.example.com/%s.pdf", objectID),
		Format:         shipment.LabelFormat,
		TrackingNumber: fmt.Sprintf("MK%d", now.UnixNano()%1000000000),
		CarrierID:      shipment.CarrierID,
		Cost:           shipping.Money{Amount: 9.99, Currency: "USD"},
	}, nil
}

// ValidateAddress echoes the address back with a normalized country.
func (s *System) ValidateAddress(ctx context.Context, sess *shipping.Session, addr *shipping.Address) (*shipping.Address, error) {
	s.Stats().RecordCall(shipping.OpValidateAddress)
	validated := *addr
	validated.CountryCode = shipping.NormalizeCountry(addr.CountryCode)
	return &validated, nil
}

// EstimateShippingCost returns a canned quote for the requested selection.
func (s *System) EstimateShippingCost(ctx context.Context, sess *shipping.Session, shipment *shipping.Shipment) (*shipping.ShippingRate, error) {
	s.Stats().RecordCall(shipping.OpEstimateShippingCost)
	return &shipping.ShippingRate{
		CarrierID: shipment.CarrierID,
		ServiceID: shipment.ServiceID,
		PackageID: shipment.PackageID,
		Cost:      &shipping.Money{Amount: 12.50, Currency: "USD"},
	}, nil
}

var _ shipping.System = (*System)(nil)
