package shippo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCreateTransaction func(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error)
	OnGetRate           func(ctx context.Context, rateID string) (*RateResponse, error)
	OnCreateAddress     func(ctx context.Context, req *AddressRequest) (*AddressResponse, error)
	OnCreateShipment    func(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)
	OnGetTrack          func(ctx context.Context, carrierCode, trackingNumber string) (*TrackResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// CreateTransaction returns a mock purchased label.
func (m *MockAPIClient) CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Detail: "Simulated API error"}
	}

	if m.OnCreateTransaction != nil {
		return m.OnCreateTransaction(ctx, req)
	}

	objectID := "txn-" + uuid.New().String()[:8]
	trackingNumber := fmt.Sprintf("%d", 100000000000+time.Now().UnixNano()%900000000000)

	return &TransactionResponse{
		ObjectID:       objectID,
		ObjectState:    "VALID",
		ObjectStatus:   "SUCCESS",
		LabelURL:       fmt.Sprintf("https://deliver.goshippo.com/%s.pdf", objectID),
		TrackingNumber: trackingNumber,
		Rate:           "rate-" + uuid.New().String()[:8],
	}, nil
}

// GetRate returns a mock rate object.
func (m *MockAPIClient) GetRate(ctx context.Context, rateID string) (*RateResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Detail: "Simulated API error"}
	}

	if m.OnGetRate != nil {
		return m.OnGetRate(ctx, rateID)
	}

	return &RateResponse{
		ObjectID: rateID,
		Currency: "USD",
		Amount:   "12.50",
	}, nil
}

// CreateAddress returns a mock validated address.
func (m *MockAPIClient) CreateAddress(ctx context.Context, req *AddressRequest) (*AddressResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Detail: "Simulated API error"}
	}

	if m.OnCreateAddress != nil {
		return m.OnCreateAddress(ctx, req)
	}

	return &AddressResponse{
		ObjectID:    "addr-" + uuid.New().String()[:8],
		ObjectState: "VALID",
		Name:        req.Name,
		Company:     req.Company,
		Street1:     req.Street1,
		Street2:     req.Street2,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		Country:     req.Country,
		Phone:       req.Phone,
		Email:       req.Email,
	}, nil
}

// CreateShipment returns mock quoted rates.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Detail: "Simulated API error"}
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	return &ShipmentResponse{
		ObjectID:    "shp-" + uuid.New().String()[:8],
		ObjectState: "VALID",
		RatesList: []ShipmentRate{
			{
				ObjectID:          "rate-" + uuid.New().String()[:8],
				CarrierAccount:    "usps",
				ServiceLevelToken: "usps_priority",
				CurrencyLocal:     "USD",
				AmountLocal:       "8.95",
			},
			{
				ObjectID:          "rate-" + uuid.New().String()[:8],
				CarrierAccount:    "fedex",
				ServiceLevelToken: "fedex_ground",
				CurrencyLocal:     "USD",
				AmountLocal:       "11.20",
			},
		},
	}, nil
}

// GetTrack returns mock tracking information.
func (m *MockAPIClient) GetTrack(ctx context.Context, carrierCode, trackingNumber string) (*TrackResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Detail: "Simulated API error"}
	}

	if m.OnGetTrack != nil {
		return m.OnGetTrack(ctx, carrierCode, trackingNumber)
	}

	now := time.Now().UTC()
	return &TrackResponse{
		Carrier:        carrierCode,
		TrackingNumber: trackingNumber,
		TrackingStatus: &TrackStatusEntry{
			Status:        "TRANSIT",
			StatusDate:    now.Format(time.RFC3339),
			StatusDetails: "Package is in transit",
			Location:      &TrackLocation{City: "Memphis", State: "TN", Country: "US"},
		},
		TrackingHistory: []TrackStatusEntry{
			{
				Status:        "UNKNOWN",
				StatusDate:    now.Add(-48 * time.Hour).Format(time.RFC3339),
				StatusDetails: "Label created",
			},
			{
				Status:        "TRANSIT",
				StatusDate:    now.Add(-24 * time.Hour).Format(time.RFC3339),
				StatusDetails: "Departed origin facility",
				Location:      &TrackLocation{City: "Portland", State: "OR", Country: "US"},
			},
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
