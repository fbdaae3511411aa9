package shippo

import (
	"context"
)

// APIClient defines the interface for Shippo API operations. This
// abstraction allows for mock implementations during testing and real
// implementations in production.
type APIClient interface {
	// CreateTransaction purchases a shipping label
	CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error)

	// GetRate re-fetches a quoted rate object by id
	GetRate(ctx context.Context, rateID string) (*RateResponse, error)

	// CreateAddress submits an address, optionally requesting validation
	CreateAddress(ctx context.Context, req *AddressRequest) (*AddressResponse, error)

	// CreateShipment submits a shipment and receives quoted rates
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)

	// GetTrack retrieves tracking information for a carrier + number
	GetTrack(ctx context.Context, carrierCode, trackingNumber string) (*TrackResponse, error)
}

// ============================================================================
// API Request/Response Types (match Shippo REST API v1 structure)
// ============================================================================

// Message is a code+text annotation the API attaches to responses.
type Message struct {
	Code string `json:"code,omitempty"`
	Text string `json:"text,omitempty"`
}

// AddressRequest represents an address submission.
// POST /v1/addresses endpoint
type AddressRequest struct {
	Name     string `json:"name,omitempty"`
	Company  string `json:"company,omitempty"`
	Street1  string `json:"street1"`
	Street2  string `json:"street2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	Zip      string `json:"zip,omitempty"`
	Country  string `json:"country"` // ISO 3166-1 alpha-2 code
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Validate bool   `json:"validate,omitempty"`
}

// AddressResponse represents a stored (possibly corrected) address.
type AddressResponse struct {
	ObjectID    string    `json:"object_id"`
	ObjectState string    `json:"object_state"` // "VALID", "INVALID", "INCOMPLETE"
	Messages    []Message `json:"messages,omitempty"`
	Name        string    `json:"name,omitempty"`
	Company     string    `json:"company,omitempty"`
	Street1     string    `json:"street1,omitempty"`
	Street2     string    `json:"street2,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	Zip         string    `json:"zip,omitempty"`
	Country     string    `json:"country,omitempty"` // may come back alpha-3
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
}

// Parcel represents parcel dimensions with unit codes.
type Parcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"` // cm, in, ft, mm, m, yd
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"` // g, oz, lb, kg
	Template     string `json:"template,omitempty"`
}

// ShipmentPayload is the shipment body shared by transaction purchase
// and rate quoting. AddressReturn and ReturnOf are mutually exclusive:
// a label-for-return carries the original transaction id instead of an
// explicit return address.
type ShipmentPayload struct {
	ObjectPurpose string          `json:"object_purpose"` // "PURCHASE" or "QUOTE"
	AddressFrom   *AddressRequest `json:"address_from"`
	AddressTo     *AddressRequest `json:"address_to"`
	AddressReturn *AddressRequest `json:"address_return,omitempty"`
	ReturnOf      string          `json:"return_of,omitempty"`
	Parcel        *Parcel         `json:"parcel"`
}

// TransactionRequest represents a label purchase.
// POST /v1/transactions endpoint
type TransactionRequest struct {
	CarrierAccount    string           `json:"carrier_account"`
	ServiceLevelToken string           `json:"servicelevel_token"`
	LabelFileType     string           `json:"label_file_type"` // PDF, PDF_4X6, PNG, ZPLII
	Async             bool             `json:"async"`
	Shipment          *ShipmentPayload `json:"shipment"`
}

// TransactionResponse represents the label purchase result. Rate is an
// object id, re-fetched via GET /v1/rates/{id} for the charged amount.
type TransactionResponse struct {
	ObjectID       string    `json:"object_id"`
	ObjectState    string    `json:"object_state"`            // "VALID" on success
	ObjectStatus   string    `json:"object_status,omitempty"` // "SUCCESS", "ERROR"; may be absent
	Messages       []Message `json:"messages,omitempty"`
	LabelURL       string    `json:"label_url,omitempty"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	Rate           string    `json:"rate,omitempty"`
}

// RateResponse represents one quoted rate object.
// GET /v1/rates/{rate_id} endpoint
type RateResponse struct {
	ObjectID string `json:"object_id"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// ShipmentRequest represents a rate-quoting shipment submission.
// POST /v1/shipments endpoint
type ShipmentRequest struct {
	ObjectPurpose string          `json:"object_purpose"` // "QUOTE"
	AddressFrom   *AddressRequest `json:"address_from"`
	AddressTo     *AddressRequest `json:"address_to"`
	Parcel        *Parcel         `json:"parcel"`
	Async         bool            `json:"async"`
}

// ShipmentRate is one quote in a shipment's rate list.
type ShipmentRate struct {
	ObjectID          string `json:"object_id"`
	CarrierAccount    string `json:"carrier_account"`
	ServiceLevelToken string `json:"servicelevel_token"`
	CurrencyLocal     string `json:"currency_local"`
	AmountLocal       string `json:"amount_local"`
}

// ShipmentResponse represents the quoted shipment.
type ShipmentResponse struct {
	ObjectID    string         `json:"object_id"`
	ObjectState string         `json:"object_state"`
	Messages    []Message      `json:"messages,omitempty"`
	RatesList   []ShipmentRate `json:"rates_list"`
}

// TrackLocation is a location attached to a tracking status.
type TrackLocation struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// TrackStatusEntry is one tracking status with timestamp and location.
type TrackStatusEntry struct {
	Status        string         `json:"status"` // UNKNOWN, DELIVERED, TRANSIT, FAILURE, RETURNED
	StatusDate    string         `json:"status_date,omitempty"`
	StatusDetails string         `json:"status_details,omitempty"`
	Location      *TrackLocation `json:"location,omitempty"`
}

// TrackResponse represents tracking information for one shipment.
// GET /v1/tracks/{carrier}/{tracking_number} endpoint
type TrackResponse struct {
	Carrier         string             `json:"carrier"`
	TrackingNumber  string             `json:"tracking_number"`
	TrackingStatus  *TrackStatusEntry  `json:"tracking_status"`
	TrackingHistory []TrackStatusEntry `json:"tracking_history,omitempty"`
	ServiceLevel    *struct {
		Name string `json:"name,omitempty"`
	} `json:"servicelevel,omitempty"`
	AddressFrom *AddressResponse `json:"address_from,omitempty"`
	AddressTo   *AddressResponse `json:"address_to,omitempty"`
}

// APIError represents an error from the Shippo API.
type APIError struct {
	StatusCode int
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "shippo api error"
}
