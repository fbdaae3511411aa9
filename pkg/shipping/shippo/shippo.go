// Package shippo provides the Shippo provider adapter for the shipping
// abstraction layer.
package shippo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
)

const (
	providerName = "shippo"

	// trackingDomain hosts Shippo's public tracking pages, used when a
	// carrier has no tracking URL template of its own.
	trackingDomain = "https://track.goshippo.com"
)

// capabilities declares that Shippo supports all five operations.
var capabilities = shipping.Capabilities{
	LabelCreation:          true,
	ShipmentTracking:       true,
	AddressValidation:      true,
	CarrierServices:        true,
	ShippingCostEstimation: true,
}

// System is the Shippo shipping system. It implements shipping.System
// and delegates wire calls to the underlying APIClient (mock or HTTP).
type System struct {
	*shipping.BaseSystem

	api    APIClient
	logger *otelzap.Logger
	tracer trace.Tracer
}

// New creates a new Shippo system. Wire calls use an HTTP client built
// from each session's connection parameters.
func New(logger *otelzap.Logger, tracer trace.Tracer, sink shipping.StatsSink) *System {
	return &System{
		BaseSystem: shipping.NewBaseSystem(providerName, capabilities, logger, sink),
		logger:     logger,
		tracer:     tracer,
	}
}

// NewWithAPIClient creates a new Shippo system with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(api APIClient, logger *otelzap.Logger, tracer trace.Tracer, sink shipping.StatsSink) *System {
	s := New(logger, tracer, sink)
	s.api = api
	return s
}

// StartSession opens an authenticated session against this system.
func (s *System) StartSession(ctx context.Context, params shipping.SessionParams) (*shipping.Session, error) {
	return s.OpenSession(s, params)
}

// apiFor returns the injected API client when present, otherwise an
// HTTP client built from the session's connection parameters.
func (s *System) apiFor(sess *shipping.Session) APIClient {
	if s.api != nil {
		return s.api
	}
	params := sess.ConnectParams()
	return NewHTTPAPIClient(HTTPAPIClientConfig{
		BaseURL:  params.BaseURL,
		APIToken: params.APIToken,
		Timeout:  params.Timeout,
	})
}

// fail records an operation failure: error counter, error log, uniform
// provider error wrapping the original cause.
func (s *System) fail(op shipping.Operation, err error) error {
	s.Stats().RecordError(op)
	s.logger.Error("Shippo operation failed",
		zap.String("operation", string(op)),
		zap.Error(err))
	return shipping.NewShippingError(providerName, op, err)
}

// Carriers returns the configured carrier catalog.
func (s *System) Carriers(ctx context.Context, sess *shipping.Session) ([]*shipping.Carrier, error) {
	ctx, span := s.tracer.Start(ctx, "shippo.Carriers")
	defer span.End()

	s.logger.Info("Listing Shippo carriers")
	return s.BaseSystem.Carriers(ctx, sess)
}

// CreateLabel purchases a shipping label for the shipment.
func (s *System) CreateLabel(ctx context.Context, sess *shipping.Session, shipment *shipping.Shipment) (*shipping.Label, error) {
	ctx, span := s.tracer.Start(ctx, "shippo.CreateLabel")
	defer span.End()

	s.logger.Info("Creating Shippo label",
		zap.String("carrier", shipment.CarrierID),
		zap.String("service", shipment.ServiceID))

	label, err := s.doCreateLabel(ctx, sess, shipment)
	if err != nil {
		return nil, s.fail(shipping.OpCreateLabel, err)
	}
	s.Stats().RecordCall(shipping.OpCreateLabel)
	return label, nil
}

func (s *System) doCreateLabel(ctx context.Context, sess *shipping.Session, shipment *shipping.Shipment) (*shipping.Label, error) {
	carrier := s.Catalog().Find(shipment.CarrierID)
	if carrier == nil {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCarrierNotFound, shipment.CarrierID)
	}
	token, ok := carrierTokens[carrier.Type]
	if !ok {
		return nil, fmt.Errorf("%w: no provider code for %s", shipping.ErrCarrierNotFound, carrier.Type)
	}

	payload := &ShipmentPayload{
		ObjectPurpose: "PURCHASE",
		AddressFrom:   addressToAPI(shipment.From, false),
		AddressTo:     addressToAPI(shipment.To, false),
		Parcel:        parcelToAPI(shipment),
	}
	if shipment.LabelIDForReturn != "" {
		payload.ReturnOf = shipment.LabelIDForReturn
	} else if shipment.Return != nil {
		payload.AddressReturn = addressToAPI(shipment.Return, false)
	}

	fileType, ok := labelFileTypes[shipment.LabelFormat]
	if !ok {
		fileType = "PDF"
	}

	resp, err := s.apiFor(sess).CreateTransaction(ctx, &TransactionRequest{
		CarrierAccount:    token,
		ServiceLevelToken: shipment.ServiceID,
		LabelFileType:     fileType,
		Async:             false,
		Shipment:          payload,
	})
	if err != nil {
		return nil, err
	}

	if resp.ObjectState != "VALID" || (resp.ObjectStatus != "" && resp.ObjectStatus != "SUCCESS") {
		detail := "label purchase rejected"
		if len(resp.Messages) > 0 && resp.Messages[0].Text != "" {
			detail = resp.Messages[0].Text
		}
		return nil, errors.New(detail)
	}

	// A failed rate re-fetch must not fail the purchase; the label is
	// returned with a zero cost instead.
	var cost shipping.Money
	if rate, err := s.doGetRate(ctx, sess, resp.Rate); err != nil {
		s.logger.Warn("Rate lookup after label purchase failed",
			zap.String("rate_id", resp.Rate),
			zap.Error(err))
	} else {
		cost = rate
	}

	return &shipping.Label{
		ObjectID:       resp.ObjectID,
		URL:            resp.LabelURL,
		Format:         shipment.LabelFormat,
		TrackingNumber: resp.TrackingNumber,
		CarrierID:      shipment.CarrierID,
		Cost:           cost,
	}, nil
}

// doGetRate re-fetches the rate object referenced by a transaction.
func (s *System) doGetRate(ctx context.Context, sess *shipping.Session, rateID string) (shipping.Money, error) {
	if rateID == "" {
		return shipping.Money{}, errors.New("transaction carries no rate reference")
	}
	resp, err := s.apiFor(sess).GetRate(ctx, rateID)
	if err != nil {
		return shipping.Money{}, err
	}
	amount, err := strconv.ParseFloat(resp.Amount, 64)
	if err != nil {
		return shipping.Money{}, fmt.Errorf("unparsable rate amount %q: %w", resp.Amount, err)
	}
	return shipping.Money{Amount: amount, Currency: resp.Currency}, nil
}

// TrackShipment returns the tracking state of a shipment. The caller's
// tracking number, the derived tracking URL and the carrier id are
// stamped onto the result after the lookup.
func (s *System) TrackShipment(ctx context.Context, sess *shipping.Session, carrierID, trackingNumber string) (*shipping.TrackInfo, error) {
	ctx, span := s.tracer.Start(ctx, "shippo.TrackShipment")
	defer span.End()

	s.logger.Info("Tracking Shippo shipment",
		zap.String("carrier", carrierID),
		zap.String("tracking_number", trackingNumber))

	info, err := s.doTrackShipment(ctx, sess, carrierID, trackingNumber)
	if err != nil {
		return nil, s.fail(shipping.OpTrackShipment, err)
	}

	info.TrackingNumber = trackingNumber
	info.CarrierID = carrierID
	if url, err := s.TrackingURL(ctx, sess, carrierID, trackingNumber); err == nil {
		info.TrackingURL = url
	}

	s.Stats().RecordCall(shipping.OpTrackShipment)
	return info, nil
}

func (s *System) doTrackShipment(ctx context.Context, sess *shipping.Session, carrierID, trackingNumber string) (*shipping.TrackInfo, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return nil, shipping.ErrTrackingNumberRequired
	}
	carrier := s.Catalog().Find(carrierID)
	if carrier == nil {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCarrierNotFound, carrierID)
	}
	token, ok := carrierTokens[carrier.Type]
	if !ok {
		return nil, fmt.Errorf("%w: no provider code for %s", shipping.ErrCarrierNotFound, carrier.Type)
	}

	resp, err := s.apiFor(sess).GetTrack(ctx, token, trackingNumber)
	if err != nil {
		return nil, err
	}
	if resp.TrackingStatus == nil {
		return nil, errors.New("tracking response carries no tracking status")
	}

	info := &shipping.TrackInfo{Status: shipping.TrackStatusUnknown}
	applyTrackStatus(resp.TrackingStatus, &info.Status, &info.Date, &info.Details, &info.Location)

	for i := range resp.TrackingHistory {
		item := shipping.HistoryItem{Status: shipping.TrackStatusUnknown}
		applyTrackStatus(&resp.TrackingHistory[i], &item.Status, &item.Date, &item.Details, &item.Location)
		info.History = append(info.History, item)
	}
	return info, nil
}

// TrackingURL prefers the carrier's own tracking URL template and falls
// back to Shippo's public tracking page when the carrier resolves to a
// known provider code. Unknown carriers yield "" without an error.
func (s *System) TrackingURL(ctx context.Context, sess *shipping.Session, carrierID, trackingNumber string) (string, error) {
	if url, err := s.BaseSystem.TrackingURL(ctx, sess, carrierID, trackingNumber); err != nil || url != "" {
		return url, err
	}
	if strings.TrimSpace(carrierID) == "" || strings.TrimSpace(trackingNumber) == "" {
		return "", nil
	}
	carrier := s.Catalog().Find(carrierID)
	if carrier == nil {
		return "", nil
	}
	token, ok := carrierTokens[carrier.Type]
	if !ok {
		return "", nil
	}
	return fmt.Sprintf("%s/%s/%s", trackingDomain, token, trackingNumber), nil
}

// ValidateAddress submits the address for provider-side validation and
// returns the possibly corrected address. A rejected address fails with
// *shipping.AddressValidationError rather than the uniform wrapper.
func (s *System) ValidateAddress(ctx context.Context, sess *shipping.Session, addr *shipping.Address) (*shipping.Address, error) {
	ctx, span := s.tracer.Start(ctx, "shippo.ValidateAddress")
	defer span.End()

	s.logger.Info("Validating address with Shippo",
		zap.String("city", addr.City),
		zap.String("country", addr.CountryCode))

	validated, err := s.doValidateAddress(ctx, sess, addr)
	if err != nil {
		s.Stats().RecordError(shipping.OpValidateAddress)
		s.logger.Error("Shippo operation failed",
			zap.String("operation", string(shipping.OpValidateAddress)),
			zap.Error(err))
		var validationErr *shipping.AddressValidationError
		if errors.As(err, &validationErr) {
			return nil, validationErr
		}
		return nil, shipping.NewShippingError(providerName, shipping.OpValidateAddress, err)
	}
	s.Stats().RecordCall(shipping.OpValidateAddress)
	return validated, nil
}

func (s *System) doValidateAddress(ctx context.Context, sess *shipping.Session, addr *shipping.Address) (*shipping.Address, error) {
	resp, err := s.apiFor(sess).CreateAddress(ctx, addressToAPI(addr, true))
	if err != nil {
		return nil, err
	}

	// The provider can report overall state VALID while flagging the
	// address content invalid via the first message's code; both signals
	// must be checked.
	invalid := resp.ObjectState != "VALID"
	detail := ""
	if len(resp.Messages) > 0 {
		if resp.Messages[0].Code == "Invalid" {
			invalid = true
		}
		detail = resp.Messages[0].Text
	}
	if invalid {
		return nil, &shipping.AddressValidationError{Detail: detail}
	}

	return &shipping.Address{
		Name:         resp.Name,
		Company:      resp.Company,
		Line1:        resp.Street1,
		Line2:        resp.Street2,
		City:         resp.City,
		ProvinceCode: resp.State,
		PostalCode:   resp.Zip,
		CountryCode:  shipping.NormalizeCountry(resp.Country),
		Phone:        resp.Phone,
		Email:        resp.Email,
	}, nil
}

// EstimateShippingCost quotes the best available rate for a shipment:
// the cheapest quote matching the requested carrier+service, or failing
// that the cheapest quote overall flagged as an alternative.
func (s *System) EstimateShippingCost(ctx context.Context, sess *shipping.Session, shipment *shipping.Shipment) (*shipping.ShippingRate, error) {
	ctx, span := s.tracer.Start(ctx, "shippo.EstimateShippingCost")
	defer span.End()

	s.logger.Info("Estimating Shippo shipping cost",
		zap.String("carrier", shipment.CarrierID),
		zap.String("service", shipment.ServiceID))

	rate, err := s.doEstimateShippingCost(ctx, sess, shipment)
	if err != nil {
		return nil, s.fail(shipping.OpEstimateShippingCost, err)
	}
	s.Stats().RecordCall(shipping.OpEstimateShippingCost)
	return rate, nil
}

func (s *System) doEstimateShippingCost(ctx context.Context, sess *shipping.Session, shipment *shipping.Shipment) (*shipping.ShippingRate, error) {
	resp, err := s.apiFor(sess).CreateShipment(ctx, &ShipmentRequest{
		ObjectPurpose: "QUOTE",
		AddressFrom:   addressToAPI(shipment.From, false),
		AddressTo:     addressToAPI(shipment.To, false),
		Parcel:        parcelToAPI(shipment),
		Async:         false,
	})
	if err != nil {
		return nil, err
	}

	requestedToken := ""
	if carrier := s.Catalog().Find(shipment.CarrierID); carrier != nil {
		requestedToken = carrierTokens[carrier.Type]
	}

	appropriate := &shipping.ShippingRate{
		CarrierID: shipment.CarrierID,
		ServiceID: shipment.ServiceID,
		PackageID: shipment.PackageID,
	}
	alternative := &shipping.ShippingRate{
		CarrierID:     shipment.CarrierID,
		ServiceID:     shipment.ServiceID,
		PackageID:     shipment.PackageID,
		IsAlternative: true,
	}

	for _, quote := range resp.RatesList {
		amount, err := strconv.ParseFloat(quote.AmountLocal, 64)
		if err != nil {
			s.logger.Warn("Skipping quote with unparsable amount",
				zap.String("amount", quote.AmountLocal))
			continue
		}
		cost := shipping.Money{Amount: amount, Currency: quote.CurrencyLocal}

		matches := strings.EqualFold(quote.CarrierAccount, requestedToken) &&
			strings.EqualFold(quote.ServiceLevelToken, shipment.ServiceID)
		if matches && cheaper(appropriate.Cost, cost) {
			c := cost
			appropriate.Cost = &c
		}
		if cheaper(alternative.Cost, cost) {
			c := cost
			alternative.Cost = &c
		}
	}

	if appropriate.Cost != nil {
		return appropriate, nil
	}
	return alternative, nil
}

// cheaper reports whether candidate beats the current best. Quotes in a
// different currency than the current best are never compared.
// TODO: compare cross-currency quotes once a conversion rate source is
// wired in; until then a cheaper quote in another currency is ignored.
func cheaper(current *shipping.Money, candidate shipping.Money) bool {
	if current == nil {
		return true
	}
	if current.Currency != candidate.Currency {
		return false
	}
	return candidate.Amount < current.Amount
}

// ============================================================================
// Conversion helpers: shipping models -> API models
// ============================================================================

func addressToAPI(addr *shipping.Address, validate bool) *AddressRequest {
	if addr == nil {
		return nil
	}
	return &AddressRequest{
		Name:     addr.Name,
		Company:  addr.Company,
		Street1:  addr.Line1,
		Street2:  addr.Line2,
		City:     addr.City,
		State:    addr.ProvinceCode,
		Zip:      addr.PostalCode,
		Country:  shipping.NormalizeCountry(addr.CountryCode),
		Phone:    addr.Phone,
		Email:    addr.Email,
		Validate: validate,
	}
}

func parcelToAPI(shipment *shipping.Shipment) *Parcel {
	distanceUnit, ok := distanceUnits[shipment.DistanceUnit]
	if !ok {
		distanceUnit = "cm"
	}
	massUnit, ok := weightUnits[shipment.WeightUnit]
	if !ok {
		massUnit = "kg"
	}
	return &Parcel{
		Length:       formatDimension(shipment.Length),
		Width:        formatDimension(shipment.Width),
		Height:       formatDimension(shipment.Height),
		DistanceUnit: distanceUnit,
		Weight:       formatDimension(shipment.Weight),
		MassUnit:     massUnit,
		Template:     shipment.PackageID,
	}
}

func formatDimension(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// applyTrackStatus maps one wire status entry onto canonical fields.
// Every field is tolerated missing; an unmapped status string leaves the
// destination status unchanged.
func applyTrackStatus(entry *TrackStatusEntry, status *shipping.TrackStatus, date *time.Time, details *string, location **shipping.Address) {
	if mapped, ok := trackStatuses[strings.ToUpper(entry.Status)]; ok {
		*status = mapped
	}
	if entry.StatusDate != "" {
		if t := parseStatusDate(entry.StatusDate); !t.IsZero() {
			*date = t
		}
	}
	*details = entry.StatusDetails
	if entry.Location != nil {
		*location = &shipping.Address{
			City:         entry.Location.City,
			ProvinceCode: entry.Location.State,
			PostalCode:   entry.Location.Zip,
			CountryCode:  shipping.NormalizeCountry(entry.Location.Country),
		}
	}
}

var _ shipping.System = (*System)(nil)
