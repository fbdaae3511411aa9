package shipping

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/message"
)

// TrackStatus represents the normalized delivery status of a shipment.
type TrackStatus string

const (
	TrackStatusUnknown   TrackStatus = "unknown"
	TrackStatusDelivered TrackStatus = "delivered"
	TrackStatusTransit   TrackStatus = "transit"
	TrackStatusFailure   TrackStatus = "failure"
	TrackStatusReturned  TrackStatus = "returned"
)

// LabelFormat represents the file format of a purchased shipping label.
type LabelFormat string

const (
	LabelPDF    LabelFormat = "pdf"
	LabelPDF4x6 LabelFormat = "pdf_4x6"
	LabelPNG    LabelFormat = "png"
	LabelZPLII  LabelFormat = "zplii"
)

// DistanceUnit represents a dimension measurement unit.
type DistanceUnit string

const (
	DistanceCM DistanceUnit = "cm"
	DistanceIN DistanceUnit = "in"
	DistanceFT DistanceUnit = "ft"
	DistanceMM DistanceUnit = "mm"
	DistanceM  DistanceUnit = "m"
	DistanceYD DistanceUnit = "yd"
)

// WeightUnit represents a weight measurement unit.
type WeightUnit string

const (
	WeightG  WeightUnit = "g"
	WeightOZ WeightUnit = "oz"
	WeightLB WeightUnit = "lb"
	WeightKG WeightUnit = "kg"
)

// CarrierType identifies a shipping company supported by a provider.
type CarrierType string

const (
	CarrierUSPS       CarrierType = "usps"
	CarrierFedEx      CarrierType = "fedex"
	CarrierUPS        CarrierType = "ups"
	CarrierDHLExpress CarrierType = "dhl_express"
)

// PriceCategory classifies a carrier service tier by cost.
type PriceCategory string

const (
	PriceEconomy  PriceCategory = "economy"
	PriceStandard PriceCategory = "standard"
	PricePremium  PriceCategory = "premium"
)

// PackageType represents the kind of packaging template.
type PackageType string

const (
	PackageBox      PackageType = "box"
	PackageEnvelope PackageType = "envelope"
	PackageTube     PackageType = "tube"
	PackageSoftPack PackageType = "soft_pack"
)

// Address represents a postal address. CountryCode is held in canonical
// ISO 3166-1 alpha-2 form; use NormalizeCountry when crossing a wire
// boundary that may produce alpha-3 or numeric codes.
type Address struct {
	Name         string
	Company      string
	Line1        string
	Line2        string
	City         string
	ProvinceCode string
	PostalCode   string
	CountryCode  string
	Phone        string
	Email        string
}

// Money represents a monetary amount in a single currency.
// The zero value means "no cost known": empty currency, zero amount.
type Money struct {
	Amount   float64
	Currency string
}

// IsZero reports whether no cost has been set.
func (m Money) IsZero() bool {
	return m.Currency == "" && m.Amount == 0
}

// String formats the amount with its currency symbol when the currency
// code parses as ISO 4217, falling back to a plain "12.34 XYZ" form.
func (m Money) String() string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		p := message.NewPrinter(message.MatchLanguage("en"))
		return p.Sprintf("%.2f %s", m.Amount, m.Currency)
	}
	p := message.NewPrinter(message.MatchLanguage("en"))
	return p.Sprintf("%v", currency.Symbol(unit.Amount(m.Amount)))
}

// Shipment describes one shipping request: which carrier/service/package
// to use, the parcel itself, and the addresses involved.
//
// When LabelIDForReturn is set the shipment is a return for a previously
// purchased label; the provider then links the new label to the original
// one and no separate return address is sent.
type Shipment struct {
	CarrierID string
	ServiceID string
	PackageID string

	Length       float64
	Width        float64
	Height       float64
	DistanceUnit DistanceUnit
	Weight       float64
	WeightUnit   WeightUnit

	LabelFormat      LabelFormat
	LabelIDForReturn string

	From   *Address
	To     *Address
	Return *Address
}

// Label is the result of a successful label purchase.
type Label struct {
	ObjectID       string
	URL            string
	Format         LabelFormat
	TrackingNumber string
	CarrierID      string
	Cost           Money
}

// HistoryItem is one entry of a shipment's tracking history. Every field
// is optional; providers routinely omit dates or locations per event.
type HistoryItem struct {
	Status   TrackStatus
	Date     time.Time
	Details  string
	Location *Address
}

// TrackInfo is the tracking state of a shipment. History preserves the
// provider's chronological order.
type TrackInfo struct {
	TrackingNumber string
	TrackingURL    string
	CarrierID      string
	Status         TrackStatus
	Date           time.Time
	Details        string
	Location       *Address
	History        []HistoryItem
}

// ShippingRate is a quoted cost for a carrier/service/package selection.
// Cost is nil when the provider returned no usable quote. IsAlternative
// marks a substitute quote: the requested carrier/service pairing had no
// rate, so the cheapest rate across all quotes is returned instead.
type ShippingRate struct {
	CarrierID     string
	ServiceID     string
	PackageID     string
	Cost          *Money
	IsAlternative bool
}
