package shippo

import (
	"time"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
)

// distanceUnits maps canonical distance units to Shippo unit codes.
var distanceUnits = map[shipping.DistanceUnit]string{
	shipping.DistanceCM: "cm",
	shipping.DistanceIN: "in",
	shipping.DistanceFT: "ft",
	shipping.DistanceMM: "mm",
	shipping.DistanceM:  "m",
	shipping.DistanceYD: "yd",
}

// weightUnits maps canonical weight units to Shippo mass unit codes.
var weightUnits = map[shipping.WeightUnit]string{
	shipping.WeightG:  "g",
	shipping.WeightOZ: "oz",
	shipping.WeightLB: "lb",
	shipping.WeightKG: "kg",
}

// carrierTokens maps canonical carrier types to Shippo carrier codes.
var carrierTokens = map[shipping.CarrierType]string{
	shipping.CarrierUSPS:       "usps",
	shipping.CarrierDHLExpress: "dhl_express",
	shipping.CarrierFedEx:      "fedex",
	shipping.CarrierUPS:        "ups",
}

// labelFileTypes maps canonical label formats to Shippo file type codes.
var labelFileTypes = map[shipping.LabelFormat]string{
	shipping.LabelPDF:    "PDF",
	shipping.LabelPDF4x6: "PDF_4X6",
	shipping.LabelPNG:    "PNG",
	shipping.LabelZPLII:  "ZPLII",
}

// trackStatuses maps Shippo tracking status strings to the canonical
// enum. Unmapped strings leave the caller's default unchanged.
var trackStatuses = map[string]shipping.TrackStatus{
	"UNKNOWN":   shipping.TrackStatusUnknown,
	"DELIVERED": shipping.TrackStatusDelivered,
	"TRANSIT":   shipping.TrackStatusTransit,
	"FAILURE":   shipping.TrackStatusFailure,
	"RETURNED":  shipping.TrackStatusReturned,
}

// statusDateLayouts are tried in order when parsing tracking timestamps.
// Unparsable dates are ignored rather than failing the call.
var statusDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseStatusDate returns the first layout that parses, or the zero time.
func parseStatusDate(value string) time.Time {
	for _, layout := range statusDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
