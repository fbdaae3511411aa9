package shipping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
)

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"US", "US"},
		{"us", "US"},
		{"USA", "US"},
		{"usa", "US"},
		{"CA", "CA"},
		{"CAN", "CA"},
		{"DEU", "DE"},
		{" fr ", "FR"},
		{"", ""},
		{"ZZZZ", "ZZZZ"}, // unrecognized passes through upper-cased
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shipping.NormalizeCountry(tt.in), "input %q", tt.in)
	}
}

func TestCountryRoundTrip(t *testing.T) {
	// An alpha-2 code written on an outbound body and an alpha-3 code
	// read back from a response must resolve to the same country.
	for _, alpha2 := range []string{"US", "CA", "GB", "DE", "JP"} {
		alpha3 := shipping.CountryAlpha3(alpha2)
		assert.Equal(t, alpha2, shipping.NormalizeCountry(alpha3), "alpha3 %q", alpha3)
	}
}
