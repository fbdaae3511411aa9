package shipping

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeCountry canonicalizes a country code to ISO 3166-1 alpha-2.
// It accepts alpha-2, alpha-3 and numeric forms in any case ("us", "USA",
// "840" all yield "US"). Unrecognized input is returned trimmed and
// upper-cased rather than rejected; address validation is the provider's
// job, not ours.
func NormalizeCountry(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	return region.String()
}

// CountryAlpha3 returns the ISO 3166-1 alpha-3 form of a country code,
// or the input upper-cased when it cannot be resolved.
func CountryAlpha3(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	return region.ISO3()
}
