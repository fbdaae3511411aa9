package shipping

import (
	"strings"

	"github.com/samber/lo"
)

// trackingNumberPlaceholder is substituted into a carrier's tracking URL
// template when building a public tracking link.
const trackingNumberPlaceholder = "{tracking_number}"

// CarrierService is one price/speed tier of a carrier, e.g. "Ground".
type CarrierService struct {
	Name             string
	PriceCategory    PriceCategory
	IncludesSaturday bool
	IncludesSunday   bool
	Trackable        bool
	Insurable        bool
}

// CarrierPackage is a physical packaging template a carrier ships with.
type CarrierPackage struct {
	Name         string
	Type         PackageType
	Length       float64
	Width        float64
	Height       float64
	DistanceUnit DistanceUnit
	Weight       float64
	WeightUnit   WeightUnit
}

// Carrier is one shipping company known to a system, with its service
// and package registries. Carriers are built once during configuration
// and read-only afterward, so concurrent reads need no locking.
type Carrier struct {
	Type                CarrierType
	Name                string
	LocalizedNames      map[string]string
	TrackingURLTemplate string

	services      []*CarrierService
	serviceByName map[string]*CarrierService
	packages      []*CarrierPackage
	packageByName map[string]*CarrierPackage
}

// LocalizedName returns the carrier name for the given language tag,
// falling back to the canonical name.
func (c *Carrier) LocalizedName(lang string) string {
	if name, ok := c.LocalizedNames[strings.ToLower(lang)]; ok && name != "" {
		return name
	}
	return c.Name
}

// Services returns the carrier's service tiers in declaration order.
func (c *Carrier) Services() []*CarrierService {
	return c.services
}

// Service looks up a service tier by case-insensitive name.
func (c *Carrier) Service(name string) *CarrierService {
	return c.serviceByName[strings.ToLower(name)]
}

// Packages returns the carrier's packaging templates in declaration order.
func (c *Carrier) Packages() []*CarrierPackage {
	return c.packages
}

// Package looks up a packaging template by case-insensitive name.
func (c *Carrier) Package(name string) *CarrierPackage {
	return c.packageByName[strings.ToLower(name)]
}

// TrackingURL fills the carrier's tracking URL template with the given
// tracking number. Returns "" when the carrier has no template.
func (c *Carrier) TrackingURL(trackingNumber string) string {
	if c.TrackingURLTemplate == "" {
		return ""
	}
	return strings.ReplaceAll(c.TrackingURLTemplate, trackingNumberPlaceholder, trackingNumber)
}

// Catalog is the read-only carrier registry of one shipping system.
type Catalog struct {
	carriers []*Carrier
	byName   map[string]*Carrier
}

// NewCatalog builds a catalog from validated carrier configuration.
func NewCatalog(configs []CarrierConfig) (*Catalog, error) {
	catalog := &Catalog{
		byName: make(map[string]*Carrier, len(configs)),
	}
	for _, cc := range configs {
		carrier := &Carrier{
			Type:                CarrierType(cc.Type),
			Name:                cc.Name,
			LocalizedNames:      lowercaseKeys(cc.LocalizedNames),
			TrackingURLTemplate: cc.TrackingURL,
			serviceByName:       make(map[string]*CarrierService, len(cc.Services)),
			packageByName:       make(map[string]*CarrierPackage, len(cc.Packages)),
		}
		carrier.services = lo.Map(cc.Services, func(sc ServiceConfig, _ int) *CarrierService {
			return &CarrierService{
				Name:             sc.Name,
				PriceCategory:    PriceCategory(sc.PriceCategory),
				IncludesSaturday: sc.IncludesSaturday,
				IncludesSunday:   sc.IncludesSunday,
				Trackable:        sc.Trackable,
				Insurable:        sc.Insurable,
			}
		})
		for _, svc := range carrier.services {
			carrier.serviceByName[strings.ToLower(svc.Name)] = svc
		}
		carrier.packages = lo.Map(cc.Packages, func(pc PackageConfig, _ int) *CarrierPackage {
			return &CarrierPackage{
				Name:         pc.Name,
				Type:         PackageType(pc.Type),
				Length:       pc.Length,
				Width:        pc.Width,
				Height:       pc.Height,
				DistanceUnit: DistanceUnit(pc.DimensionUnit),
				Weight:       pc.Weight,
				WeightUnit:   WeightUnit(pc.WeightUnit),
			}
		})
		for _, pkg := range carrier.packages {
			carrier.packageByName[strings.ToLower(pkg.Name)] = pkg
		}
		catalog.carriers = append(catalog.carriers, carrier)
		catalog.byName[strings.ToLower(carrier.Name)] = carrier
	}
	return catalog, nil
}

// Carriers returns all carriers in declaration order.
func (c *Catalog) Carriers() []*Carrier {
	if c == nil {
		return nil
	}
	return c.carriers
}

// Find looks up a carrier by case-insensitive name. Returns nil when the
// carrier is unknown or the catalog is empty.
func (c *Catalog) Find(name string) *Carrier {
	if c == nil {
		return nil
	}
	return c.byName[strings.ToLower(name)]
}

// Len returns the number of carriers in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.carriers)
}

func lowercaseKeys(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
