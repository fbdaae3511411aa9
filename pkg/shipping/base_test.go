package shipping_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
	"github.com/parcelbridge/parcelbridge/pkg/shipping/mock"
)

const providersYAML = `
shipping:
  providers:
    acme:
      instrumentation: false
      default-session-connect-params:
        api-token: yaml-token
        base-url: https://api.example.com
        timeout-seconds: 15
      carriers:
        - type: ups
          name: UPS
          tracking-url: "https://www.ups.com/track?tracknum={tracking_number}"
          services:
            - name: Ground
              price-category: economy
              trackable: true
            - name: Express
              price-category: premium
              trackable: true
              insurable: true
          packages:
            - name: Small Box
              type: box
              length: 30
              width: 20
              height: 10
              dimension-unit: cm
              weight: 2
              weight-unit: kg
        - type: fedex
          name: FedEx
          localized-names:
            fr: FedEx Express
  provider:
    default-session-connect-params:
      api-token: fallback-token
    carriers:
      - type: usps
        name: USPS
`

func loadYAML(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

func TestConfigure_NamedProviderSection(t *testing.T) {
	sys := mock.New("acme", shipping.Capabilities{CarrierServices: true}, testLogger())
	require.NoError(t, sys.Configure(loadYAML(t, providersYAML)))

	assert.Equal(t, 2, sys.Catalog().Len())
	assert.Equal(t, "yaml-token", sys.DefaultConnectParams().APIToken)
	assert.Equal(t, 15*time.Second, sys.DefaultConnectParams().Timeout)

	ups := sys.Catalog().Find("ups")
	require.NotNil(t, ups)
	assert.Equal(t, shipping.CarrierUPS, ups.Type)
	assert.Len(t, ups.Services(), 2)
	assert.Len(t, ups.Packages(), 1)

	ground := ups.Service("GROUND")
	require.NotNil(t, ground)
	assert.Equal(t, shipping.PriceEconomy, ground.PriceCategory)
	assert.True(t, ground.Trackable)

	fedex := sys.Catalog().Find("FEDEX")
	require.NotNil(t, fedex)
	assert.Equal(t, "FedEx Express", fedex.LocalizedName("FR"))
	assert.Equal(t, "FedEx", fedex.LocalizedName("de"))
}

func TestConfigure_UnnamedProviderFallback(t *testing.T) {
	sys := mock.New("other", shipping.Capabilities{}, testLogger())
	require.NoError(t, sys.Configure(loadYAML(t, providersYAML)))

	assert.Equal(t, 1, sys.Catalog().Len())
	assert.Equal(t, "fallback-token", sys.DefaultConnectParams().APIToken)
	assert.NotNil(t, sys.Catalog().Find("usps"))
}

func TestConfigure_MissingSectionLeavesUnconfigured(t *testing.T) {
	base := shipping.NewBaseSystem("nobody", shipping.Capabilities{}, testLogger(), nil)
	require.NoError(t, base.Configure(loadYAML(t, "other:\n  key: value\n")))

	assert.Equal(t, 0, base.Catalog().Len())
	assert.True(t, base.DefaultConnectParams().IsZero())
}

func TestConfigure_DuplicateCarrierNamesRejected(t *testing.T) {
	const dup = `
shipping:
  provider:
    carriers:
      - type: ups
        name: UPS
      - type: fedex
        name: UPS
`
	base := shipping.NewBaseSystem("dup", shipping.Capabilities{}, testLogger(), nil)
	err := base.Configure(loadYAML(t, dup))
	require.Error(t, err)
}

func TestConfigure_UnknownCarrierTypeRejected(t *testing.T) {
	const bad = `
shipping:
  provider:
    carriers:
      - type: pigeon
        name: Carrier Pigeon
`
	base := shipping.NewBaseSystem("bad", shipping.Capabilities{}, testLogger(), nil)
	err := base.Configure(loadYAML(t, bad))
	require.Error(t, err)
}

func TestCarrier_TrackingURLTemplate(t *testing.T) {
	sys := mock.New("acme", shipping.Capabilities{}, testLogger())
	require.NoError(t, sys.Configure(loadYAML(t, providersYAML)))

	ups := sys.Catalog().Find("ups")
	require.NotNil(t, ups)
	assert.Equal(t, "https://www.ups.com/track?tracknum=1Z999", ups.TrackingURL("1Z999"))

	// FedEx has no template.
	fedex := sys.Catalog().Find("fedex")
	require.NotNil(t, fedex)
	assert.Equal(t, "", fedex.TrackingURL("1234"))
}

func TestBaseSystem_DefaultTrackingURL(t *testing.T) {
	sys := mock.New("acme", shipping.Capabilities{ShipmentTracking: true}, testLogger())
	require.NoError(t, sys.Configure(loadYAML(t, providersYAML)))

	sess, err := sys.StartSession(context.Background(), shipping.SessionParams{
		Connect: shipping.ConnectParams{APIToken: "t"},
	})
	require.NoError(t, err)
	defer sess.Close()

	// Case-insensitive carrier match against the catalog.
	url, err := sess.TrackingURL(context.Background(), "uPs", "1Z999")
	require.NoError(t, err)
	assert.Equal(t, "https://www.ups.com/track?tracknum=1Z999", url)

	// Unknown carrier yields "" without an error.
	url, err = sess.TrackingURL(context.Background(), "nope", "1Z999")
	require.NoError(t, err)
	assert.Equal(t, "", url)
}

func TestBaseSystem_DefaultTrackShipment(t *testing.T) {
	sys := mock.New("acme", shipping.Capabilities{ShipmentTracking: true}, testLogger())
	require.NoError(t, sys.Configure(loadYAML(t, providersYAML)))

	sess, err := sys.StartSession(context.Background(), shipping.SessionParams{
		Connect: shipping.ConnectParams{APIToken: "t"},
	})
	require.NoError(t, err)
	defer sess.Close()

	info, err := sess.TrackShipment(context.Background(), "UPS", "1Z999")
	require.NoError(t, err)
	assert.Equal(t, "1Z999", info.TrackingNumber)
	assert.Equal(t, "UPS", info.CarrierID)
	assert.Equal(t, shipping.TrackStatusUnknown, info.Status)
	assert.Equal(t, "https://www.ups.com/track?tracknum=1Z999", info.TrackingURL)
}

func TestBaseSystem_StopClosesSessions(t *testing.T) {
	sys := mock.New("stopme", shipping.Capabilities{}, testLogger())

	_, err := sys.StartSession(context.Background(), shipping.SessionParams{})
	require.NoError(t, err)
	_, err = sys.StartSession(context.Background(), shipping.SessionParams{})
	require.NoError(t, err)
	require.Equal(t, 2, sys.SessionCount())

	require.NoError(t, sys.Stop(context.Background()))
	assert.Equal(t, 0, sys.SessionCount())
}
