package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/parcelbridge/parcelbridge/internal/server"
	"github.com/parcelbridge/parcelbridge/internal/telemetry"
	"github.com/parcelbridge/parcelbridge/pkg/shipping"
	"github.com/parcelbridge/parcelbridge/pkg/shipping/mock"
)

// promauto registers into the default registry; one Metrics per test
// binary.
var testMetrics = telemetry.NewMetrics()

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	registry := shipping.NewRegistry()
	registry.Register(mock.New("mock", shipping.Capabilities{
		LabelCreation:          true,
		ShipmentTracking:       true,
		AddressValidation:      true,
		CarrierServices:        true,
		ShippingCostEstimation: true,
	}, logger))
	registry.Register(mock.New("gated", shipping.Capabilities{}, logger))

	return server.New(server.Config{Port: 0}, registry, logger, testMetrics).Handler()
}

func TestServer_Health(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Providers(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Providers []string `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{"mock", "gated"}, body.Providers)
}

func TestServer_UnknownProvider(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/nope/carriers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UnsupportedOperation(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/gated/carriers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotImplemented, rec.Code)
	var body struct {
		Error     string `json:"error"`
		Operation string `json:"operation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "carrier_services", body.Operation)
}

func TestServer_CreateLabel(t *testing.T) {
	handler := newTestHandler(t)

	payload := `{
		"carrier_id": "UPS",
		"service_id": "Ground",
		"length": 30, "width": 20, "height": 10,
		"distance_unit": "cm",
		"weight": 2, "weight_unit": "kg",
		"label_format": "pdf",
		"from": {"line1": "1 Origin St", "city": "Portland", "country_code": "US"},
		"to": {"line1": "2 Dest Ave", "city": "Seattle", "country_code": "US"}
	}`

	req := httptest.NewRequest(http.MethodPost, "/v1/mock/labels", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var label struct {
		TrackingNumber string  `json:"tracking_number"`
		CarrierID      string  `json:"carrier_id"`
		CostAmount     float64 `json:"cost_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &label))
	assert.NotEmpty(t, label.TrackingNumber)
	assert.Equal(t, "UPS", label.CarrierID)
	assert.Equal(t, 9.99, label.CostAmount)
}

func TestServer_ValidateAddress(t *testing.T) {
	handler := newTestHandler(t)

	payload := `{"line1": "1 Main St", "city": "New York", "country_code": "usa"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/mock/addresses/validate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var addr struct {
		CountryCode string `json:"country_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addr))
	assert.Equal(t, "US", addr.CountryCode)
}

func TestServer_EstimateCost(t *testing.T) {
	handler := newTestHandler(t)

	payload := `{"carrier_id": "UPS", "service_id": "Ground"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/mock/rates/estimate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var rate struct {
		CarrierID     string   `json:"carrier_id"`
		CostAmount    *float64 `json:"cost_amount"`
		IsAlternative bool     `json:"is_alternative"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rate))
	assert.Equal(t, "UPS", rate.CarrierID)
	require.NotNil(t, rate.CostAmount)
	assert.Equal(t, 12.50, *rate.CostAmount)
	assert.False(t, rate.IsAlternative)
}
