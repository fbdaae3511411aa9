package shippo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelbridge/parcelbridge/pkg/shipping/shippo"
)

func TestHTTPAPIClient_AuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ShippoToken secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/v1/addresses", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object_id":"addr-1","object_state":"VALID","city":"Portland"}`))
	}))
	defer srv.Close()

	client := shippo.NewHTTPAPIClient(shippo.HTTPAPIClientConfig{
		BaseURL:  srv.URL,
		APIToken: "secret-token",
	})

	resp, err := client.CreateAddress(context.Background(), &shippo.AddressRequest{
		Street1: "1 Main St",
		City:    "Portland",
		Country: "US",
	})
	require.NoError(t, err)
	assert.Equal(t, "addr-1", resp.ObjectID)
	assert.Equal(t, "VALID", resp.ObjectState)
}

func TestHTTPAPIClient_GetRatePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rates/rate-42", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"object_id":"rate-42","currency":"USD","amount":"9.99"}`))
	}))
	defer srv.Close()

	client := shippo.NewHTTPAPIClient(shippo.HTTPAPIClientConfig{BaseURL: srv.URL, APIToken: "t"})

	resp, err := client.GetRate(context.Background(), "rate-42")
	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "9.99", resp.Amount)
}

func TestHTTPAPIClient_GetTrackPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tracks/usps/9400111899560008231892", r.URL.Path)
		w.Write([]byte(`{"tracking_number":"9400111899560008231892","tracking_status":{"status":"TRANSIT"}}`))
	}))
	defer srv.Close()

	client := shippo.NewHTTPAPIClient(shippo.HTTPAPIClientConfig{BaseURL: srv.URL, APIToken: "t"})

	resp, err := client.GetTrack(context.Background(), "usps", "9400111899560008231892")
	require.NoError(t, err)
	require.NotNil(t, resp.TrackingStatus)
	assert.Equal(t, "TRANSIT", resp.TrackingStatus.Status)
}

func TestHTTPAPIClient_ErrorDetailParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid token."}`))
	}))
	defer srv.Close()

	client := shippo.NewHTTPAPIClient(shippo.HTTPAPIClientConfig{BaseURL: srv.URL, APIToken: "bad"})

	_, err := client.CreateShipment(context.Background(), &shippo.ShipmentRequest{})
	require.Error(t, err)
	var apiErr *shippo.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid token.", apiErr.Detail)
}

func TestHTTPAPIClient_ErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream unavailable`))
	}))
	defer srv.Close()

	client := shippo.NewHTTPAPIClient(shippo.HTTPAPIClientConfig{BaseURL: srv.URL, APIToken: "t"})

	_, err := client.GetRate(context.Background(), "rate-1")
	require.Error(t, err)
	var apiErr *shippo.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "upstream unavailable")
}
