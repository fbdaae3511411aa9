package shipping_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
	"github.com/parcelbridge/parcelbridge/pkg/shipping/mock"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := shipping.NewRegistry()
	registry.Register(mock.New("Alpha", shipping.Capabilities{}, testLogger()))
	registry.Register(mock.New("beta", shipping.Capabilities{}, testLogger()))

	assert.Equal(t, 2, registry.Count())
	assert.ElementsMatch(t, []string{"alpha", "beta"}, registry.Names())

	sys, err := registry.Get("ALPHA")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", sys.Name())

	_, err = registry.Get("gamma")
	assert.ErrorIs(t, err, shipping.ErrProviderNotFound)
}

func TestRegistry_EstimateAll(t *testing.T) {
	caps := shipping.Capabilities{ShippingCostEstimation: true}
	one := mock.New("one", caps, testLogger())
	two := mock.New("two", caps, testLogger())
	gated := mock.New("gated", shipping.Capabilities{}, testLogger())

	sessions := make([]*shipping.Session, 0, 3)
	for _, sys := range []*mock.System{one, two, gated} {
		sess, err := sys.StartSession(context.Background(), shipping.SessionParams{})
		require.NoError(t, err)
		defer sess.Close()
		sessions = append(sessions, sess)
	}

	registry := shipping.NewRegistry()
	rates, errs := registry.EstimateAll(context.Background(), sessions, &shipping.Shipment{
		CarrierID: "UPS",
		ServiceID: "Ground",
	})

	// The gated provider fails without taking down the others.
	assert.Len(t, rates, 2)
	require.Len(t, errs, 1)
	var unsupported *shipping.UnsupportedOperationError
	assert.ErrorAs(t, errs[0], &unsupported)
}
