package main

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"

	"github.com/parcelbridge/parcelbridge/internal/config"
	"github.com/parcelbridge/parcelbridge/internal/telemetry"
	"github.com/parcelbridge/parcelbridge/pkg/shipping"
	"github.com/parcelbridge/parcelbridge/pkg/shipping/mock"
	"github.com/parcelbridge/parcelbridge/pkg/shipping/shippo"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTELEndpoint)
}

// initShippingRegistry builds the provider systems, configures them from
// the providers file and registers them.
func initShippingRegistry(cfg *config.Config, logger *otelzap.Logger) (*shipping.Registry, *telemetry.Metrics, error) {
	registry := shipping.NewRegistry()
	metrics := telemetry.NewMetrics()
	tracer := otel.GetTracerProvider().Tracer(cfg.ServiceName)

	providers, err := cfg.LoadProviders()
	if err != nil {
		return nil, nil, err
	}

	if cfg.ShippoEnabled {
		var sys *shippo.System
		if cfg.ShippoUseMock {
			sys = shippo.NewWithAPIClient(shippo.NewMockAPIClient(), logger, tracer, metrics)
		} else {
			sys = shippo.New(logger, tracer, metrics)
		}
		if err := sys.Configure(providers); err != nil {
			return nil, nil, err
		}
		if sys.DefaultConnectParams().IsZero() && cfg.ShippoAPIToken != "" {
			sys.SetDefaultConnectParams(shipping.ConnectParams{
				APIToken: cfg.ShippoAPIToken,
				BaseURL:  cfg.ShippoBaseURL,
			})
		}
		registry.Register(sys)
	}

	if cfg.MockEnabled {
		sys := mock.New("mock", shipping.Capabilities{
			LabelCreation:          true,
			ShipmentTracking:       true,
			AddressValidation:      true,
			CarrierServices:        true,
			ShippingCostEstimation: true,
		}, logger)
		if err := sys.Configure(providers); err != nil {
			return nil, nil, err
		}
		registry.Register(sys)
	}

	return registry, metrics, nil
}
