package shipping

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// statsFlushSchedule is how often enabled instrumentation forwards the
// operation counters to the sink.
const statsFlushSchedule = "@every 4s"

// BaseSystem carries the provider-independent state of a shipping
// system: the carrier catalog built once from configuration, the live
// session registry, the operation counters and the periodic flush that
// forwards them to a StatsSink. Provider implementations embed it and
// add the operations themselves.
type BaseSystem struct {
	name   string
	caps   Capabilities
	logger *otelzap.Logger
	sink   StatsSink

	catalog  *Catalog
	defaults ConnectParams

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	stats *OperationStats

	instMu          sync.Mutex
	instrumentation bool
	flusher         *cron.Cron
}

// NewBaseSystem creates the shared core of a shipping system. The sink
// may be nil; counters are then reset on flush but forwarded nowhere.
func NewBaseSystem(name string, caps Capabilities, logger *otelzap.Logger, sink StatsSink) *BaseSystem {
	return &BaseSystem{
		name:     name,
		caps:     caps,
		logger:   logger,
		sink:     sink,
		sessions: make(map[uuid.UUID]*Session),
		stats:    newOperationStats(),
	}
}

// Configure resolves this system's provider section in the configuration
// tree and builds the carrier catalog, connection defaults and the
// instrumentation toggle from it. A missing section leaves the system
// unconfigured with no catalog; that is not an error.
func (b *BaseSystem) Configure(v *viper.Viper) error {
	section := ResolveProviderSection(v, b.name)
	if section == nil {
		b.logger.Warn("No provider section in configuration, system left unconfigured",
			zap.String("system", b.name))
		return nil
	}
	cfg, err := LoadProviderConfig(section)
	if err != nil {
		return fmt.Errorf("configuring %s: %w", b.name, err)
	}
	catalog, err := NewCatalog(cfg.Carriers)
	if err != nil {
		return fmt.Errorf("configuring %s: %w", b.name, err)
	}
	b.catalog = catalog
	b.defaults = cfg.ConnectParams.Params()
	b.SetInstrumentation(cfg.Instrumentation)
	b.logger.Info("Shipping system configured",
		zap.String("system", b.name),
		zap.Int("carriers", catalog.Len()),
		zap.Bool("instrumentation", cfg.Instrumentation))
	return nil
}

// Name returns the system identifier.
func (b *BaseSystem) Name() string { return b.name }

// Capabilities returns the supported-operation descriptor.
func (b *BaseSystem) Capabilities() Capabilities { return b.caps }

// Catalog returns the configured carrier catalog; nil when unconfigured.
func (b *BaseSystem) Catalog() *Catalog { return b.catalog }

// DefaultConnectParams returns the configured session defaults.
func (b *BaseSystem) DefaultConnectParams() ConnectParams { return b.defaults }

// SetDefaultConnectParams overrides the session defaults. Used when
// credentials come from the environment rather than the provider file.
func (b *BaseSystem) SetDefaultConnectParams(params ConnectParams) { b.defaults = params }

// Logger returns the system logger.
func (b *BaseSystem) Logger() *otelzap.Logger { return b.logger }

// Stats returns the live operation counters.
func (b *BaseSystem) Stats() *OperationStats { return b.stats }

// OpenSession registers a new session against sys, which must be the
// embedding system. Zero connect params fall back to the configured
// defaults; the timeout is clamped to zero-or-positive.
func (b *BaseSystem) OpenSession(sys System, params SessionParams) (*Session, error) {
	if sys == nil {
		return nil, ErrSystemRequired
	}
	connect := params.Connect
	if connect.IsZero() {
		connect = b.defaults
	}
	if connect.IsZero() {
		return nil, ErrConnectParamsRequired
	}
	if connect.Timeout < 0 {
		connect.Timeout = 0
	}

	sess := &Session{
		id:     uuid.New(),
		name:   params.Name,
		user:   params.User,
		params: connect,
		system: sys,
		host:   b,
	}

	b.mu.Lock()
	b.sessions[sess.id] = sess
	b.mu.Unlock()

	b.logger.Info("Session opened",
		zap.String("system", b.name),
		zap.String("session_id", sess.id.String()),
		zap.String("user", sess.user))
	return sess, nil
}

// closeSession removes a session from the registry. Removing an already
// removed session is a no-op.
func (b *BaseSystem) closeSession(id uuid.UUID) {
	b.mu.Lock()
	delete(b.sessions, id)
	b.mu.Unlock()

	b.logger.Info("Session closed",
		zap.String("system", b.name),
		zap.String("session_id", id.String()))
}

// SessionCount returns the number of live sessions.
func (b *BaseSystem) SessionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// SetInstrumentation enables or disables the periodic counter flush.
// Enabling resets the counters to zero and (re)starts the flush
// schedule; disabling stops it.
func (b *BaseSystem) SetInstrumentation(enabled bool) {
	b.instMu.Lock()
	defer b.instMu.Unlock()

	if b.flusher != nil {
		b.flusher.Stop()
		b.flusher = nil
	}
	if enabled {
		b.stats.SnapshotAndReset()
		c := cron.New()
		// Schedule errors are impossible for a constant descriptor.
		_, _ = c.AddFunc(statsFlushSchedule, b.FlushStats)
		c.Start()
		b.flusher = c
	}
	b.instrumentation = enabled
}

// InstrumentationEnabled reports whether the periodic flush is running.
func (b *BaseSystem) InstrumentationEnabled() bool {
	b.instMu.Lock()
	defer b.instMu.Unlock()
	return b.instrumentation
}

// FlushStats reads-and-resets the operation counters and forwards any
// activity to the sink. The periodic schedule calls it on every tick.
func (b *BaseSystem) FlushStats() {
	snap := b.stats.SnapshotAndReset()
	if b.sink == nil || snap.Empty() {
		return
	}
	b.sink.FlushStats(b.name, snap)
}

// Stop shuts the system down: the flush schedule is stopped, a final
// snapshot is forwarded and all remaining sessions are closed.
func (b *BaseSystem) Stop(ctx context.Context) error {
	b.SetInstrumentation(false)
	b.FlushStats()

	b.mu.Lock()
	remaining := make([]*Session, 0, len(b.sessions))
	for _, sess := range b.sessions {
		remaining = append(remaining, sess)
	}
	b.mu.Unlock()

	for _, sess := range remaining {
		sess.Close()
	}
	b.logger.Info("Shipping system stopped", zap.String("system", b.name))
	return nil
}

// Carriers returns the catalog carriers. An unconfigured system has
// nothing to ship with and returns an empty list.
func (b *BaseSystem) Carriers(ctx context.Context, sess *Session) ([]*Carrier, error) {
	b.stats.RecordCall(OpCarrierServices)
	return b.catalog.Carriers(), nil
}

// TrackingURL is the default template-based lookup: the carrier is
// resolved by case-insensitive name and its tracking URL template filled
// with the tracking number. No match or no template yields "" without
// an error.
func (b *BaseSystem) TrackingURL(ctx context.Context, sess *Session, carrierID, trackingNumber string) (string, error) {
	carrier := b.catalog.Find(carrierID)
	if carrier == nil {
		return "", nil
	}
	return carrier.TrackingURL(trackingNumber), nil
}

// TrackShipment is the default implementation for providers without a
// tracking API: it wraps the tracking URL lookup into a TrackInfo with
// unknown status.
func (b *BaseSystem) TrackShipment(ctx context.Context, sess *Session, carrierID, trackingNumber string) (*TrackInfo, error) {
	url, err := b.TrackingURL(ctx, sess, carrierID, trackingNumber)
	if err != nil {
		return nil, err
	}
	return &TrackInfo{
		TrackingNumber: trackingNumber,
		TrackingURL:    url,
		CarrierID:      carrierID,
		Status:         TrackStatusUnknown,
	}, nil
}
