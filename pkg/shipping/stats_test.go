package shipping_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
	"github.com/parcelbridge/parcelbridge/pkg/shipping/mock"
)

func TestOperationStats_SnapshotAndReset(t *testing.T) {
	sys := mock.New("counted", shipping.Capabilities{}, testLogger())
	stats := sys.Stats()

	stats.RecordCall(shipping.OpCreateLabel)
	stats.RecordCall(shipping.OpCreateLabel)
	stats.RecordCall(shipping.OpTrackShipment)
	stats.RecordError(shipping.OpCreateLabel)

	snap := stats.SnapshotAndReset()
	assert.Equal(t, int64(2), snap.Calls[shipping.OpCreateLabel])
	assert.Equal(t, int64(1), snap.Calls[shipping.OpTrackShipment])
	assert.Equal(t, int64(1), snap.Errors[shipping.OpCreateLabel])
	assert.False(t, snap.Empty())

	// Reading resets the counters.
	snap = stats.SnapshotAndReset()
	assert.True(t, snap.Empty())
}

func TestOperationStats_ConcurrentIncrements(t *testing.T) {
	sys := mock.New("raced", shipping.Capabilities{}, testLogger())
	stats := sys.Stats()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				stats.RecordCall(shipping.OpValidateAddress)
			}
		}()
	}
	wg.Wait()

	snap := stats.SnapshotAndReset()
	assert.Equal(t, int64(1000), snap.Calls[shipping.OpValidateAddress])
}

type captureSink struct {
	mu    sync.Mutex
	snaps []shipping.StatsSnapshot
}

func (c *captureSink) FlushStats(provider string, snap shipping.StatsSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, snap)
}

func TestBaseSystem_FlushStats(t *testing.T) {
	sink := &captureSink{}
	base := shipping.NewBaseSystem("flushed", shipping.Capabilities{}, testLogger(), sink)

	base.Stats().RecordCall(shipping.OpCreateLabel)
	base.FlushStats()

	require.Len(t, sink.snaps, 1)
	assert.Equal(t, int64(1), sink.snaps[0].Calls[shipping.OpCreateLabel])

	// Nothing new to report: no flush is forwarded.
	base.FlushStats()
	assert.Len(t, sink.snaps, 1)
}

func TestBaseSystem_SetInstrumentationResetsCounters(t *testing.T) {
	sink := &captureSink{}
	base := shipping.NewBaseSystem("toggled", shipping.Capabilities{}, testLogger(), sink)

	base.Stats().RecordCall(shipping.OpCreateLabel)

	// Enabling discards activity recorded while disabled.
	base.SetInstrumentation(true)
	assert.True(t, base.InstrumentationEnabled())
	snap := base.Stats().SnapshotAndReset()
	assert.True(t, snap.Empty())

	base.SetInstrumentation(false)
	assert.False(t, base.InstrumentationEnabled())
}
