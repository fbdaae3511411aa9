package shipping

import (
	"go.uber.org/atomic"
)

// operations lists every instrumented operation.
var operations = []Operation{
	OpCreateLabel,
	OpTrackShipment,
	OpValidateAddress,
	OpCarrierServices,
	OpEstimateShippingCost,
}

// OperationStats holds per-operation call and error counters. Counters
// are incremented atomically from any goroutine; the periodic flush is
// the only reader that resets them.
type OperationStats struct {
	calls  map[Operation]*atomic.Int64
	errors map[Operation]*atomic.Int64
}

func newOperationStats() *OperationStats {
	s := &OperationStats{
		calls:  make(map[Operation]*atomic.Int64, len(operations)),
		errors: make(map[Operation]*atomic.Int64, len(operations)),
	}
	for _, op := range operations {
		s.calls[op] = atomic.NewInt64(0)
		s.errors[op] = atomic.NewInt64(0)
	}
	return s
}

// RecordCall increments the call counter of an operation.
func (s *OperationStats) RecordCall(op Operation) {
	if c, ok := s.calls[op]; ok {
		c.Inc()
	}
}

// RecordError increments the error counter of an operation.
func (s *OperationStats) RecordError(op Operation) {
	if c, ok := s.errors[op]; ok {
		c.Inc()
	}
}

// SnapshotAndReset atomically reads all counters back to zero and
// returns their values.
func (s *OperationStats) SnapshotAndReset() StatsSnapshot {
	snap := StatsSnapshot{
		Calls:  make(map[Operation]int64, len(s.calls)),
		Errors: make(map[Operation]int64, len(s.errors)),
	}
	for op, c := range s.calls {
		snap.Calls[op] = c.Swap(0)
	}
	for op, c := range s.errors {
		snap.Errors[op] = c.Swap(0)
	}
	return snap
}

// StatsSnapshot is one flushed reading of the operation counters.
type StatsSnapshot struct {
	Calls  map[Operation]int64
	Errors map[Operation]int64
}

// Empty reports whether the snapshot carries no activity.
func (s StatsSnapshot) Empty() bool {
	for _, n := range s.Calls {
		if n != 0 {
			return false
		}
	}
	for _, n := range s.Errors {
		if n != 0 {
			return false
		}
	}
	return true
}

// StatsSink receives flushed operation counters. The periodic flush
// forwards a snapshot roughly every four seconds while instrumentation
// is enabled.
type StatsSink interface {
	FlushStats(provider string, snap StatsSnapshot)
}
