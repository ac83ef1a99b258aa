// Package usage keeps in-memory request statistics for the current run.
package usage

import (
	"fmt"
	"sync"
	"time"
)

// OutcomeOK is the outcome recorded for successful requests.
const OutcomeOK = "ok"

// Tracker records request outcomes and discarded stale results.
// It is safe for concurrent use; requests complete on worker goroutines.
type Tracker struct {
	mu   sync.Mutex
	data AggregatedStats
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		data: AggregatedStats{
			ByOperation: make(map[string]RequestCounts),
			ByOutcome:   make(map[string]int64),
			Stale:       make(map[string]int64),
		},
	}
}

// Record records one completed request.
func (t *Tracker) Record(op, outcome string, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	failed := outcome != OutcomeOK
	t.data.Total.Add(failed, elapsed)

	entry := t.data.ByOperation[op]
	entry.Add(failed, elapsed)
	t.data.ByOperation[op] = entry

	t.data.ByOutcome[outcome]++
}

// RecordStale records a result discarded because its query was superseded.
func (t *Tracker) RecordStale(producer string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Stale[producer]++
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data
	stats.ByOperation = copyMap(stats.ByOperation)
	stats.ByOutcome = copyMap(stats.ByOutcome)
	stats.Stale = copyMap(stats.Stale)
	return stats
}

// Summary renders a one-line footer.
func (t *Tracker) Summary() string {
	stats := t.Stats()
	var stale int64
	for _, n := range stats.Stale {
		stale += n
	}
	return fmt.Sprintf("req %d · fail %d · stale %d · avg %v",
		stats.Total.Requests, stats.Total.Failures, stale, stats.Total.MeanLatency().Round(time.Millisecond))
}

func copyMap[V any](src map[string]V) map[string]V {
	if src == nil {
		return nil
	}
	dst := make(map[string]V, len(src))
	for key, v := range src {
		dst[key] = v
	}
	return dst
}
