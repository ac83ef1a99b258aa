package usage

import "time"

// AggregatedStats holds request counters broken down by various dimensions.
type AggregatedStats struct {
	Total       RequestCounts            `json:"total"`
	ByOperation map[string]RequestCounts `json:"by_operation"` // chat, list internships, ...
	ByOutcome   map[string]int64         `json:"by_outcome"`   // ok, auth_required, server_error, ...
	Stale       map[string]int64         `json:"stale"`        // discarded results by producer
}

// RequestCounts holds request/failure sums and cumulative latency.
type RequestCounts struct {
	Requests int64         `json:"requests"`
	Failures int64         `json:"failures"`
	Latency  time.Duration `json:"latency"`
}

func (rc *RequestCounts) Add(failed bool, elapsed time.Duration) {
	rc.Requests++
	if failed {
		rc.Failures++
	}
	rc.Latency += elapsed
}

// MeanLatency is the average latency, zero when nothing was recorded.
func (rc RequestCounts) MeanLatency() time.Duration {
	if rc.Requests == 0 {
		return 0
	}
	return rc.Latency / time.Duration(rc.Requests)
}
