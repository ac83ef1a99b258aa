package usage

import (
	"sync"
	"testing"
	"time"
)

func TestTracker_RecordAggregates(t *testing.T) {
	tracker := NewTracker()

	tracker.Record("chat", OutcomeOK, 10*time.Millisecond)
	tracker.Record("chat", "server_error", 30*time.Millisecond)
	tracker.Record("list internships", OutcomeOK, 20*time.Millisecond)

	stats := tracker.Stats()
	if stats.Total.Requests != 3 || stats.Total.Failures != 1 {
		t.Fatalf("Total=%+v, want requests=3 failures=1", stats.Total)
	}
	if got := stats.Total.MeanLatency(); got != 20*time.Millisecond {
		t.Fatalf("MeanLatency=%v, want 20ms", got)
	}
	if got := stats.ByOperation["chat"]; got.Requests != 2 || got.Failures != 1 {
		t.Fatalf("ByOperation[chat]=%+v, want requests=2 failures=1", got)
	}
	if got := stats.ByOutcome["server_error"]; got != 1 {
		t.Fatalf("ByOutcome[server_error]=%d, want 1", got)
	}
}

func TestTracker_StatsIsACopy(t *testing.T) {
	tracker := NewTracker()
	tracker.RecordStale("active")

	stats := tracker.Stats()
	stats.Stale["active"] = 99

	if got := tracker.Stats().Stale["active"]; got != 1 {
		t.Fatalf("Stale[active]=%d after external mutation, want 1", got)
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tracker := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record("search internships", OutcomeOK, time.Millisecond)
		}()
	}
	wg.Wait()

	if got := tracker.Stats().ByOperation["search internships"].Requests; got != 50 {
		t.Fatalf("Requests=%d, want 50", got)
	}
}

func TestTracker_Summary(t *testing.T) {
	tracker := NewTracker()
	if got, want := tracker.Summary(), "req 0 · fail 0 · stale 0 · avg 0s"; got != want {
		t.Fatalf("Summary()=%q, want %q", got, want)
	}
	tracker.Record("chat", "auth_required", 4*time.Millisecond)
	tracker.RecordStale("active")
	if got, want := tracker.Summary(), "req 1 · fail 1 · stale 1 · avg 4ms"; got != want {
		t.Fatalf("Summary()=%q, want %q", got, want)
	}
}
