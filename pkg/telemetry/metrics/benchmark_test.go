package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BenchmarkCollector_RecordRequest measures HTTP request metric
// recording overhead.
// Target: <50µs per update.
func BenchmarkCollector_RecordRequest(b *testing.B) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordRequest("POST", "/v1/resolve", "200", 2*time.Millisecond, 512)
	}
}

// BenchmarkCollector_RecordResolution measures resolution metric
// recording overhead, including the cardinality check.
// Target: <50µs per update.
func BenchmarkCollector_RecordResolution(b *testing.B) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordResolution("formal-v2", "resolved", "dropdown", 80*time.Microsecond)
	}
}

// BenchmarkCollector_RecordResolution_UniqueStyles measures the limiter
// under a stream of distinct style IDs, the worst case for the
// cardinality map.
func BenchmarkCollector_RecordResolution_UniqueStyles(b *testing.B) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	ids := make([]string, 256)
	for i := range ids {
		ids[i] = fmt.Sprintf("style-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordResolution(ids[i%len(ids)], "resolved", "override", 80*time.Microsecond)
	}
}

// BenchmarkCollector_RecordResolution_Parallel measures contention on
// the hot path under concurrent load.
func BenchmarkCollector_RecordResolution_Parallel(b *testing.B) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordResolution("formal-v2", "resolved", "dropdown", 80*time.Microsecond)
		}
	})
}

// BenchmarkCollector_RecordUsageEvent measures usage event counting.
func BenchmarkCollector_RecordUsageEvent(b *testing.B) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordUsageEvent("recorded")
	}
}

// BenchmarkCollector_Disabled measures the early-return path when
// metrics are disabled.
// Target: <100ns per call.
func BenchmarkCollector_Disabled(b *testing.B) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordResolution("formal-v2", "resolved", "dropdown", 80*time.Microsecond)
	}
}

// BenchmarkCardinalityLimiter_Allow measures limiter lookups for an
// existing label set (the steady-state case).
func BenchmarkCardinalityLimiter_Allow(b *testing.B) {
	limiter := NewCardinalityLimiter(10000)
	limiter.Allow("resolution:formal-v2")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("resolution:formal-v2")
	}
}
