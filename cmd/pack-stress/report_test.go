package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Test that a sweep fills in the per-backend result the report is built from
func TestSweepBackendProducesResult(t *testing.T) {
	const values, rounds = 64, 2

	for _, backend := range []string{"btree", "skiplist"} {
		t.Run(backend, func(t *testing.T) {
			result, err := sweepBackend(context.Background(), backend, values, rounds)
			assert.NoError(t, err)

			assert.Equal(t, backend, result.Backend)
			assert.Len(t, result.RoundTime.Samples, rounds)

			// Fill, three per-item passes plus three stale probes per
			// round, and the final iteration
			wantChecks := int64(values + rounds*(3*values/2+3) + values)
			assert.Equal(t, wantChecks, result.Checks)
		})
	}
}

func TestSweepBackendRejectsUnknownTracker(t *testing.T) {
	_, err := sweepBackend(context.Background(), "linkedlist", 8, 1)
	assert.Error(t, err)
}

func TestSweepReportGenerate(t *testing.T) {

	report := &SweepReport{
		Values: 64,
		Rounds: 2,
		Backends: []SweepBackendResult{
			{Backend: "btree", FillTime: time.Millisecond, Checks: 326},
			{Backend: "skiplist", FillTime: 2 * time.Millisecond, Checks: 326},
		},
		TotalTime: 5 * time.Millisecond,
	}

	var buf bytes.Buffer
	assert.NoError(t, report.Generate(&buf))

	out := buf.String()
	assert.Contains(t, out, "# Packed Sweep Report")
	assert.Contains(t, out, "**Values per Fill:** 64")
	assert.Contains(t, out, "### btree")
	assert.Contains(t, out, "### skiplist")
	assert.Contains(t, out, "**Checks Passed:** 326")
	assert.Contains(t, out, "**Total Test Time:** 5ms")
	assert.Contains(t, out, "Heap Alloc")
	assert.Contains(t, out, "Num GC")
}

func TestChurnReportGenerate(t *testing.T) {

	report := &Report{
		Workers:       4,
		Duration:      10 * time.Second,
		LiveTarget:    10000,
		ReadBias:      60,
		Tracker:       "btree",
		TotalOps:      123456,
		Verifications: 100000,
		StaleProbes:   5000,
		TotalTime:     10 * time.Second,
	}

	var buf bytes.Buffer
	assert.NoError(t, report.Generate(&buf))

	out := buf.String()
	assert.Contains(t, out, "# Packed Churn Report")
	assert.Contains(t, out, "**Workers:** 4")
	assert.Contains(t, out, "**Hole Tracker:** btree")
	assert.Contains(t, out, "**Total Operations:** 123456")
	assert.NotContains(t, out, "GC Pause Durations")

	// The GC section only renders when asked for
	report.GCPauseMetrics = true
	buf.Reset()
	assert.NoError(t, report.Generate(&buf))
	assert.Contains(t, buf.String(), "GC Pause Durations")
}

func TestStatsFinalize(t *testing.T) {
	stats := Stats{
		Samples: []time.Duration{
			3 * time.Millisecond,
			time.Millisecond,
			5 * time.Millisecond,
		},
	}
	stats.Finalize()

	assert.Equal(t, time.Millisecond, stats.Min)
	assert.Equal(t, 5*time.Millisecond, stats.Max)
	assert.Equal(t, 3*time.Millisecond, stats.Avg)
}
