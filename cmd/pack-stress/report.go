package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"
)

type Report struct {
	// Configuration
	Workers    int
	Duration   time.Duration
	LiveTarget int
	ReadBias   int
	Tracker    string

	// Results
	TotalOps       int64
	Verifications  int64
	StaleProbes    int64
	TotalTime      time.Duration
	OpTime         Stats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

var reportFuncs = template.FuncMap{
	"mb": func(v any) string {
		switch val := v.(type) {
		case uint64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		case int64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		default:
			return "N/A"
		}
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Packed Churn Report

## Test Configuration
- **Workers:** {{.Workers}}
- **Run Duration:** {{.Duration}}
- **Live Target (per worker):** {{.LiveTarget}}
- **Read Bias:** {{.ReadBias}}%
- **Hole Tracker:** {{.Tracker}}

## Verification Results
- **Total Operations:** {{.TotalOps}}
- **Verified Reads:** {{.Verifications}}
- **Stale Probes:** {{.StaleProbes}}
- **Total Test Time:** {{.TotalTime}}
- **Op Time (Sampled):**
  - **Avg:** {{.OpTime.Avg}}
  - **Min:** {{.OpTime.Min}}
  - **Max:** {{.OpTime.Max}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}

// SweepReport summarizes one deterministic sweep run across every tracker
// backend.
type SweepReport struct {
	// Configuration
	Values int
	Rounds int

	// Results
	Backends      []SweepBackendResult
	TotalTime     time.Duration
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

// SweepBackendResult is the outcome of sweeping one tracker backend.
type SweepBackendResult struct {
	Backend  string
	FillTime time.Duration
	// RoundTime holds one sample per free/refill round.
	RoundTime Stats
	Checks    int64
}

func (r *SweepReport) Generate(w io.Writer) error {
	const sweepTemplate = `
# Packed Sweep Report

## Test Configuration
- **Values per Fill:** {{.Values}}
- **Free/Refill Rounds:** {{.Rounds}}

## Backend Results
{{range .Backends}}### {{.Backend}}
- **Checks Passed:** {{.Checks}}
- **Initial Fill:** {{.FillTime}}
- **Round Time:**
  - **Avg:** {{.RoundTime.Avg}}
  - **Min:** {{.RoundTime.Min}}
  - **Max:** {{.RoundTime.Max}}

{{end}}- **Total Test Time:** {{.TotalTime}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

	tmpl, err := template.New("sweep").Funcs(reportFuncs).Parse(sweepTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
