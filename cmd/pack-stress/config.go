package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

// Scenario is an on-disk churn configuration. The format is HuJSON, so
// comments and trailing commas are allowed:
//
//	{
//	    // soak the skip list tracker overnight
//	    "workers": 8,
//	    "duration": "8h",
//	    "live_target": 250000,
//	    "tracker": "skiplist",
//	}
//
// Fields left out keep the values already set by flags.
type Scenario struct {
	Workers    int    `json:"workers"`
	Duration   string `json:"duration"`
	LiveTarget int    `json:"live_target"`
	ReadBias   int    `json:"read_bias"`
	Tracker    string `json:"tracker"`
	Seed       uint64 `json:"seed"`
}

// LoadScenario reads and parses the scenario file at path.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}

	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "standardize scenario %s", path)
	}

	var sc Scenario
	if err := json.Unmarshal(std, &sc); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	return &sc, nil
}

// Apply copies the scenario's set fields over opts.
func (sc *Scenario) Apply(opts *ChurnOptions) error {
	if sc.Workers != 0 {
		opts.Workers = sc.Workers
	}
	if sc.Duration != "" {
		duration, err := time.ParseDuration(sc.Duration)
		if err != nil {
			return errors.Wrapf(err, "scenario duration %q", sc.Duration)
		}
		opts.Duration = duration
	}
	if sc.LiveTarget != 0 {
		opts.LiveTarget = sc.LiveTarget
	}
	if sc.ReadBias != 0 {
		opts.ReadBias = sc.ReadBias
	}
	if sc.Tracker != "" {
		opts.Tracker = sc.Tracker
	}
	if sc.Seed != 0 {
		opts.Seed = sc.Seed
	}
	return nil
}
