package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/pack/packed"
	"github.com/plus3/pack/packed/holes"
)

var cmdChurn = &cobra.Command{
	Use:   "churn",
	Short: "Run concurrent insert/remove churn with full verification",
	Long: `
The "churn" command runs one container per worker and keeps each at a target
live count while removing and reinserting values as fast as possible. Every
read is checked against a shadow map keyed by handle, retired handles are
probed to confirm they stay stale, every freed slot must be reissued under a
fresh generation, and capacity is watched for growth after the live set has
peaked.

EXIT STATUS
===========

Exit status is 0 if every verification passed.
Exit status is 1 if a verification failed or the scenario could not be read.
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := RunChurn(cmd.Context()); err != nil {
			log.Fatalf("churn failed: %v", err)
		}
	},
}

// ChurnOptions bundles all options for the churn command.
type ChurnOptions struct {
	Workers        int
	Duration       time.Duration
	LiveTarget     int
	ReadBias       int
	Tracker        string
	Seed           uint64
	Scenario       string
	GCPauseMetrics bool
}

var churnOptions ChurnOptions

func init() {
	cmdRoot.AddCommand(cmdChurn)

	f := cmdChurn.Flags()
	f.IntVar(&churnOptions.Workers, "workers", runtime.GOMAXPROCS(0), "number of independent containers to churn concurrently")
	f.DurationVar(&churnOptions.Duration, "duration", 10*time.Second, "how long to keep churning")
	f.IntVar(&churnOptions.LiveTarget, "live-target", 10000, "live values each worker oscillates around")
	f.IntVar(&churnOptions.ReadBias, "read-bias", 60, "percentage of operations that read instead of churn")
	f.StringVar(&churnOptions.Tracker, "tracker", "btree", "hole tracker backend (btree or skiplist)")
	f.Uint64Var(&churnOptions.Seed, "seed", 1, "base seed, worker i derives its stream from seed+i")
	f.StringVar(&churnOptions.Scenario, "scenario", "", "HuJSON scenario file overriding the flags above")
	f.BoolVar(&churnOptions.GCPauseMetrics, "gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
}

func newTracker(kind string, hint int) (holes.Tracker, error) {
	switch kind {
	case "btree":
		return holes.NewBTree(hint), nil
	case "skiplist":
		return holes.NewSkipList(), nil
	default:
		return nil, errors.Errorf("unknown tracker %q (want btree or skiplist)", kind)
	}
}

func RunChurn(ctx context.Context) error {
	opts := churnOptions
	if opts.Scenario != "" {
		sc, err := LoadScenario(opts.Scenario)
		if err != nil {
			return err
		}
		if err := sc.Apply(&opts); err != nil {
			return err
		}
	}
	if opts.Workers < 1 {
		return errors.Errorf("workers must be positive, got %d", opts.Workers)
	}
	if opts.LiveTarget < 1 {
		return errors.Errorf("live-target must be positive, got %d", opts.LiveTarget)
	}
	if opts.ReadBias < 0 || opts.ReadBias > 99 {
		return errors.Errorf("read-bias must be within [0, 99], got %d", opts.ReadBias)
	}
	if _, err := newTracker(opts.Tracker, 0); err != nil {
		return err
	}

	log.Infof("churning %d workers for %s, live target %d, tracker %s",
		opts.Workers, opts.Duration, opts.LiveTarget, opts.Tracker)

	report := &Report{
		Workers:        opts.Workers,
		Duration:       opts.Duration,
		LiveTarget:     opts.LiveTarget,
		ReadBias:       opts.ReadBias,
		Tracker:        opts.Tracker,
		GCPauseMetrics: opts.GCPauseMetrics,
		OpTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	runCtx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	results := make([]workerResult, opts.Workers)
	g, gctx := errgroup.WithContext(runCtx)

	startTime := time.Now()
	for i := range opts.Workers {
		g.Go(func() error {
			result, err := churnWorker(gctx, opts, opts.Seed+uint64(i))
			results[i] = result
			return err
		})
	}
	err := g.Wait()

	report.TotalTime = time.Since(startTime)
	runtime.ReadMemStats(&report.MemStatsEnd)

	if err != nil {
		return err
	}

	for _, result := range results {
		report.TotalOps += result.ops
		report.Verifications += result.verifications
		report.StaleProbes += result.staleProbes
		report.OpTime.Samples = append(report.OpTime.Samples, result.samples...)
	}
	report.OpTime.Finalize()

	log.Info("churn finished, all verifications passed")

	fmt.Println("\n--- Churn Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return errors.Wrap(err, "generate report")
	}
	fmt.Println("--- End of Report ---")

	return nil
}

type workerResult struct {
	ops           int64
	verifications int64
	staleProbes   int64
	samples       []time.Duration
}

// retiredPoolSize caps how many stale handles each worker keeps around for
// probing.
const retiredPoolSize = 4096

// churnWorker churns one container until the context expires. The shadow
// map records what was inserted under each handle key, so every read and
// every remove has an independent expected value.
func churnWorker(ctx context.Context, opts ChurnOptions, seed uint64) (workerResult, error) {
	var result workerResult

	tracker, err := newTracker(opts.Tracker, opts.LiveTarget)
	if err != nil {
		return result, err
	}
	data := packed.NewWithTracker[uint64](tracker)
	shadow := intmap.New[uint64, uint64](opts.LiveTarget * 2)
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))

	live := make([]packed.Item[uint64], 0, opts.LiveTarget)
	retired := make([]packed.Item[uint64], 0, retiredPoolSize)
	var next uint64

	for len(live) < opts.LiveTarget {
		value := next
		next++
		it := data.Insert(value)
		shadow.Put(it.Key(), value)
		live = append(live, it)
	}

	// The live count never exceeds this warmup peak again, so storage must
	// not grow either.
	peakCapacity := data.Capacity()

	for step := int64(0); ; step++ {
		if step%1024 == 0 {
			select {
			case <-ctx.Done():
				return result, finalSweep(data, shadow, live)
			default:
			}
		}

		sampled := step%256 == 0
		var opStart time.Time
		if sampled {
			opStart = time.Now()
		}

		switch roll := rng.IntN(100); {
		case roll < opts.ReadBias:
			it := live[rng.IntN(len(live))]
			want, ok := shadow.Get(it.Key())
			if !ok {
				return result, errors.Errorf("shadow map lost live handle %#x", it.Key())
			}
			if got := *data.Get(it); got != want {
				return result, errors.Errorf("handle %#x resolved to %d, want %d", it.Key(), got, want)
			}
			result.verifications++

		case len(retired) > 0 && roll < opts.ReadBias+(100-opts.ReadBias)/5:
			it := retired[rng.IntN(len(retired))]
			if data.Contains(it) {
				return result, errors.Errorf("retired handle %#x is live again", it.Key())
			}
			result.staleProbes++

		default:
			pick := rng.IntN(len(live))
			it := live[pick]
			want, ok := shadow.Get(it.Key())
			if !ok {
				return result, errors.Errorf("shadow map lost live handle %#x", it.Key())
			}
			if got := data.Remove(it); got != want {
				return result, errors.Errorf("remove of %#x returned %d, want %d", it.Key(), got, want)
			}
			shadow.Del(it.Key())
			if len(retired) < retiredPoolSize {
				retired = append(retired, it)
			}

			// With exactly one hole open, the replacement must take it
			value := next
			next++
			replacement := data.Insert(value)
			if replacement.Index() != it.Index() {
				return result, errors.Errorf("replacement took index %d, expected reuse of %d",
					replacement.Index(), it.Index())
			}
			if replacement.Generation() == it.Generation() {
				return result, errors.Errorf("slot %d was reissued under generation %d again",
					it.Index(), it.Generation())
			}
			shadow.Put(replacement.Key(), value)
			live[pick] = replacement

			if data.Capacity() != peakCapacity {
				return result, errors.Errorf("capacity grew from %d to %d during steady churn",
					peakCapacity, data.Capacity())
			}
			result.verifications++
		}

		if sampled {
			result.samples = append(result.samples, time.Since(opStart))
		}
		result.ops++
	}
}

// finalSweep walks the whole container one last time and reconciles it with
// the shadow map and the live handle list.
func finalSweep(data *packed.Data[uint64], shadow *intmap.Map[uint64, uint64], live []packed.Item[uint64]) error {
	if data.Len() != len(live) {
		return errors.Errorf("container holds %d values, expected %d live", data.Len(), len(live))
	}

	for _, it := range live {
		want, ok := shadow.Get(it.Key())
		if !ok {
			return errors.Errorf("shadow map lost live handle %#x", it.Key())
		}
		if got := *data.Get(it); got != want {
			return errors.Errorf("handle %#x resolved to %d, want %d", it.Key(), got, want)
		}
	}

	count := 0
	for it, value := range data.All() {
		want, ok := shadow.Get(it.Key())
		if !ok {
			return errors.Errorf("iteration yielded handle %#x the shadow map never saw", it.Key())
		}
		if *value != want {
			return errors.Errorf("iteration yielded %d under %#x, want %d", *value, it.Key(), want)
		}
		count++
	}
	if count != len(live) {
		return errors.Errorf("iteration yielded %d values, expected %d", count, len(live))
	}
	return nil
}
