package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plus3/pack/packed"
)

var cmdSweep = &cobra.Command{
	Use:   "sweep",
	Short: "Run the deterministic fill/free/refill acceptance sweep",
	Long: `
The "sweep" command fills a container, removes every second handle, and
refills it, checking the documented behavior at each step: Remove hands back
the value that was stored, survivors stay addressable, freed indices are
reused in ascending order under fresh generations, and capacity never moves
after the initial fill. The whole sweep runs against every tracker backend.

EXIT STATUS
===========

Exit status is 0 if every check passed.
Exit status is 1 if a check failed.
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := RunSweep(cmd.Context()); err != nil {
			log.Fatalf("sweep failed: %v", err)
		}
	},
}

// SweepOptions bundles all options for the sweep command.
type SweepOptions struct {
	Values int
	Rounds int
}

var sweepOptions SweepOptions

func init() {
	cmdRoot.AddCommand(cmdSweep)

	f := cmdSweep.Flags()
	f.IntVar(&sweepOptions.Values, "values", 100000, "values per fill, rounded down to even")
	f.IntVar(&sweepOptions.Rounds, "rounds", 3, "free/refill rounds per backend")
}

func RunSweep(ctx context.Context) error {
	values := sweepOptions.Values / 2 * 2
	if values < 2 {
		return errors.Errorf("values must be at least 2, got %d", sweepOptions.Values)
	}
	if sweepOptions.Rounds < 1 {
		return errors.Errorf("rounds must be positive, got %d", sweepOptions.Rounds)
	}

	report := &SweepReport{
		Values: values,
		Rounds: sweepOptions.Rounds,
	}

	runtime.ReadMemStats(&report.MemStatsStart)
	startTime := time.Now()

	for _, backend := range []string{"btree", "skiplist"} {
		log.Infof("sweeping %s tracker, %d values, %d rounds", backend, values, sweepOptions.Rounds)
		result, err := sweepBackend(ctx, backend, values, sweepOptions.Rounds)
		if err != nil {
			return errors.Wrapf(err, "%s tracker", backend)
		}
		result.RoundTime.Finalize()
		report.Backends = append(report.Backends, result)
	}

	report.TotalTime = time.Since(startTime)
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("sweep finished, all checks passed")

	fmt.Println("\n--- Sweep Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return errors.Wrap(err, "generate report")
	}
	fmt.Println("--- End of Report ---")

	return nil
}

func sweepBackend(ctx context.Context, backend string, values, rounds int) (SweepBackendResult, error) {
	result := SweepBackendResult{Backend: backend}

	tracker, err := newTracker(backend, values)
	if err != nil {
		return result, err
	}
	data := packed.NewWithTracker[int](tracker)

	// expected mirrors the value most recently inserted at each index
	expected := make([]int, values)
	handles := make([]packed.Item[int], values)

	fillStart := time.Now()
	for i := range values {
		handles[i] = data.Insert(i)
		expected[i] = i
		if handles[i].Index() != i {
			return result, errors.Errorf("initial fill placed value %d at index %d", i, handles[i].Index())
		}
		result.Checks++
	}
	result.FillTime = time.Since(fillStart)
	capacityAfterFill := data.Capacity()

	for round := 1; round <= rounds; round++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		roundStart := time.Now()

		// Free the even slots
		for i := 0; i < values; i += 2 {
			got := data.Remove(handles[i])
			if got != expected[i] {
				return result, errors.Errorf("round %d: remove at index %d returned %d, want %d", round, i, got, expected[i])
			}
			result.Checks++
		}
		if got := data.Len(); got != values/2 {
			return result, errors.Errorf("round %d: len is %d after removals, want %d", round, got, values/2)
		}
		if got := data.Capacity(); got != capacityAfterFill {
			return result, errors.Errorf("round %d: capacity moved from %d to %d on removals", round, capacityAfterFill, got)
		}
		for _, i := range []int{0, 2, values - 2} {
			if data.Contains(handles[i]) {
				return result, errors.Errorf("round %d: removed handle at index %d still resolves", round, i)
			}
			result.Checks++
		}

		// Refill; freed indices must come back in ascending order under
		// fresh generations
		for k := 0; k < values/2; k++ {
			value := round*values + k
			it := data.Insert(value)
			wantIndex := 2 * k
			if it.Index() != wantIndex {
				return result, errors.Errorf("round %d: refill %d reused index %d, want %d", round, k, it.Index(), wantIndex)
			}
			if it.Generation() == handles[wantIndex].Generation() {
				return result, errors.Errorf("round %d: slot %d was reissued under generation %d again",
					round, wantIndex, it.Generation())
			}
			handles[wantIndex] = it
			expected[wantIndex] = value
			result.Checks++
		}
		if got := data.Len(); got != values {
			return result, errors.Errorf("round %d: len is %d after refill, want %d", round, got, values)
		}
		if got := data.Capacity(); got != capacityAfterFill {
			return result, errors.Errorf("round %d: capacity moved from %d to %d on refill", round, capacityAfterFill, got)
		}

		// Odd slots were never touched
		for i := 1; i < values; i += 2 {
			if got := *data.Get(handles[i]); got != expected[i] {
				return result, errors.Errorf("round %d: survivor at index %d holds %d, want %d", round, i, got, expected[i])
			}
			result.Checks++
		}

		result.RoundTime.Samples = append(result.RoundTime.Samples, time.Since(roundStart))
	}

	// Full reconciliation by iteration
	count := 0
	for it, value := range data.All() {
		if *value != expected[it.Index()] {
			return result, errors.Errorf("iteration found %d at index %d, want %d", *value, it.Index(), expected[it.Index()])
		}
		count++
	}
	if count != values {
		return result, errors.Errorf("iteration yielded %d values, want %d", count, values)
	}
	result.Checks += int64(count)

	return result, nil
}
