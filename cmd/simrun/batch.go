// cmd/simrun/batch.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/goforj/godump"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/gatekeep/OpenRA/log"
	"github.com/gatekeep/OpenRA/sim"
	"github.com/gatekeep/OpenRA/telemetry"
	"github.com/gatekeep/OpenRA/util"
)

type runner struct {
	raw  []byte // scenario JSON; nil selects the built-in demo
	name string
	lg   *log.Logger
}

type runResult struct {
	Seed      int64
	TookOff   int
	Landed    int
	Crushed   int
	Abandoned int
	Stats     sim.Stats
	Verified  string
	Elapsed   time.Duration
	Err       error
}

func (r *runner) batch() []runResult {
	count := viper.GetInt("run.count")
	baseSeed := viper.GetInt64("run.seed")
	results := make([]runResult, count)

	var eg errgroup.Group
	eg.SetLimit(viper.GetInt("run.parallel"))
	for i := 0; i < count; i++ {
		eg.Go(func() error {
			results[i] = r.one(baseSeed+int64(i), i == 0)
			return results[i].Err
		})
	}
	// Per-run errors are reported through the results table.
	_ = eg.Wait()
	return results
}

func (r *runner) one(seed int64, primary bool) runResult {
	res := runResult{Seed: seed, Verified: "-"}
	start := time.Now()

	final, err := r.execute(seed, primary, &res)
	if err != nil {
		res.Err = err
		return res
	}

	if viper.GetBool("run.verify") {
		res.Verified = "ok"
		var scratch runResult
		again, err := r.execute(seed, false, &scratch)
		if err != nil {
			res.Err = err
			res.Verified = "FAIL"
		} else if !bytes.Equal(final, again) {
			res.Verified = "FAIL"
		}
	}

	res.Elapsed = time.Since(start)
	return res
}

// execute runs one world to completion, tallying outcome events into
// res, and returns the final savegame for determinism comparison.
func (r *runner) execute(seed int64, primary bool, res *runResult) ([]byte, error) {
	var e util.ErrorLogger
	sc := loadScenario(r.raw, r.name, &e)
	if sc == nil {
		return nil, fmt.Errorf("loading scenario: %s", e.String())
	}

	w := sim.NewWorld(sc, seed, r.lg)
	defer w.Destroy()

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	var rec *sim.Recorder
	var tel *telemetry.Recorder
	if primary {
		if path := viper.GetString("replay.path"); path != "" {
			rec = sim.NewRecorder(w, seed)
		}
		if driver := viper.GetString("telemetry.driver"); driver != "" {
			backend, err := telemetry.New(telemetry.Config{
				Driver: driver,
				Path:   viper.GetString("telemetry.path"),
			})
			if err != nil {
				return nil, err
			}
			tel, err = telemetry.NewRecorder(w, backend, seed)
			if err != nil {
				return nil, err
			}
			defer tel.Close()
		}
	}

	ticks := viper.GetInt("run.ticks")
	rtbAt := viper.GetInt("run.rtb_tick")
	for t := 1; t <= ticks; t++ {
		if t == rtbAt {
			for _, a := range w.Actors {
				if a.Flight != nil {
					w.OrderReturnToBase(a, true)
				}
			}
		}
		w.Tick()

		for _, ev := range sub.Get() {
			switch ev.Type {
			case sim.TookOffEvent:
				res.TookOff++
			case sim.LandedEvent:
				res.Landed++
			case sim.CrushedEvent:
				res.Crushed++
			case sim.ReturnAbandonedEvent:
				res.Abandoned++
			}
		}
		if rec != nil {
			if err := rec.CaptureFrame(); err != nil {
				return nil, err
			}
		}
		if tel != nil {
			if err := tel.Capture(); err != nil {
				return nil, err
			}
		}
	}
	res.Stats = w.Stats()

	if rec != nil {
		if err := rec.WriteFile(viper.GetString("replay.path")); err != nil {
			return nil, err
		}
	}
	if primary && viper.GetBool("run.dump") {
		godump.Dump(w.DynamicView())
	}
	return w.Save()
}

func printResults(results []runResult) bool {
	fmt.Printf("\n%-10s %8s %8s %8s %9s %8s %8s %9s %10s\n",
		"seed", "tookoff", "landed", "crushed", "abandoned", "airborne", "grounded", "verified", "time")

	var failed bool
	var tookOff, landed, crushed, abandoned int
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%-10d run failed: %v\n", r.Seed, r.Err)
			failed = true
			continue
		}
		if r.Verified == "FAIL" {
			failed = true
		}
		fmt.Printf("%-10d %8d %8d %8d %9d %8d %8d %9s %10s\n",
			r.Seed, r.TookOff, r.Landed, r.Crushed, r.Abandoned,
			r.Stats.Airborne, r.Stats.Grounded, r.Verified,
			r.Elapsed.Round(time.Millisecond))
		tookOff += r.TookOff
		landed += r.Landed
		crushed += r.Crushed
		abandoned += r.Abandoned
	}
	fmt.Printf("%-10s %8d %8d %8d %9d\n", "total", tookOff, landed, crushed, abandoned)
	return failed
}

func reportUsage() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Printf("\nAllocated memory: %d MB, system memory: %d MB, GC passes: %d, goroutines: %d\n",
		m.Alloc/(1024*1024), m.Sys/(1024*1024), m.NumGC, runtime.NumGoroutine())

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	if pct, err := proc.CPUPercent(); err == nil {
		fmt.Printf("Process CPU: %.0f%%\n", pct)
	}
	if mi, err := proc.MemoryInfo(); err == nil {
		fmt.Printf("Process RSS: %d MB\n", mi.RSS/(1024*1024))
	}
}
