// cmd/simrun/main.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// simrun executes scenarios headless: N deterministic runs across
// consecutive seeds, errgroup-parallel, with an aggregate outcome table
// at the end. The first run can additionally record a replay, feed a
// telemetry backend and dump its final state.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/viper"

	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/log"
	"github.com/gatekeep/OpenRA/util"
)

var (
	configFile   = flag.String("config", "", "config file with run settings (JSON)")
	scenarioFile = flag.String("scenario", "", "scenario JSON file; the built-in demo when empty")
	runs         = flag.Int("runs", 1, "number of runs; run i uses seed+i")
	ticks        = flag.Int("ticks", 1500, "ticks per run")
	seed         = flag.Int64("seed", 1, "seed of the first run")
	parallel     = flag.Int("parallel", 0, "concurrent runs, 0 for one per CPU")
	rtbTick      = flag.Int("rtb-tick", 0, "order every aircraft to return to base at this tick")
	replayPath   = flag.String("replay", "", "record the first run's replay to this file")
	telemetryDrv = flag.String("telemetry", "", "telemetry driver for the first run: sqlite or memory")
	telemetryDB  = flag.String("telemetry-db", "simrun.db", "sqlite database file for telemetry")
	verify       = flag.Bool("verify", false, "run each seed twice and compare final saves")
	dumpFinal    = flag.Bool("dump", false, "dump the first run's final state")
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "log file directory")
)

func loadConfig() error {
	viper.SetDefault("run.count", 1)
	viper.SetDefault("run.ticks", 1500)
	viper.SetDefault("run.seed", int64(1))
	viper.SetDefault("run.parallel", runtime.GOMAXPROCS(0))
	viper.SetDefault("run.rtb_tick", 0)
	viper.SetDefault("run.verify", false)
	viper.SetDefault("run.dump", false)
	viper.SetDefault("scenario.path", "")
	viper.SetDefault("replay.path", "")
	viper.SetDefault("telemetry.driver", "")
	viper.SetDefault("telemetry.path", "simrun.db")

	if *configFile != "" {
		viper.SetConfigFile(*configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "runs":
			viper.Set("run.count", *runs)
		case "ticks":
			viper.Set("run.ticks", *ticks)
		case "seed":
			viper.Set("run.seed", *seed)
		case "parallel":
			viper.Set("run.parallel", *parallel)
		case "rtb-tick":
			viper.Set("run.rtb_tick", *rtbTick)
		case "verify":
			viper.Set("run.verify", *verify)
		case "dump":
			viper.Set("run.dump", *dumpFinal)
		case "scenario":
			viper.Set("scenario.path", *scenarioFile)
		case "replay":
			viper.Set("replay.path", *replayPath)
		case "telemetry":
			viper.Set("telemetry.driver", *telemetryDrv)
		case "telemetry-db":
			viper.Set("telemetry.path", *telemetryDB)
		}
	})

	if viper.GetInt("run.parallel") <= 0 {
		viper.Set("run.parallel", runtime.GOMAXPROCS(0))
	}
	return nil
}

func loadScenario(raw []byte, name string, e *util.ErrorLogger) *game.Scenario {
	if raw == nil {
		return game.DefaultScenario(e)
	}
	return game.LoadScenarioBytes(name, raw, e)
}

func main() {
	flag.Parse()

	lg := log.New(true, *logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	if err := loadConfig(); err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}

	r := &runner{name: "built-in demo", lg: lg}
	if path := viper.GetString("scenario.path"); path != "" {
		var err error
		r.raw, err = os.ReadFile(path)
		if err != nil {
			lg.Errorf("%s: %v", path, err)
			os.Exit(1)
		}
		r.name = path
	}

	// Parse once up front so scenario errors surface before any runs.
	var e util.ErrorLogger
	sc := loadScenario(r.raw, r.name, &e)
	if sc == nil {
		e.PrintErrors(lg)
		os.Exit(1)
	}
	fmt.Printf("%s: %d runs x %d ticks from seed %d, %d in parallel\n",
		sc.Name, viper.GetInt("run.count"), viper.GetInt("run.ticks"),
		viper.GetInt64("run.seed"), viper.GetInt("run.parallel"))

	results := r.batch()
	failed := printResults(results)
	reportUsage()
	if failed {
		os.Exit(1)
	}
}
