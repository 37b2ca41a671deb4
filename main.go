package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/epidemic_sim/telemetry"
	"github.com/example/epidemic_sim/visual"
)

func main() {
	var (
		headless   = flag.Bool("headless", false, "Run without the web UI and exit after -steps")
		configName = flag.String("config", "", "Predefined scenario name (e.g. 'baseline', 'aggressive_spread')")
		configFile = flag.String("config-file", "", "YAML configuration file, overrides -config")
		addr       = flag.String("addr", "", "Web server listen address")
		remoteURL  = flag.String("remote", "", "Remote simulation service base URL (e.g. http://127.0.0.1:5000/api)")
		seed       = flag.Int64("seed", 0, "Random seed, 0 for time-based")
		population = flag.Int("population", 0, "Population size override")
		steps      = flag.Int("steps", 0, "Headless run length override")
	)
	flag.Parse()

	cfg := resolveConfig(*configName, *configFile)
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *remoteURL != "" {
		cfg.RemoteURL = *remoteURL
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *population > 0 {
		cfg.Population = *population
	}
	if *steps > 0 {
		cfg.TotalSteps = *steps
	}
	if *headless {
		cfg.Headless = true
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "epidemic_sim: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig layers the configuration sources: defaults, then scenario,
// then file.
func resolveConfig(name, file string) *Config {
	if file != "" {
		cfg, err := LoadConfigFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "epidemic_sim: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	if name != "" {
		if cfg := GetConfigByName(name); cfg != nil {
			return cfg
		}
		fmt.Printf("Warning: scenario '%s' not found, using baseline\n", name)
	}
	return DefaultConfig()
}

func run(cfg *Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	metrics.Start()
	defer metrics.Stop()

	window := telemetry.NewWindow(cfg.TelemetryWindow)

	if cfg.Headless {
		sim, err := NewSimulator(cfg, window, visual.NewNullVisualizer())
		if err != nil {
			return err
		}
		sim.RunHeadless()
		return nil
	}

	server := NewWebServer(cfg.Addr, window)
	viz := NewWebVisualizer(server)

	sim, err := NewSimulator(cfg, window, viz)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Start()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sim.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
