// Command steersim runs steering scenarios and records them to a storage backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/steerlab/steering/internal/api"
	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/internal/geo"
	"github.com/steerlab/steering/internal/logging"
	"github.com/steerlab/steering/internal/monitor"
	"github.com/steerlab/steering/internal/scenario"
	"github.com/steerlab/steering/internal/sim"
	"github.com/steerlab/steering/internal/storage"
)

const appName = "steersim"

const usage = `usage:
  steersim run <scenario> [configDir]       simulate and record a scenario
  steersim validate <scenario> [configDir]  check a scenario and print it with defaults
  steersim path <scenario>                  print the scenario pathway as WKT
`

var errUsage = errors.New("invalid arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 2 {
		return errUsage
	}
	command, scenarioPath := strings.ToLower(args[0]), args[1]
	configDir := "."
	if len(args) > 2 {
		configDir = args[2]
	}

	switch command {
	case "run":
		return runScenario(ctx, scenarioPath, configDir, stdout)
	case "validate":
		return validateScenario(scenarioPath, configDir, stdout)
	case "path":
		return printPath(scenarioPath, stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func validateScenario(path, configDir string, stdout io.Writer) error {
	if err := config.Load(configDir); err != nil {
		slog.Debug("Failed to load config, using defaults", "error", err)
	}

	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	if _, err := s.Build(sim.ParamsFromConfig(config.GetSimConfig())); err != nil {
		return err
	}
	return s.Dump(stdout)
}

func printPath(path string, stdout io.Writer) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	pw, points, err := s.BuildPath()
	if err != nil {
		return err
	}
	if pw == nil {
		return fmt.Errorf("scenario %q has no path", s.Name)
	}

	fmt.Fprintln(stdout, geo.WKT(points))
	fmt.Fprintf(stdout, "length: %.3f\nsegments: %d\nradius: %g\ncyclic: %t\n",
		pw.TotalLength(), pw.SegmentCount(), pw.Radius(), pw.Cyclic())
	return nil
}

func runScenario(ctx context.Context, path, configDir string, stdout io.Writer) error {
	sessionStart := time.Now()
	a := setup(configDir, sessionStart)
	defer a.close()
	logger := a.logger

	s, err := scenario.Load(path)
	if err != nil {
		logger.Error("Failed to load scenario", "path", path, "error", err)
		return err
	}

	simCfg := s.SimConfig(config.GetSimConfig())
	world, err := s.Build(sim.ParamsFromConfig(simCfg))
	if err != nil {
		logger.Error("Scenario is invalid", "path", path, "error", err)
		return err
	}

	storageCfg := config.GetStorageConfig()
	backend, err := storage.New(storageCfg)
	if err != nil {
		logger.Error("Failed to create storage backend", "error", err)
		return err
	}
	if err := backend.Init(); err != nil {
		logger.Error("Failed to initialize storage backend", "type", storageCfg.Type, "error", err)
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close storage backend", "error", err)
		}
	}()
	logger.Info("Storage backend initialized", "type", storageCfg.Type)

	var runner *sim.Runner
	runLogger := slog.New(logging.NewTickHandler(logger.Handler(), func() uint {
		return runner.CurrentTick()
	}))

	opts := []sim.Option{sim.WithLogger(runLogger), sim.WithMeter(a.otel.Meter(appName))}
	if simCfg.Realtime {
		opts = append(opts, sim.WithRealtime())
	}
	runner = sim.NewRunner(world, backend, simCfg, opts...)

	monCfg := config.GetMonitorConfig()
	var mon *monitor.Service
	if monCfg.Interval > 0 {
		mon = monitor.NewService(monitor.Dependencies{
			Logger:     runLogger,
			Scenario:   world.Name,
			MaxTicks:   simCfg.MaxTicks,
			Tick:       runner.CurrentTick,
			Pending:    runner.Pending,
			Interval:   monCfg.Interval,
			StatusFile: monCfg.StatusFile,
		})
		if err := mon.Start(); err != nil {
			logger.Warn("Failed to start status monitor", "error", err)
		}
	}

	summary, err := runner.Run(ctx)
	if mon != nil {
		mon.Stop()
	}
	printSummary(stdout, summary)
	if err != nil {
		logger.Error("Run failed", "error", err)
		return err
	}

	if apiCfg := config.GetAPIConfig(); apiCfg.Upload {
		if err := upload(ctx, apiCfg, world.Name, simCfg, summary); err != nil {
			logger.Error("Failed to upload recording", "error", err)
			return err
		}
		logger.Info("Uploaded recording", "file", summary.ExportPath, "server", apiCfg.ServerURL)
	}
	return nil
}

// upload publishes the exported recording. Backends that do not write a
// file have nothing to upload.
func upload(ctx context.Context, cfg config.APIConfig, scenarioName string, simCfg config.SimConfig, s sim.Summary) error {
	if s.ExportPath == "" {
		return errors.New("storage backend produced no file to upload")
	}
	client := api.New(cfg.ServerURL, cfg.APIKey)
	if err := client.Healthcheck(ctx); err != nil {
		return err
	}
	return client.Upload(ctx, s.ExportPath, api.UploadMetadata{
		RunID:        s.RunID,
		ScenarioName: scenarioName,
		Duration:     float64(s.Ticks) * simCfg.TickDuration().Seconds(),
		Ticks:        s.Ticks,
		Tag:          cfg.Tag,
	})
}

func printSummary(w io.Writer, s sim.Summary) {
	fmt.Fprintf(w, "run:        %s\n", s.RunID)
	fmt.Fprintf(w, "ticks:      %d\n", s.Ticks)
	fmt.Fprintf(w, "states:     %d\n", s.States)
	fmt.Fprintf(w, "collisions: %d\n", s.Collisions)
	fmt.Fprintf(w, "duration:   %s\n", s.Duration.Round(time.Millisecond))
	if s.Cancelled {
		fmt.Fprintln(w, "cancelled:  true")
	}
	if s.ExportPath != "" {
		fmt.Fprintf(w, "output:     %s\n", s.ExportPath)
	}
}
