package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/steerlab/steering/internal/config"
	"github.com/steerlab/steering/internal/logging"
	intOtel "github.com/steerlab/steering/internal/otel"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// app holds the process-wide logging and telemetry set up for a run.
type app struct {
	logger  *slog.Logger
	slogMgr *logging.SlogManager
	otel    *intOtel.Provider
	closers []io.Closer
}

// setup loads configuration and wires logging the same way for every run:
// a session log file under logsDir, optional OTel export into that file and
// optional Graylog shipping.
func setup(configDir string, sessionStart time.Time) *app {
	a := &app{slogMgr: logging.NewSlogManager()}

	// Console logging until the log file is open.
	a.slogMgr.Setup(nil, "info", nil)
	a.logger = a.slogMgr.Logger()

	if err := config.Load(configDir); err != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		a.logger.Info("Loaded config", "dir", configDir)
	}
	logCfg := config.GetLoggingConfig()

	var logFile *os.File
	if err := os.MkdirAll(logCfg.Dir, 0755); err != nil {
		a.logger.Error("Failed to create logs directory", "path", logCfg.Dir, "error", err)
	} else {
		logPath := logging.LogFilePath(logCfg.Dir, appName, sessionStart)
		if _, err := os.Stat(logPath); err == nil {
			_ = os.Rename(logPath, logPath+".old")
		}
		logFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			a.logger.Error("Failed to create/open log file!", "error", err, "path", logPath)
			logFile = nil
		} else {
			a.closers = append(a.closers, logFile)
			a.logger.Info("Logging to file", "path", logPath)
		}
	}

	otelCfg := config.GetOTelConfig()
	var otelWriter io.Writer
	if logFile != nil {
		otelWriter = logFile
	}
	provider, err := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    otelWriter,
		MetricWriter: otelWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		a.logger.Error("Failed to initialize OTel provider", "error", err)
		provider, _ = intOtel.New(intOtel.Config{})
	}
	a.otel = provider

	var extra []slog.Handler
	if logCfg.GraylogEnabled {
		h, closer, err := logging.NewGELFHandler(logCfg.GraylogAddress, logCfg.Level)
		if err != nil {
			a.logger.Error("Failed to connect to Graylog", "address", logCfg.GraylogAddress, "error", err)
		} else {
			extra = append(extra, h)
			a.closers = append(a.closers, closer)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if provider.Enabled() {
		otelLogProvider = provider.LoggerProvider()
	}

	// A nil *os.File must not reach Setup as a non-nil io.Writer.
	var fileWriter io.Writer
	if logFile != nil {
		fileWriter = logFile
	}
	a.slogMgr.Setup(fileWriter, logCfg.Level, otelLogProvider, extra...)
	a.logger = a.slogMgr.Logger()
	slog.SetDefault(a.logger)
	return a
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.slogMgr.Flush(ctx); err != nil {
		a.logger.Warn("Failed to flush logs", "error", err)
	}
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to shut down OTel provider", "error", err)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
