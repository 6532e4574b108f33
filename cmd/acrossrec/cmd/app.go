package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/elmatools/acrossrec/internal/config"
	"github.com/elmatools/acrossrec/internal/logging"
	intOtel "github.com/elmatools/acrossrec/internal/otel"
	"github.com/rs/zerolog"
)

const appName = "acrossrec"

// app carries the ambient services every command shares.
type app struct {
	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	LogFile      *os.File
	LogFilePath  string
	OTelProvider *intOtel.Provider

	// zerolog sink for the database and influx managers
	zerologOut io.Writer

	outputs logging.Outputs
	graylog io.Closer
}

// setupApp brings logging up in two phases: stdout first, then the session
// file with optional OTel and Graylog sinks once the config is known.
func setupApp(configDir string, sessionStart time.Time) *app {
	a := &app{SlogManager: logging.NewSlogManager()}
	a.SlogManager.Setup(nil, "warn", nil)
	a.Logger = a.SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		a.Logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	level := config.GetString("logLevel")
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		a.Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	a.LogFilePath = logging.SessionLogPath(logsDir, appName, sessionStart)
	f, err := os.OpenFile(a.LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		a.Logger.Error("Failed to create/open log file!", "error", err, "path", a.LogFilePath)
	} else {
		a.LogFile = f
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var otelWriter io.Writer
		if a.LogFile != nil {
			otelWriter = a.LogFile
		}
		a.OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    otelWriter,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			a.Logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}
	if a.OTelProvider == nil {
		a.OTelProvider, _ = intOtel.New(intOtel.Config{})
	}

	out := logging.Outputs{Provider: a.OTelProvider.LoggerProvider()}
	if a.LogFile != nil {
		out.File = a.LogFile
	}
	if config.GetBool("graylog.enabled") {
		gw, err := logging.NewGraylogWriter(config.GetString("graylog.address"), appName)
		if err != nil {
			a.Logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			out.Graylog = gw
			if c, ok := out.Graylog.(io.Closer); ok {
				a.graylog = c
			}
		}
	}

	a.zerologOut = os.Stderr
	if a.LogFile != nil {
		a.zerologOut = a.LogFile
	}

	a.outputs = out
	a.SlogManager.SetupOutputs(level, out)
	a.Logger = a.SlogManager.Logger()
	a.Logger.Info("Logging to file", "path", a.LogFilePath)
	return a
}

// componentLogger returns a zerolog logger tagged with component.
func (a *app) componentLogger(component string) zerolog.Logger {
	return logging.NewZerolog(a.zerologOut, config.GetString("logLevel"), component)
}

// close flushes telemetry and closes log sinks.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
	}
	if a.OTelProvider != nil {
		_ = a.OTelProvider.Shutdown(ctx)
	}
	if a.graylog != nil {
		_ = a.graylog.Close()
	}
	if a.LogFile != nil {
		_ = a.LogFile.Close()
	}
}
