package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// swapped in tests
var (
	osStdout io.Writer = os.Stdout
	osPipe             = os.Pipe
)

// Outputs lists the sinks a SlogManager writes to. Nil entries are skipped.
type Outputs struct {
	// File receives text-formatted records. When nil, records go to stdout.
	File io.Writer
	// Graylog receives JSON records, one GELF message per record.
	Graylog io.Writer
	// Provider forwards records to OpenTelemetry via the otelslog bridge.
	Provider *sdklog.LoggerProvider
}

// SlogManager manages slog-based logging with optional OTel and Graylog output.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	// RunID returns the identifier of the scan in progress, if any.
	RunID func() string
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes logging to file (or stdout when file is nil) with
// optional OTel output.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	m.SetupOutputs(level, Outputs{File: file, Provider: provider})
}

// SetupOutputs initializes logging with every configured sink.
func (m *SlogManager) SetupOutputs(level string, out Outputs) {
	lvl := parseLevel(level)
	m.logProvider = out.Provider

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	if out.File != nil {
		handlers = append(handlers, slog.NewTextHandler(out.File, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, handlerOpts))
	}

	if out.Graylog != nil {
		handlers = append(handlers, slog.NewJSONHandler(out.Graylog, handlerOpts))
	}

	if out.Provider != nil {
		handlers = append(handlers, otelslog.NewHandler("acrossrec", otelslog.WithLoggerProvider(out.Provider)))
	}

	m.logger = slog.New(NewScanHandler(m.currentRun, handlers...))
	m.logger.Info("Logging initialized", "level", level)
}

// currentRun reads RunID at log time, so it may be set after setup.
func (m *SlogManager) currentRun() string {
	if m.RunID == nil {
		return ""
	}
	return m.RunID()
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}

// WriteLog writes a log entry with the specified function name, data, and level.
func (m *SlogManager) WriteLog(functionName, data, level string) {
	if m.logger == nil {
		return
	}

	switch parseLevel(level) {
	case slog.LevelDebug:
		m.logger.Debug(data, "function", functionName)
	case slog.LevelWarn:
		m.logger.Warn(data, "function", functionName)
	case slog.LevelError:
		m.logger.Error(data, "function", functionName)
	default:
		m.logger.Info(data, "function", functionName)
	}
}
