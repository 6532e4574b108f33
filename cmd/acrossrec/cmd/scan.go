package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/elmatools/acrossrec/internal/api"
	"github.com/elmatools/acrossrec/internal/config"
	"github.com/elmatools/acrossrec/internal/index"
	"github.com/elmatools/acrossrec/internal/influx"
	intOtel "github.com/elmatools/acrossrec/internal/otel"
	"github.com/elmatools/acrossrec/internal/scanner"
	"github.com/elmatools/acrossrec/internal/storage"
	"github.com/elmatools/acrossrec/internal/storage/memory"
	"github.com/spf13/cobra"
)

type scanFlags struct {
	workers     int
	extension   string
	storageType string
	incremental bool
	failOnError bool
	upload      bool
}

func newScanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Decode every replay under a directory",
		Long: `Walk dir recursively and decode every file with the replay extension.
Each file is reported as "<path> OK" or "<path> FAILED <error>"; a failing
file never stops the scan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], f)
		},
	}

	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "decoder workers (default scan.workers)")
	cmd.Flags().StringVar(&f.extension, "ext", "", "file extension to match (default scan.extension)")
	cmd.Flags().StringVar(&f.storageType, "storage", "", "storage backend: memory, sqlite, postgres or websocket")
	cmd.Flags().BoolVar(&f.incremental, "incremental", false, "skip files unchanged since the last scan")
	cmd.Flags().BoolVar(&f.upload, "upload", false, "upload the scan report to api.serverUrl (memory storage only)")
	cmd.Flags().BoolVar(&f.failOnError, "fail-on-error", false, "exit non-zero when any file fails to decode")
	return cmd
}

func runScan(cmd *cobra.Command, root string, f scanFlags) error {
	a := current
	log := a.Logger

	scanCfg := config.GetScanConfig()
	if cmd.Flags().Changed("workers") {
		scanCfg.Workers = f.workers
	}
	if cmd.Flags().Changed("ext") {
		scanCfg.Extension = f.extension
	}
	if cmd.Flags().Changed("incremental") {
		scanCfg.Incremental = f.incremental
	}
	storageCfg := config.GetStorageConfig()
	if cmd.Flags().Changed("storage") {
		storageCfg.Type = f.storageType
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.NewBackend(storageCfg, storage.Dependencies{
		LogManager: a.SlogManager,
		DBLogger:   a.componentLogger("database"),
	})
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}
	closed := false
	closeBackend := func() error {
		if closed {
			return nil
		}
		closed = true
		return backend.Close()
	}
	defer func() {
		if err := closeBackend(); err != nil {
			log.Error("Failed to close storage", "type", storageCfg.Type, "error", err)
		}
	}()
	log.Info("Storage initialized", "type", storageCfg.Type)

	deps := scanner.Dependencies{
		Backend:    backend,
		LogManager: a.SlogManager,
		Out:        cmd.OutOrStdout(),
	}

	im := influx.NewManager(a.componentLogger("influx"), config.GetString("influx.backupPath"))
	switch err := im.Connect(ctx); {
	case errors.Is(err, influx.ErrDisabled):
	case err != nil:
		log.Warn("InfluxDB unavailable, continuing without it", "error", err)
	default:
		deps.Influx = im
		defer im.Close()
	}

	if scanCfg.Incremental {
		ix, err := index.Open(scanCfg.IndexDir)
		if err != nil {
			return fmt.Errorf("failed to open scan index: %w", err)
		}
		defer ix.Close()
		deps.Index = ix
	}

	metrics, err := intOtel.NewScanMetrics(a.OTelProvider.Meter(appName))
	if err != nil {
		log.Warn("Failed to create scan metrics", "error", err)
	}
	deps.Metrics = metrics
	deps.Tracer = a.OTelProvider.Tracer(appName)

	s := scanner.New(deps, scanner.Options{
		Workers:   scanCfg.Workers,
		Extension: scanCfg.Extension,
	})
	a.SlogManager.RunID = s.RunID
	defer func() { a.SlogManager.RunID = nil }()

	totals, _, err := s.Scan(ctx, root)
	if err != nil {
		return err
	}

	// the memory backend writes its report on close
	if err := closeBackend(); err != nil {
		return fmt.Errorf("failed to close %s storage: %w", storageCfg.Type, err)
	}
	reportPath := ""
	if r, ok := backend.(storage.Reporter); ok {
		reportPath = r.ReportPath()
	}
	if reportPath != "" {
		log.Info("Report written", "path", reportPath)
	}
	if f.upload {
		if reportPath == "" {
			return fmt.Errorf("--upload needs a report, %s storage writes none", storageCfg.Type)
		}
		if err := uploadReport(ctx, reportPath); err != nil {
			return err
		}
		log.Info("Report uploaded", "path", reportPath, "server", config.GetString("api.serverUrl"))
	}
	if f.failOnError && totals != nil && totals.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to decode", totals.Failed, totals.Files)
	}
	return nil
}

// uploadReport sends a written scan report to the collector.
func uploadReport(ctx context.Context, path string) error {
	report, err := memory.ReadReport(path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	apiCfg := config.GetStorageConfig().API
	client := api.New(apiCfg.ServerURL, apiCfg.APIKey)
	if err := client.Healthcheck(ctx); err != nil {
		return fmt.Errorf("collector unavailable: %w", err)
	}
	if err := client.UploadReport(ctx, path, report.Run, report.Totals); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}
	return nil
}
