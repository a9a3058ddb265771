// Command amity runs the office and living-space allocation shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"amity/internal/blob"
	blobcore "amity/internal/blob/core"
	"amity/internal/cli"
	"amity/internal/config"
	"amity/internal/core"
	"amity/internal/logging"
)

var exitFunc = os.Exit

// main runs the shell with the process arguments and exits with the status
// code returned by run.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("amity", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var configPath, stateName, command string
	fs.StringVar(&configPath, "config", "", "path to a YAML config file (default $AMITY_CONFIG)")
	fs.StringVar(&stateName, "db", "", "state name used by save_state/load_state without --db")
	fs.StringVar(&command, "c", "", "execute a single command and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, "amity")
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	shell, cleanup, err := build(ctx, cfg, stateName, logger, stdout)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		fmt.Fprintf(stderr, "amity: %v\n", err)
		return 1
	}
	defer cleanup()

	if command != "" {
		if _, err := shell.Execute(ctx, command); err != nil {
			return 1
		}
		return 0
	}
	if err := shell.Run(ctx, stdin); err != nil {
		fmt.Fprintf(stderr, "amity: %v\n", err)
		return 1
	}
	return 0
}

// build wires configuration into the service, stores and shell.
func build(ctx context.Context, cfg config.Config, stateName string, logger *zap.Logger, stdout io.Writer) (*cli.Shell, func(), error) {
	metrics, err := core.NewPrometheusMetricsRecorder(nil)
	if err != nil {
		return nil, nil, err
	}
	opts := []core.Option{
		core.WithLogger(logging.Adapt(logger.Named("core"))),
		core.WithMetrics(metrics),
		core.WithCapacities(cfg.Capacities()),
	}
	if cfg.Allocation.Seed != 0 {
		opts = append(opts, core.WithSeed(cfg.Allocation.Seed))
	}
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine(), opts...)

	states, err := core.OpenStateStore(ctx, cfg.StorageOptions(), logger.Named("storage"))
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}
	blobs, err := blob.Open(ctx, blob.Options{
		Driver: blobcore.Driver(cfg.Blob.Driver),
		FSRoot: cfg.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:    cfg.Blob.S3.Bucket,
			Region:    cfg.Blob.S3.Region,
			Endpoint:  cfg.Blob.S3.Endpoint,
			PathStyle: cfg.Blob.S3.PathStyle,
		},
	})
	if err != nil {
		_ = states.Close()
		return nil, nil, fmt.Errorf("open blob store: %w", err)
	}
	if stateName == "" {
		stateName = cfg.Storage.DefaultName
	}
	logger.Debug("amity ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("blob", string(blobs.Driver())),
		zap.String("state", stateName),
	)
	shell := cli.New(svc, stdout,
		cli.WithStateStore(states),
		cli.WithBlobStore(blobs),
		cli.WithMetrics(metrics),
		cli.WithLogger(logging.Adapt(logger.Named("cli"))),
		cli.WithDefaultStateName(stateName),
	)
	cleanup := func() {
		if err := states.Close(); err != nil {
			logger.Warn("close state store", zap.Error(err))
		}
	}
	return shell, cleanup, nil
}
