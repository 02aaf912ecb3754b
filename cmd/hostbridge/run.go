package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vango-dev/hostbridge"
	"github.com/vango-dev/hostbridge/internal/config"
	"github.com/vango-dev/hostbridge/internal/demo"
	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/internal/inspect"
	"github.com/vango-dev/hostbridge/internal/snapshot"
)

type runFlags struct {
	configPath string
	inspect    string
	s3Bucket   string
	duration   string
	logLevel   string
	snapshots  bool
}

func runCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [demo]",
		Short: "Run a demo backend",
		Long: `Run mounts a demo tree onto its backend and drives the render loop
until interrupted or the configured duration elapses.

Examples:
  hostbridge run box
  hostbridge run pancake --duration=1s
  hostbridge run box --inspect=:7070 --snapshots`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDemo(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Config file (.json or .toml, default ./"+config.ConfigFileName+")")
	cmd.Flags().StringVar(&flags.inspect, "inspect", "", "Serve the inspector on this address")
	cmd.Flags().StringVar(&flags.s3Bucket, "s3-bucket", "", "Upload render snapshots to this bucket")
	cmd.Flags().StringVarP(&flags.duration, "duration", "d", "", "Stop after this long (0 runs until interrupted)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&flags.snapshots, "snapshots", false, "Print render snapshots as JSON lines")

	return cmd
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(flags runFlags, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case flags.configPath != "":
		c, err := config.LoadFile(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		if _, err := os.Stat(config.ConfigFileName); err == nil {
			c, err := config.Load(".")
			if err != nil {
				return nil, err
			}
			cfg = c
		} else {
			cfg = config.New()
		}
	}

	if len(args) > 0 {
		cfg.Demo = args[0]
	}
	if flags.inspect != "" {
		cfg.Inspect.Addr = flags.inspect
	}
	if flags.s3Bucket != "" {
		cfg.Snapshot.S3.Bucket = flags.s3Bucket
	}
	if flags.duration != "" {
		cfg.Duration = flags.duration
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.snapshots {
		cfg.Snapshot.Stdout = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, ok := demo.Lookup(cfg.Demo); !ok {
		return nil, verrors.New("E041").
			WithDetail(fmt.Sprintf("unknown demo %q", cfg.Demo)).
			WithSuggestion(fmt.Sprintf("Pick one of %v", demo.Names()))
	}
	return cfg, nil
}

// newLogger builds the slog logger described by cfg.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// newSinks returns the snapshot sinks enabled by cfg.
func newSinks(cfg *config.Config, out io.Writer) []snapshot.Sink {
	var sinks []snapshot.Sink
	if cfg.Snapshot.Stdout {
		sinks = append(sinks, snapshot.NewWriterSink(out))
	}
	if s3cfg := cfg.Snapshot.S3; s3cfg.Bucket != "" {
		client := snapshot.NewS3Client(snapshot.S3Options{
			Region:   s3cfg.Region,
			Endpoint: s3cfg.Endpoint,
		})
		sinks = append(sinks, snapshot.NewS3Sink(client, s3cfg.Bucket, s3cfg.Prefix))
	}
	return sinks
}

func runDemo(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	d, _ := demo.Lookup(cfg.Demo)

	var cancel context.CancelFunc
	if dur := cfg.RunDuration(); dur > 0 {
		ctx, cancel = context.WithTimeout(ctx, dur)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	promReg := prometheus.NewRegistry()
	r := hostbridge.New(
		hostbridge.WithLogger(logger),
		hostbridge.WithMetricsRegisterer(promReg),
		hostbridge.WithMetricsNamespace(cfg.Metrics.Namespace),
	)
	defer r.Close()

	rec := snapshot.NewRecorder(r.Registry(), logger, newSinks(cfg, stdout)...)
	rec.Attach()

	el, root := d.Build(demo.Env{
		Out:      stdout,
		Post:     r.Post,
		Interval: cfg.BlinkInterval(),
	})
	if _, err := r.Render(el, root); err != nil {
		return err
	}

	inspectErr := make(chan error, 1)
	if cfg.Inspect.Addr != "" {
		srv := inspect.New(rec, r.Registry(),
			inspect.WithGatherer(promReg),
			inspect.WithLogger(logger),
		)
		go func() {
			inspectErr <- srv.ListenAndServe(ctx, cfg.Inspect.Addr)
		}()
		info("inspector on http://%s", cfg.Inspect.Addr)
	} else {
		inspectErr <- nil
	}

	logger.Info("running demo", "demo", d.Name, "duration", cfg.RunDuration())
	runErr := r.Run(ctx)
	cancel()
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		runErr = nil
	}

	unmountErr := r.Unmount()
	r.Close()
	if err := errors.Join(runErr, unmountErr, <-inspectErr); err != nil {
		return err
	}
	success("%s stopped after %d render passes", d.Name, r.Registry().Passes())
	return nil
}
