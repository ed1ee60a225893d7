package loadtest

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/okian/scorecast/pkg/logger"
)

// Default flag values.
const (
	defaultURL          = "http://localhost:8000"
	defaultRequests     = 1000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultRepeatEvery  = 10
	defaultBoundaryRate = 0.1
	defaultRunTimeout   = 10 * time.Minute
	reportFilePerm      = 0o600
)

const envPrefix = "SCORECAST_LOADTEST_"

// NewCommand builds the load test CLI. Output goes to stdout unless
// --output names a file.
func NewCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "loadtest",
		Usage: "fire generated students at a running scorecast service and verify every answer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: defaultURL, Usage: "base URL of the service", Sources: cli.EnvVars(envPrefix + "URL")},
			&cli.IntFlag{Name: "requests", Aliases: []string{"n"}, Value: defaultRequests, Usage: "number of predictions to submit"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"c"}, Value: runtime.NumCPU() * defaultWorkers, Usage: "concurrent requests in flight"},
			&cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "per-request timeout"},
			&cli.DurationFlag{Name: "deadline", Value: defaultRunTimeout, Usage: "timeout for the whole run"},
			&cli.Uint64Flag{Name: "seed", Usage: "generator seed (default: random, reported for replay)"},
			&cli.IntFlag{Name: "repeat-every", Value: defaultRepeatEvery, Usage: "resubmit every n-th student to check determinism (0 disables)"},
			&cli.FloatFlag{Name: "boundary-rate", Value: defaultBoundaryRate, Usage: "share of students built from domain edges"},
			&cli.StringFlag{Name: "format", Value: FormatJSON, Usage: "report format [json, yaml]"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "report file (default: stdout)"},
			&cli.StringFlag{Name: "log-format", Value: logger.FormatText, Usage: "log format [text, json]"},
			&cli.BoolFlag{Name: "verbose", Usage: "log every prediction"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(cmd.String("log-format"))); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			if cmd.Bool("verbose") {
				_ = logger.SetLevelString("debug")
			}

			cfg := configFromCommand(cmd)
			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("deadline"))
			defer cancel()

			report, err := Run(ctx, cfg)
			if err != nil {
				return err
			}
			if err := writeReport(stdout, cmd.String("output"), cfg.Format, report); err != nil {
				return err
			}
			if !report.OK() {
				return cli.Exit(fmt.Sprintf("load test failed: %d failed requests, %d violations", report.Failed, report.ViolationCount), 1)
			}
			return nil
		},
	}
}

func configFromCommand(cmd *cli.Command) *Config {
	seed := cmd.Uint64("seed")
	if !cmd.IsSet("seed") {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // any value is a valid seed
	}
	return &Config{
		BaseURL:      cmd.String("url"),
		Requests:     cmd.Int("requests"),
		Workers:      cmd.Int("workers"),
		Timeout:      cmd.Duration("timeout"),
		Seed:         seed,
		RepeatEvery:  cmd.Int("repeat-every"),
		BoundaryRate: cmd.Float("boundary-rate"),
		Format:       cmd.String("format"),
		Verbose:      cmd.Bool("verbose"),
	}
}

func writeReport(stdout io.Writer, path, format string, r *Report) error {
	if path == "" {
		return r.Write(stdout, format)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFilePerm)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := r.Write(f, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	logger.Get().Info(context.Background(), "report written", logger.String("path", path))
	return nil
}
