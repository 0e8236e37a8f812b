package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/warpdl/iback/cmd/common"
	"github.com/warpdl/iback/internal/notify"
	"github.com/warpdl/iback/internal/presenter"
	"github.com/warpdl/iback/internal/scheduler"
	"github.com/warpdl/iback/internal/server"
	"github.com/warpdl/iback/pkg/logger"
	"github.com/warpdl/iback/pkg/speedtest"
	"golang.org/x/sync/errgroup"
)

const appName = "iback"

// settings are the raw flag values of one invocation.
type settings struct {
	MinDownload      string
	MinUpload        string
	MaxPing          string
	MaxTime          string
	ErrorRetryTime   string
	FailureRetryTime string
	NoErrorRetry     bool
	NoFailureRetry   bool
}

func currentSettings() settings {
	return settings{
		MinDownload:      minDownload,
		MinUpload:        minUpload,
		MaxPing:          maxPing,
		MaxTime:          maxTime,
		ErrorRetryTime:   errorRetryTime,
		FailureRetryTime: failureRetryTime,
		NoErrorRetry:     noErrorRetry,
		NoFailureRetry:   noFailureRetry,
	}
}

// positive parses s, falling back to def when s is not a positive number.
func positive(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}

// retryDelay parses a retry time in whole seconds. Unparsable values use
// def, negative ones clamp to 0.
func retryDelay(s string, def int, disabled bool) scheduler.RetryDelay {
	if disabled {
		return scheduler.Never()
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return scheduler.After(def)
	}
	return scheduler.After(max(v, 0))
}

// Probe timeouts given with --max-time are kept within these bounds.
const (
	minProbeTimeout = time.Millisecond
	maxProbeTimeout = 24 * time.Hour
)

// probeTimeout converts a --max-time value in milliseconds, clamping it
// before the conversion so huge values cannot overflow time.Duration.
func probeTimeout(s string) time.Duration {
	ms := positive(s, float64(scheduler.DefaultProbeTimeout/time.Millisecond))
	ms = min(ms, float64(maxProbeTimeout/time.Millisecond))
	ms = max(ms, float64(minProbeTimeout/time.Millisecond))
	return time.Duration(ms * float64(time.Millisecond))
}

func buildConfig(s settings) scheduler.Config {
	return scheduler.Config{
		ProbeTimeout:    probeTimeout(s.MaxTime),
		MinDownloadMbps: positive(s.MinDownload, scheduler.DefaultMinDownloadMbps),
		MinUploadMbps:   positive(s.MinUpload, scheduler.DefaultMinUploadMbps),
		MaxPingMs:       positive(s.MaxPing, scheduler.DefaultMaxPingMs),
		ErrorRetry:      retryDelay(s.ErrorRetryTime, scheduler.DefaultErrorRetry, s.NoErrorRetry),
		FailureRetry:    retryDelay(s.FailureRetryTime, scheduler.DefaultFailureRetry, s.NoFailureRetry),
	}
}

func presenterOptions(cfg scheduler.Config, interactive, color bool) presenter.Options {
	return presenter.Options{
		MinDownloadMbps:  cfg.MinDownloadMbps,
		MinUploadMbps:    cfg.MinUploadMbps,
		MaxPingMs:        cfg.MaxPingMs,
		Silent:           silent,
		Sticky:           stickyNotify,
		NoSound:          noSounds,
		NotifyOnErrors:   notifyOnErrors,
		LogErrors:        logErrors,
		NoErrorRetry:     cfg.ErrorRetry.Disabled,
		NotifyOnFailures: notifyOnFailures,
		LogFailures:      logFailures,
		NoFailureRetry:   cfg.FailureRetry.Disabled,
		Interactive:      interactive,
		Color:            color,
	}
}

// openLogger returns the rotating file logger for path, mirrored to stderr
// when mirror is set. Without a path only the mirror, if any, is used.
func openLogger(fs afero.Fs, path string, mirror bool, stderr io.Writer) (logger.Logger, error) {
	var loggers []logger.Logger
	if path != "" {
		fl, err := logger.NewFileLogger(fs, path)
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, fl)
	}
	if mirror {
		loggers = append(loggers, logger.NewStandardLogger(log.New(stderr, appName+": ", log.LstdFlags)))
	}
	switch len(loggers) {
	case 0:
		return logger.NewNopLogger(), nil
	case 1:
		return loggers[0], nil
	}
	return logger.NewMultiLogger(loggers...), nil
}

func newNotifier(l logger.Logger) notify.Notifier {
	if silent {
		return notify.Nop{}
	}
	n, err := notify.New(appName, l)
	if err != nil {
		l.Warning("notifications disabled: %v", err)
		return notify.Nop{}
	}
	return n
}

// feed is the part of the event feed the monitor drives.
type feed interface {
	Publish(scheduler.Event)
	ListenAndServe(ctx context.Context) error
}

// runMonitor runs the scheduler, and the feed when there is one, until ctx
// is done or the feed fails.
func runMonitor(ctx context.Context, sch *scheduler.Scheduler, f feed) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sch.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if f != nil {
		sch.Subscribe(f.Publish)
		g.Go(func() error {
			return f.ListenAndServe(gctx)
		})
	}
	sch.Start()
	return g.Wait()
}

func monitor(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return common.PrintErrWithHelp(ctx, fmt.Errorf("unknown command %q", ctx.Args().First()))
	}

	l, err := openLogger(afero.NewOsFs(), logFile, verbose, os.Stderr)
	if err != nil {
		common.PrintRuntimeErr(ctx, "monitor", "log_file", err)
		return nil
	}
	defer l.Close()

	client, err := speedtest.NewHTTPClientWithProxy(proxyURL)
	if err != nil {
		common.PrintRuntimeErr(ctx, "monitor", "proxy", err)
		return nil
	}
	tester := speedtest.New(client, speedtest.Endpoints{
		Download: downloadURL,
		Upload:   uploadURL,
		Ping:     pingURL,
	})

	var f feed
	if serveAddr != "" {
		srv, err := server.New(server.Config{
			Addr:    serveAddr,
			Secret:  rpcSecret,
			Version: currentBuildArgs.Version,
		}, l)
		if err != nil {
			common.PrintRuntimeErr(ctx, "monitor", "serve", err)
			return nil
		}
		f = srv
	}

	cfg := buildConfig(currentSettings())
	sch := scheduler.New(cfg, tester, scheduler.WithLogger(l))

	interactive, color := presenter.DetectTerminal(os.Stdout)
	pr := presenter.New(os.Stdout, presenterOptions(cfg, interactive, color), newNotifier(l), l)
	defer pr.Close()
	sch.Subscribe(pr.Handle)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runMonitor(sigCtx, sch, f); err != nil {
		common.PrintRuntimeErr(ctx, "monitor", "run", err)
	}
	return nil
}
