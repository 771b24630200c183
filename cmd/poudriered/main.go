// Command poudriered is the build-orchestration daemon's entry point:
// load the configuration file, start the Event Loop, and wire OS signals
// to the daemon's reload/shutdown operations.
//
// Grounded on machinist/mserver/cmd/main.go's cobra.Command +
// PersistentFlags construction, generalized from pflag-bound struct
// fields to the explicit flag variables this single-command CLI needs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/System233/poudriered/internal/config"
	"github.com/System233/poudriered/internal/daemon"
	"github.com/System233/poudriered/internal/hooks"
	"github.com/System233/poudriered/internal/logx"
	"github.com/System233/poudriered/internal/runner"
	"github.com/spf13/cobra"
)

func newRunner(poudriereBin string) *runner.Runner {
	return runner.New(poudriereBin, "poudriered")
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath  string
		metricsAddr string
		poudriere   string
	)

	c := &cobra.Command{
		Use:   "poudriered",
		Short: "Serve build and administrative requests over a UNIX socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, metricsAddr, poudriere)
		},
	}

	c.PersistentFlags().StringVar(&configPath, "config", "/usr/local/etc/poudriered.conf", "path to the configuration file")
	c.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")
	c.PersistentFlags().StringVar(&poudriere, "poudriere-bin", "/usr/local/bin/poudriere", "path to the external build tool binary")

	return c
}

func run(ctx context.Context, configPath, metricsAddr, poudriereBin string) error {
	if err := config.EnsureConfigDir(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("poudriered: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("poudriered: %w", err)
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	log := logx.New("poudriered", cfg.LogLevel)
	cache := config.NewCache(cfg)

	d := daemon.New(cache, configPath,
		daemon.WithLogger(log),
		daemon.WithRunner(newRunner(poudriereBin)),
		daemon.WithJailLister(hooks.ExecJailLister(poudriereBin)),
		daemon.WithPortsLister(hooks.ExecPortsLister(poudriereBin)),
	)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := daemon.ServeMetrics(cfg.MetricsAddr); err != nil {
				log.Warnf("metrics server: %v", err)
			}
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	signal.Ignore(syscall.SIGPIPE)

	go func() {
		for s := range sig {
			switch s {
			case syscall.SIGHUP:
				if d.Reload() {
					log.Infof("configuration reloaded")
				} else {
					log.Warnf("configuration reload failed, keeping previous policy")
				}
			default:
				log.Infof("received %v, shutting down", s)
				cancel()
				return
			}
		}
	}()

	if err := d.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("poudriered: %w", err)
	}
	return nil
}
