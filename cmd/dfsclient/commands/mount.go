package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ardalan-oss/godfs/internal/logger"
	"github.com/ardalan-oss/godfs/internal/metrics"
	"github.com/ardalan-oss/godfs/internal/syncengine"
	"github.com/ardalan-oss/godfs/internal/watcher"
)

var (
	mountForeground bool
	mountPidFile    string
	mountLogFile    string
)

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Run the client mount daemon",
	Long: `mount keeps the configured local directory synchronized with the
server: a watcher triggers a reconciliation pass on every local change, and
a long-polling sync engine triggers one whenever the server reports new or
deleted files. The two are serialized through a shared mutex so they never
reconcile concurrently.

By default mount runs in the background (daemon mode). Use --foreground to
run attached to the current terminal.`,
	RunE: runMount,
}

func init() {
	mountCmd.Flags().BoolVarP(&mountForeground, "foreground", "f", false, "run in foreground instead of daemonizing")
	mountCmd.Flags().StringVar(&mountPidFile, "pid-file", "", "path to PID file (default: $XDG_STATE_HOME/godfs/dfsclient.pid)")
	mountCmd.Flags().StringVar(&mountLogFile, "log-file", "", "path to log file for daemon mode (default: $XDG_STATE_HOME/godfs/dfsclient.log)")
}

func runMount(cmd *cobra.Command, args []string) error {
	if !mountForeground {
		return startMountDaemon()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Warn("metrics server stopped", logger.Err(err))
			}
		}()
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	}

	client, cc, err := dialClient(cfg)
	if err != nil {
		return err
	}
	defer cc.Close()

	if err := os.MkdirAll(cfg.MountPath, 0755); err != nil {
		return fmt.Errorf("failed to create mount directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var syncMu sync.Mutex
	engine := syncengine.New(client, cfg.MountPath, &syncMu, cfg.ResetTimeout, m)

	w, err := watcher.New(cfg.MountPath, &syncMu, func(wctx context.Context) {
		list, err := client.CallbackList(wctx)
		if err != nil {
			logger.Warn("watcher-triggered CallbackList failed", logger.Err(err))
			return
		}
		if err := engine.ReconcileLocked(wctx, list); err != nil {
			logger.Warn("watcher-triggered reconciliation failed", logger.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	if mountPidFile != "" {
		if err := os.WriteFile(mountPidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer os.Remove(mountPidFile)
	}

	go w.Run(ctx)
	go engine.Run(ctx)

	logger.Info("dfsclient mounted", "mount", cfg.MountPath, "server", cfg.ServerAddr, "client_id", cfg.ClientID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	signal.Stop(sigChan)
	logger.Info("shutdown signal received")
	cancel()

	return nil
}
