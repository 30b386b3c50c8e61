package commands

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/ardalan-oss/godfs/internal/config"
	"github.com/ardalan-oss/godfs/internal/dfsserver"
	"github.com/ardalan-oss/godfs/internal/logger"
	"github.com/ardalan-oss/godfs/internal/metrics"
	"github.com/ardalan-oss/godfs/internal/rpc"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the godfs server",
	Long: `Start the godfs server with the specified configuration.

By default the server runs in the background (daemon mode). Use
--foreground to run attached to the current terminal.

Examples:
  dfsserver start
  dfsserver start --foreground
  dfsserver start --config /etc/godfs/server.yaml`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "run in foreground instead of daemonizing")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "path to PID file (default: $XDG_STATE_HOME/godfs/dfsserver.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "path to log file for daemon mode (default: $XDG_STATE_HOME/godfs/dfsserver.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.LoadServerConfig(GetConfigFile())
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

	srv := dfsserver.New(cfg.MountPath, int(cfg.ChunkSize),
		dfsserver.WithMetrics(m),
		dfsserver.WithNumAsyncThreads(cfg.NumAsyncThreads),
	)
	defer srv.Close()

	grpcServer := grpc.NewServer()
	rpc.RegisterFileServiceServer(grpcServer, srv)

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer os.Remove(pidFile)
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- grpcServer.Serve(lis)
	}()

	logger.Info("dfsserver listening", "addr", cfg.ListenAddr, "mount", cfg.MountPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		grpcServer.GracefulStop()
		<-serverDone
		logger.Info("dfsserver stopped gracefully")
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", logger.Err(err))
			return err
		}
	}

	return nil
}
