package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nemanja-m/gopool/internal/api/grpc"
	"github.com/nemanja-m/gopool/internal/api/rest"
	"github.com/nemanja-m/gopool/internal/metrics"
	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/service"
	"github.com/nemanja-m/gopool/internal/shared/config"
	"github.com/nemanja-m/gopool/internal/shared/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadDaemon(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Logging.Options())
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	p, err := pool.NewPool(pool.Config{
		Workers:  cfg.Pool.Workers,
		LogTasks: cfg.Pool.LogTasks,
	}, logger)
	if err != nil {
		logger.Error("Failed to create pool", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
	if !cfg.Pool.StartPaused {
		p.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var httpServer *http.Server
	if cfg.REST.Addr != "" {
		var m *metrics.Metrics
		if cfg.Metrics.Enabled {
			m = metrics.New(p)
		}
		handler := rest.NewHandler(rest.NewAPI(p, logger), logger, m, cfg.Metrics.Path)
		httpServer = rest.NewServer(cfg.REST, handler)

		g.Go(func() error {
			logger.Info("Starting REST API server", "addr", cfg.REST.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	var grpcServer *grpc.Server
	if cfg.GRPC.Addr != "" {
		grpcServer = grpc.NewServer(cfg.GRPC, p, logger)
		g.Go(grpcServer.Start)
	}

	reporter := service.NewStatsReporter(cfg.Pool.ReportInterval, cfg.Pool.StallTimeout, p, logger)
	g.Go(func() error {
		reporter.Start(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "pool_id", p.ID().String())

		// Closing the pool first releases HTTP and gRPC calls blocked in a wait.
		_ = p.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var err error
		if httpServer != nil {
			err = httpServer.Shutdown(shutdownCtx)
		}
		if grpcServer != nil {
			grpcServer.Stop()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		logCloser.Close()
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
