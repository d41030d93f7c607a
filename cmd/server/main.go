package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ordercore/api/grpcserver"
	"ordercore/api/httpapi"
	"ordercore/config"
	"ordercore/infra/kafka"
	"ordercore/infra/logger"
	"ordercore/infra/metrics"
	entrywal "ordercore/infra/wal/entry"
	exitwal "ordercore/infra/wal/exit"
	"ordercore/jobs/broadcaster"
	"ordercore/service"
)

func main() {
	os.Exit(serve())
}

// serve runs the server and returns the process exit code. Deferred
// cleanup runs before main exits.
func serve() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log, logCloser := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer logCloser.Close()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		return 1
	}
	return 0
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- Entry WAL ----------------

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:             cfg.WAL.Dir,
		SegmentSize:     cfg.WAL.SegmentSize,
		SegmentDuration: cfg.WAL.SegmentDuration,
		SyncEveryWrite:  cfg.WAL.SyncEveryWrite,
	})
	if err != nil {
		return err
	}
	defer entryWAL.Close()

	// ---------------- Outbox ----------------

	outbox, err := exitwal.Open(cfg.Outbox.Dir, exitwal.Options{NoSync: cfg.Outbox.NoSync})
	if err != nil {
		return err
	}
	defer outbox.Close()

	// ---------------- Metrics ----------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// ---------------- Service + replay ----------------

	svc := service.NewOrderService(service.Options{
		Logger:         log,
		EntryWAL:       entryWAL,
		Outbox:         outbox,
		Metrics:        metrics.NewCollector(reg),
		MaxOpenSize:    cfg.Risk.MaxOpenSize,
		RetireRingSize: cfg.Pool.RetireRingSize,
	})
	if err := svc.Replay(cfg.Snapshot.Dir, cfg.WAL.Dir); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	// ---------------- Background jobs ----------------

	// Jobs are joined before the deferred store closes run.
	var jobs sync.WaitGroup
	defer jobs.Wait()
	defer stop()

	jobs.Go(func() { svc.RunEpochJob(ctx, cfg.Epoch.Interval) })
	jobs.Go(func() { svc.RunSnapshotJob(ctx, cfg.Snapshot.Dir, cfg.Snapshot.Interval) })

	if cfg.Kafka.Enabled {
		pub, err := kafka.New(cfg.Kafka.Client, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		bc := broadcaster.New(outbox, pub, broadcaster.Config{
			Interval:   cfg.Broadcast.Interval,
			MaxRetries: cfg.Broadcast.MaxRetries,
		}, log)
		jobs.Go(func() {
			bc.Run(ctx)
			if err := bc.Close(); err != nil {
				log.Error("kafka publisher close", "err", err)
			}
		})
	} else {
		log.Warn("kafka disabled; events stay in the outbox")
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return err
	}
	grpcSrv, health := grpcserver.New(grpcserver.NewServer(svc), grpcserver.Options{
		Rate:   cfg.GRPC.Rate,
		Burst:  cfg.GRPC.Burst,
		Logger: log,
	})

	// ---------------- HTTP ----------------

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(svc, reg)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() { errCh <- grpcSrv.Serve(lis) }()
	go func() {
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("ordercore running", "grpc", cfg.GRPC.Addr, "http", cfg.HTTP.Addr)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
		log.Error("listener failed", "err", err)
	}

	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	grpcSrv.GracefulStop()
	stop()
	return err
}
