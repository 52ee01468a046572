package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"docket/internal/audit"
	caseservice "docket/internal/cases/service"
	casestore "docket/internal/cases/store"
	"docket/internal/correction"
	"docket/internal/defense"
	"docket/internal/evidence"
	"docket/internal/ledger"
	"docket/internal/notification"
	"docket/internal/objection"
	"docket/internal/platform/config"
	"docket/internal/platform/httpserver"
	"docket/internal/platform/logger"
	"docket/internal/platform/metrics"
	platformredis "docket/internal/platform/redis"
	"docket/internal/registry"
	transport "docket/internal/transport/http"
	"docket/pkg/platform/middleware/auth"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit pipeline: recorder hands events to the worker, which persists
	// them and optionally mirrors them to Kafka.
	var auditStore audit.Store
	if pool != nil {
		auditStore = audit.NewPostgresStore(pool)
	} else {
		auditStore = audit.NewMemoryStore()
	}
	recorder := audit.NewRecorder(1024, audit.WithLogger(log), audit.WithMetrics(m))
	auditWorker := audit.NewWorker(auditStore, recorder.Inbox(), log)
	kafkaSink, err := audit.NewKafkaSink(cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	if kafkaSink != nil {
		auditWorker = auditWorker.WithSink(kafkaSink)
	}

	// Notification fan-out with an optional Redis-backed push queue.
	var notifStore notification.Store
	if pool != nil {
		notifStore = notification.NewPostgresStore(pool)
	} else {
		notifStore = notification.NewMemoryStore()
	}
	notifOpts := []notification.Option{
		notification.WithLogger(log),
		notification.WithMetrics(m),
	}
	if redisClient != nil {
		notifOpts = append(notifOpts, notification.WithQueue(notification.NewRedisQueue(redisClient, cfg.Redis.QueueKey)))
	}
	notifier := notification.New(notifStore, notifOpts...)

	anchors := ledger.NewHTTPClient(cfg.Ledger)

	caseStore := casestore.NewMemory()
	cases := caseservice.New(caseStore,
		caseservice.WithLogger(log),
		caseservice.WithRecorder(recorder),
		caseservice.WithNotifier(notifier),
		caseservice.WithMetrics(m),
	)

	evidenceStore := evidence.NewMemoryStore()
	evidenceSvc := evidence.New(evidenceStore, caseStore, anchors,
		evidence.WithLogger(log),
		evidence.WithRecorder(recorder),
		evidence.WithNotifier(notifier),
		evidence.WithMetrics(m),
	)

	correctionSvc := correction.New(correction.NewMemoryStore(), caseStore, evidenceStore, anchors,
		correction.WithLogger(log),
		correction.WithRecorder(recorder),
		correction.WithNotifier(notifier),
		correction.WithMetrics(m),
	)

	defenseSvc := defense.New(defense.NewMemoryStore(), caseStore, anchors,
		defense.WithLogger(log),
		defense.WithRecorder(recorder),
		defense.WithNotifier(notifier),
		defense.WithMetrics(m),
	)

	objectionSvc := objection.New(objection.NewMemoryStore(), caseStore, evidenceStore,
		objection.WithLogger(log),
		objection.WithRecorder(recorder),
		objection.WithNotifier(notifier),
	)

	registrySvc := registry.NewService(registry.NewMemoryStore(), anchors,
		registry.WithLogger(log),
		registry.WithRecorder(recorder),
	)

	router := transport.NewRouter(transport.Handlers{
		Cases:         cases,
		Evidence:      evidenceSvc,
		Corrections:   correctionSvc,
		Defense:       defenseSvc,
		Objections:    objectionSvc,
		Notifications: notifier,
		Registry:      registrySvc,
		Logger:        log,
		Validator:     auth.NewHMACValidator(cfg.JWTSigningKey),
	})
	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return auditWorker.Run(gctx)
	})

	if redisClient != nil {
		pushWorker := notification.NewPushWorker(
			redisClient, cfg.Redis.QueueKey, cfg.Redis.PopBlock,
			notifStore, notification.LogSender{Logger: log}, log,
		)
		g.Go(func() error {
			return pushWorker.Run(gctx)
		})
	}

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if kafkaSink != nil {
			kafkaSink.Close(shutdownCtx)
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
