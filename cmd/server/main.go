package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"daviz/internal/audit"
	httpapi "daviz/internal/http"
	jwttoken "daviz/internal/jwt_token"
	orderhandler "daviz/internal/orders/handler"
	orderservice "daviz/internal/orders/service"
	orderstore "daviz/internal/orders/store"
	"daviz/internal/platform/config"
	"daviz/internal/platform/httpserver"
	"daviz/internal/platform/logger"
	platformmetrics "daviz/internal/platform/metrics"
	"daviz/internal/platform/postgres"
	"daviz/internal/ratelimit"
	platformredis "daviz/internal/platform/redis"
	registryhandler "daviz/internal/registry/handler"
	registrymetrics "daviz/internal/registry/metrics"
	"daviz/internal/registry/query"
	registryservice "daviz/internal/registry/service"
	"daviz/internal/registry/store"
	"daviz/pkg/address"
)

// infra holds the backing stores selected by configuration and the cleanup
// that releases them.
type infra struct {
	accounts interface {
		registryservice.AccountStore
		query.AccountReader
	}
	orders  orderstore.Store
	buckets ratelimit.Buckets
	health  map[string]httpapi.HealthCheck
	closers []func()
}

func (i *infra) close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogFormat, cfg.Server.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	program, err := address.Parse(cfg.Registry.ProgramID)
	if err != nil {
		return err
	}

	backends, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registryMetrics := registrymetrics.New(reg)

	group, groupCtx := errgroup.WithContext(ctx)
	publisher, err := buildAudit(groupCtx, cfg.Audit, log, group, backends)
	if err != nil {
		return err
	}

	instructions := registryservice.New(backends.accounts, address.NewDeriver(program),
		registryservice.WithLogger(log),
		registryservice.WithAuditPublisher(publisher),
		registryservice.WithMetrics(registryMetrics),
	)
	queries := query.New(backends.accounts,
		query.WithLogger(log),
		query.WithMetrics(registryMetrics),
	)
	orders := orderservice.New(backends.orders,
		orderservice.WithLogger(log),
		orderservice.WithAuditPublisher(publisher),
	)

	limiter := ratelimit.New(backends.buckets, map[ratelimit.Class]ratelimit.Limit{
		ratelimit.ClassRead:  {Requests: cfg.RateLimit.ReadPerMinute, Window: time.Minute},
		ratelimit.ClassWrite: {Requests: cfg.RateLimit.WritePerMinute, Window: time.Minute},
	}, log)

	verifier := jwttoken.NewVerifier(cfg.Auth.Audience, jwttoken.WithLeeway(cfg.Auth.Leeway))
	router := httpapi.NewRouter(httpapi.Options{
		Logger:         log,
		RequestTimeout: cfg.Server.RequestTimeout,
		Latency:        platformmetrics.New(reg),
		Gatherer:       reg,
		HealthChecks:   backends.health,
		RateLimit:      limiter.PerIP,
	},
		registryhandler.New(instructions, queries, verifier, log),
		orderhandler.New(orders, verifier, log),
	)

	srv := httpserver.New(cfg.Server.Addr, router)
	group.Go(func() error {
		log.Info("starting daviz", "addr", cfg.Server.Addr, "program", program.String(), "store", cfg.Registry.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	out := &infra{
		buckets: ratelimit.NewInMemoryBuckets(),
		health:  map[string]httpapi.HealthCheck{},
	}

	switch cfg.Registry.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		out.closers = append(out.closers, pool.Close)
		accounts := store.NewPostgres(pool)
		if err := accounts.Migrate(ctx); err != nil {
			out.close()
			return nil, err
		}

		db, err := postgres.OpenDB(ctx, cfg.Postgres)
		if err != nil {
			out.close()
			return nil, err
		}
		out.closers = append(out.closers, func() { _ = db.Close() })
		orders := orderstore.NewPostgres(db)
		if err := orders.Migrate(ctx); err != nil {
			out.close()
			return nil, err
		}

		out.accounts, out.orders = accounts, orders
		out.health["postgres"] = pool.Ping
	case config.BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		out.closers = append(out.closers, func() { _ = client.Close() })
		out.accounts = store.NewRedis(client.Client)
		out.buckets = ratelimit.NewRedisBuckets(client.Client)
		// TODO: persist interest orders in redis streams; they stay in memory on this backend.
		out.orders = orderstore.NewInMemory()
		out.health["redis"] = client.Health
		log.Warn("interest orders are kept in memory on the redis backend")
	default:
		out.accounts = store.NewInMemory()
		out.orders = orderstore.NewInMemory()
	}
	return out, nil
}

// buildAudit returns the audit publisher. With Kafka brokers configured events
// are queued and shipped by a background worker; otherwise they are logged.
func buildAudit(ctx context.Context, cfg config.Audit, log *slog.Logger, group *errgroup.Group, backends *infra) (*audit.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return audit.NewPublisher(audit.NewLogSink(log)), nil
	}

	sink, err := audit.NewKafkaSink(ctx, audit.KafkaConfig{
		Brokers:           cfg.KafkaBrokers,
		Topic:             cfg.Topic,
		Partitions:        3,
		ReplicationFactor: 1,
	})
	if err != nil {
		return nil, err
	}
	backends.closers = append(backends.closers, sink.Close)
	backends.health["kafka"] = sink.Ping

	queue := audit.NewAsyncSink(cfg.BufferSize)
	worker := audit.NewWorker(sink, queue.Inbox(), log)
	group.Go(func() error {
		return worker.Run(ctx)
	})
	return audit.NewPublisher(queue), nil
}
