package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/cache"
	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/config"
	h "github.com/fjod/go_pos/internal/http"
	"github.com/fjod/go_pos/internal/publisher"
	"github.com/fjod/go_pos/internal/realtime"
	"github.com/fjod/go_pos/internal/receipt"
	"github.com/fjod/go_pos/internal/report"
	"github.com/fjod/go_pos/internal/repository"
	"github.com/fjod/go_pos/internal/session"
	"github.com/fjod/go_pos/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const usage = "usage: pos-terminal [serve|backfill-receipts]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New("pos-terminal", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "serve":
		err = serve(cfg, log)
	case "backfill-receipts":
		err = backfillOnce(cfg, log)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("pos-terminal failed", zap.String("command", cmd), zap.Error(err))
	}
}

// app holds everything both commands need.
type app struct {
	client  *backend.Client
	redis   *redis.Client
	journal repository.Journal
	issuer  *checkout.ReceiptIssuer
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{client: backend.NewClient(cfg.BackendURL, log)}

	if cfg.CatalogCache == "redis" || cfg.Realtime.Driver == "redis" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
	}

	journal, err := repository.Open(repository.Options{
		Driver:          cfg.JournalDriver,
		DSN:             cfg.JournalDSN,
		MigrationsTable: cfg.JournalMigrationsTable,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open receipt journal: %w", err)
	}
	a.journal = journal

	renderOpts := receipt.Options{
		LogoPath:     cfg.Shop.LogoPath,
		FontPath:     cfg.Shop.FontPath,
		BoldFontPath: cfg.Shop.BoldFontPath,
		Location:     cfg.Location,
	}
	if renderOpts.UsesFallbackFont() {
		log.Warn("RECEIPT_FONT_PATH is not set, Thai text on receipts will not render")
	}
	renderer := receipt.NewRenderer(renderOpts)
	a.issuer = checkout.NewReceiptIssuer(renderer, a.client, a.client)
	return a, nil
}

func (a *app) close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func serve(cfg *config.Config, log *zap.Logger) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	var menuCache cache.MenuCache
	if cfg.CatalogCache == "redis" {
		menuCache = cache.NewRedisCache(a.redis, cfg.CatalogCacheTTL)
	}

	counter := checkout.NewOrderCounter(1)
	orchestrator := checkout.NewOrchestrator(checkout.Options{
		Cart:     cart.NewSession(),
		Counter:  counter,
		Orders:   a.client,
		Receipts: a.issuer,
		Journal:  a.journal,
		Shop: receipt.Shop{
			Name:    cfg.Shop.Name,
			Address: cfg.Shop.Address,
			Phone:   cfg.Shop.Phone,
			Footer:  cfg.Shop.Footer,
		},
		BranchID:  cfg.BranchID,
		CashierID: cfg.CashierID,
		Log:       log,
	})

	terminal := session.NewTerminal(session.Deps{
		Catalog:  catalog.NewService(a.client, menuCache, cfg.BranchID, log),
		Methods:  a.client,
		Orders:   a.client,
		Sales:    a.client,
		Kitchen:  a.client,
		Realtime: realtimeChannel(cfg, a.redis, log),
		Checkout: orchestrator,
		Counter:  counter,
	}, log)

	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	err = terminal.Start(startCtx)
	cancelStart()
	if err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer func() { _ = terminal.Stop() }()

	reports := report.NewService(a.client, a.client, cfg.BranchID, cfg.Location, log)

	var wg sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	if cfg.ReceiptBackfillInterval > 0 {
		backfiller := publisher.NewReceiptBackfiller(a.journal, a.issuer, cfg.ReceiptBackfillInterval, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			backfiller.Run(workerCtx)
		}()
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(h.RouterOptions{
			Terminal:       terminal,
			Reports:        reports,
			RequestTimeout: cfg.RequestTimeout,
			Log:            log,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("pos terminal listening", zap.String("addr", srv.Addr), zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		stopWorkers()
		wg.Wait()
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	stopWorkers()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("receipt backfiller did not stop in time")
	}

	log.Info("pos terminal stopped")
	return nil
}

// backfillOnce retries pending receipts a single time and exits.
func backfillOnce(cfg *config.Config, log *zap.Logger) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := publisher.NewReceiptBackfiller(a.journal, a.issuer, 0, log).RunOnce(ctx)
	if err != nil {
		return err
	}
	log.Info("receipt backfill finished",
		zap.Int("resolved", stats.Resolved),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped))
	return nil
}

func realtimeChannel(cfg *config.Config, rdb *redis.Client, log *zap.Logger) realtime.Channel {
	rt := cfg.Realtime
	switch rt.Driver {
	case "kafka":
		return realtime.NewKafkaChannel(realtime.KafkaConfig{
			Brokers: rt.KafkaBrokers,
			Topic:   rt.KafkaTopic,
			GroupID: rt.KafkaGroupID,
		}, log)
	case "redis":
		return realtime.NewRedisChannel(rdb, rt.RedisChannel, log)
	case "amqp":
		return realtime.NewAMQPChannel(realtime.AMQPConfig{
			URL:      rt.AMQPURL,
			Exchange: rt.AMQPExchange,
			Queue:    rt.AMQPQueueName,
		}, log)
	default:
		return realtime.Nop{}
	}
}
