package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"astryxnodes/internal/config"
	"astryxnodes/internal/infrastructure/kafka"
	"astryxnodes/internal/infrastructure/logger"
	"astryxnodes/internal/infrastructure/mysql"
	"astryxnodes/internal/infrastructure/redisx"
	"astryxnodes/internal/order"
	"astryxnodes/internal/order/event"
	"astryxnodes/internal/order/usecase"
	"astryxnodes/internal/payment"
	"astryxnodes/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = mysql.NewConnection(cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		if err := mysql.Migrate(ctx, db); err != nil {
			zapLogger.Fatal("migrating database", zap.Error(err))
		}
		zapLogger.Info("database connected")
	} else {
		zapLogger.Warn("DB_HOST not set, order outbox disabled")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisx.New(ctx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("connecting to redis", zap.Error(err))
		}
		defer rdb.Close()
		zapLogger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		zapLogger.Warn("REDIS_ADDR not set, order numbers are not checked for reuse")
	}

	var events usecase.EventPublisher = event.NopPublisher{}
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Buffer, zapLogger)
		producer.Start()
		events = event.NewPublisher(producer, cfg.Server.ServiceName, zapLogger)
		zapLogger.Info("kafka producer started", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	paymentCtrl := payment.NewModule(cfg, zapLogger)
	orderModule := order.NewModule(db, rdb, events, cfg, zapLogger)

	router := server.NewRouter(cfg.Server, paymentCtrl, orderModule.Controller, zapLogger)
	srv := server.New(cfg.Server.Port, router, cfg.Sales.Timeout+5*time.Second, zapLogger)

	var wg sync.WaitGroup
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	if orderModule.Relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			orderModule.Relay.Run(workerCtx)
		}()
	}

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}

	cancelWorker()
	wg.Wait()

	if producer != nil {
		if err := producer.Close(shutdownCtx); err != nil {
			zapLogger.Error("kafka producer did not drain", zap.Error(err))
		}
	}

	zapLogger.Info("server stopped gracefully")
}
