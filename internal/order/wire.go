package order

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"astryxnodes/internal/config"
	"astryxnodes/internal/order/controller"
	"astryxnodes/internal/order/ordernumber"
	"astryxnodes/internal/order/repository"
	"astryxnodes/internal/order/service"
	"astryxnodes/internal/order/usecase"
	"astryxnodes/internal/order/worker"
	"astryxnodes/internal/sales"
)

type Module struct {
	Controller *controller.OrderController
	// Relay is nil when no database is configured.
	Relay *worker.OutboxRelay
}

// NewModule wires the order flow. db and rdb may be nil, in which case the
// outbox and the order number registry degrade to no-ops.
func NewModule(db *sql.DB, rdb *redis.Client, events usecase.EventPublisher, cfg *config.Config, logger *zap.Logger) *Module {
	var registry ordernumber.Registry = ordernumber.NopRegistry{}
	if rdb != nil {
		registry = ordernumber.NewRedisRegistry(rdb)
	}

	type outboxStore interface {
		usecase.OutboxWriter
		service.OutboxRepository
		worker.DueRecordClaimer
	}
	var outbox outboxStore = repository.NopOutboxRepository{}
	if db != nil {
		outbox = repository.NewMySQLOutboxRepository(db)
	}

	salesClient := sales.NewClient(cfg.Sales.URL, cfg.Sales.APIKey, cfg.Sales.Timeout, cfg.Sales.TermMonths, logger)
	if cfg.Sales.APIKey == "" {
		logger.Warn("SALES_API_KEY not set, orders will not be forwarded")
	}

	delivery := service.NewDeliveryService(salesClient, outbox, service.DeliveryPolicy{
		MaxAttempts: cfg.Outbox.MaxAttempts,
		BaseBackoff: cfg.Outbox.BaseBackoff,
		MaxBackoff:  cfg.Outbox.MaxBackoff,
	}, logger)

	// upper bound of one delivery attempt; a record is not handed to
	// another sender within it
	claimWindow := cfg.Sales.Timeout + cfg.Outbox.BaseBackoff

	uc := usecase.NewSubmitOrderUseCase(
		ordernumber.NewAssigner(registry, logger),
		outbox,
		delivery,
		events,
		claimWindow,
		logger,
	)

	m := &Module{Controller: controller.NewOrderController(uc, logger)}
	if db != nil {
		m.Relay = worker.NewOutboxRelay(outbox, delivery, cfg.Outbox.PollInterval, claimWindow, cfg.Outbox.BatchSize, logger)
	}
	return m
}
