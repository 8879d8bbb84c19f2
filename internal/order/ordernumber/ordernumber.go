package ordernumber

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	prefix       = "AST"
	suffixLength = 9
	maxGenerate  = 5

	// KeyClaim maps an order number to the trace that first used it.
	KeyClaim = "order:number:%s"
	TTLClaim = 30 * 24 * time.Hour
)

// Generate returns AST-<unix millis>-<9 uppercase base36 characters>.
func Generate(now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	id := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(id[:8]), 36)
	if len(s) < suffixLength {
		s = strings.Repeat("0", suffixLength-len(s)) + s
	}
	return strings.ToUpper(s[len(s)-suffixLength:])
}

type Registry interface {
	// Claim records number as used and reports whether it was free.
	Claim(ctx context.Context, number, owner string) (bool, error)
}

type RedisRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, ttl: TTLClaim}
}

func (r *RedisRegistry) Claim(ctx context.Context, number, owner string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, fmt.Sprintf(KeyClaim, number), owner, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming order number: %w", err)
	}
	return ok, nil
}

// NopRegistry accepts every number; used when Redis is not configured.
type NopRegistry struct{}

func (NopRegistry) Claim(context.Context, string, string) (bool, error) {
	return true, nil
}

type Assigner struct {
	registry Registry
	logger   *zap.Logger
	now      func() time.Time
}

func NewAssigner(registry Registry, logger *zap.Logger) *Assigner {
	return &Assigner{
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// Assign keeps a client supplied number unchanged and only warns when it was
// already used. An empty number is replaced by a generated one that the
// registry confirmed as unused.
func (a *Assigner) Assign(ctx context.Context, supplied, traceID string) string {
	logger := a.logger.With(zap.String("traceId", traceID))

	if supplied != "" {
		ok, err := a.registry.Claim(ctx, supplied, traceID)
		if err != nil {
			logger.Warn("order number registry unavailable", zap.String("orderNumber", supplied), zap.Error(err))
		} else if !ok {
			logger.Warn("duplicate order number supplied by client", zap.String("orderNumber", supplied))
		}
		return supplied
	}

	var number string
	for attempt := 1; attempt <= maxGenerate; attempt++ {
		number = Generate(a.now())
		ok, err := a.registry.Claim(ctx, number, traceID)
		if err != nil {
			logger.Warn("order number registry unavailable", zap.String("orderNumber", number), zap.Error(err))
			return number
		}
		if ok {
			return number
		}
		logger.Warn("generated order number collided, regenerating", zap.String("orderNumber", number), zap.Int("attempt", attempt))
	}

	return number
}
