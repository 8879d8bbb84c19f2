package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"astryxnodes/internal/commons"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Stripe   StripeConfig
	Sales    SalesConfig
	Payment  PaymentConfig
	Outbox   OutboxConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port        int
	Environment string
	ServiceName string
}

// Production reports whether internal error detail must be hidden from clients.
func (s ServerConfig) Production() bool {
	return s.Environment == "production"
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Enabled is false when no database host is configured; the outbox then
// degrades to a no-op store.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type LogConfig struct {
	Level string
}

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
}

type SalesConfig struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	TermMonths int
}

type PaymentConfig struct {
	GCashNumber       string
	MayaNumber        string
	BankName          string
	BankAccountName   string
	BankAccountNumber string
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	Buffer  int
}

// Load reads configuration from the process environment, an optional .env
// file and an optional YAML file named by CONFIG_FILE. Environment wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	// PORT and NODE_ENV are what most hosting platforms inject.
	if err := v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("binding SERVER_PORT: %w", err)
	}
	if err := v.BindEnv("APP_ENV", "APP_ENV", "NODE_ENV"); err != nil {
		return nil, fmt.Errorf("binding APP_ENV: %w", err)
	}

	v.SetDefault("SERVER_PORT", 5000)
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("SERVICE_NAME", "astryxnodes-checkout")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "astryx")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "astryx")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_PUBLISHABLE_KEY", "")

	v.SetDefault("SALES_API_URL", "http://localhost:3020")
	v.SetDefault("SALES_API_KEY", "")
	v.SetDefault("SALES_API_TIMEOUT", "10s")
	v.SetDefault("SALES_TERM_MONTHS", 1)

	v.SetDefault("GCASH_NUMBER", "09123456789")
	v.SetDefault("MAYA_NUMBER", "09123456789")
	v.SetDefault("BANK_NAME", "Bank Name")
	v.SetDefault("BANK_ACCOUNT_NAME", "Account Name")
	v.SetDefault("BANK_ACCOUNT_NUMBER", "1234567890")

	v.SetDefault("OUTBOX_POLL_INTERVAL", "30s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 20)
	v.SetDefault("OUTBOX_MAX_ATTEMPTS", 8)
	v.SetDefault("OUTBOX_BASE_BACKOFF", "30s")
	v.SetDefault("OUTBOX_MAX_BACKOFF", "1h")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "orders.submitted")
	v.SetDefault("KAFKA_BUFFER", 256)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		values, err := commons.LoadConfigFile(file)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("merging config file: %w", err)
		}
	}

	durations := map[string]*time.Duration{}
	var connMaxLifetime, salesTimeout, pollInterval, baseBackoff, maxBackoff time.Duration
	durations["DB_CONN_MAX_LIFETIME"] = &connMaxLifetime
	durations["SALES_API_TIMEOUT"] = &salesTimeout
	durations["OUTBOX_POLL_INTERVAL"] = &pollInterval
	durations["OUTBOX_BASE_BACKOFF"] = &baseBackoff
	durations["OUTBOX_MAX_BACKOFF"] = &maxBackoff
	for key, dst := range durations {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetInt("SERVER_PORT"),
			Environment: v.GetString("APP_ENV"),
			ServiceName: v.GetString("SERVICE_NAME"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Stripe: StripeConfig{
			SecretKey:      v.GetString("STRIPE_SECRET_KEY"),
			PublishableKey: v.GetString("STRIPE_PUBLISHABLE_KEY"),
		},
		Sales: SalesConfig{
			URL:        strings.TrimRight(v.GetString("SALES_API_URL"), "/"),
			APIKey:     v.GetString("SALES_API_KEY"),
			Timeout:    salesTimeout,
			TermMonths: v.GetInt("SALES_TERM_MONTHS"),
		},
		Payment: PaymentConfig{
			GCashNumber:       v.GetString("GCASH_NUMBER"),
			MayaNumber:        v.GetString("MAYA_NUMBER"),
			BankName:          v.GetString("BANK_NAME"),
			BankAccountName:   v.GetString("BANK_ACCOUNT_NAME"),
			BankAccountNumber: v.GetString("BANK_ACCOUNT_NUMBER"),
		},
		Outbox: OutboxConfig{
			PollInterval: pollInterval,
			BatchSize:    v.GetInt("OUTBOX_BATCH_SIZE"),
			MaxAttempts:  v.GetInt("OUTBOX_MAX_ATTEMPTS"),
			BaseBackoff:  baseBackoff,
			MaxBackoff:   maxBackoff,
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
			Buffer:  v.GetInt("KAFKA_BUFFER"),
		},
	}

	if cfg.Sales.TermMonths < 1 {
		cfg.Sales.TermMonths = 1
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
