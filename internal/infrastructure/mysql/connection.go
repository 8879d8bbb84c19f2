package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"astryxnodes/internal/config"
)

const outboxTableDDL = `
	CREATE TABLE IF NOT EXISTS OrderOutbox (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderNumber VARCHAR(64) NOT NULL,
		payload JSON NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
		attempts INT NOT NULL DEFAULT 0,
		lastError TEXT NULL,
		nextAttemptAt DATETIME(3) NOT NULL,
		createdAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updatedAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
		INDEX idx_status_next (status, nextAttemptAt),
		INDEX idx_order_number (orderNumber)
	)`

// DSN builds the driver connection string. clientFoundRows makes UPDATE
// report matched rather than changed rows.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&clientFoundRows=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
	)
}

func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Migrate creates the outbox table when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, outboxTableDDL); err != nil {
		return fmt.Errorf("creating OrderOutbox table: %w", err)
	}
	return nil
}
