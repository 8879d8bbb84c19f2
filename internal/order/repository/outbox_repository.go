package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"astryxnodes/internal/domain"
	"astryxnodes/internal/errors"
)

type MySQLOutboxRepository struct {
	db *sql.DB
}

func NewMySQLOutboxRepository(db *sql.DB) *MySQLOutboxRepository {
	return &MySQLOutboxRepository{db: db}
}

// Insert stores the order as PENDING. nextAttemptAt should leave room for
// the in-request delivery attempt so the relay does not pick the record up
// concurrently.
func (r *MySQLOutboxRepository) Insert(ctx context.Context, order domain.Order, nextAttemptAt time.Time) (uint, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return 0, fmt.Errorf("encoding order payload: %w", err)
	}

	query := `
		INSERT INTO OrderOutbox (orderNumber, payload, status, attempts, nextAttemptAt)
		VALUES (?, ?, ?, 0, ?)
	`

	result, err := r.db.ExecContext(ctx, query, order.OrderNumber, payload, domain.OutboxStatusPending, nextAttemptAt.UTC())
	if err != nil {
		return 0, errors.NewInternalError("inserting outbox record", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLOutboxRepository) FindByID(ctx context.Context, id uint) (*domain.OutboxRecord, error) {
	query := `
		SELECT id, orderNumber, payload, status, attempts, lastError,
		       nextAttemptAt, createdAt, updatedAt
		FROM OrderOutbox
		WHERE id = ?
	`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("outbox record with id %d not found", id))
	}
	if err != nil {
		return nil, errors.NewInternalError("querying outbox record by id", err)
	}

	return rec, nil
}

// ClaimDue leases up to limit due PENDING records to the caller by pushing
// their nextAttemptAt to now+lease inside the selecting transaction. Rows
// locked by another relay are skipped, so concurrent relays never receive
// the same record.
func (r *MySQLOutboxRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.OutboxRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternalError("beginning outbox claim", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, orderNumber, payload, status, attempts, lastError,
		       nextAttemptAt, createdAt, updatedAt
		FROM OrderOutbox
		WHERE status = ? AND nextAttemptAt <= ?
		ORDER BY nextAttemptAt ASC, id ASC
		LIMIT ?
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.QueryContext(ctx, query, domain.OutboxStatusPending, now.UTC(), limit)
	if err != nil {
		return nil, errors.NewInternalError("querying due outbox records", err)
	}

	var records []domain.OutboxRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, errors.NewInternalError("scanning outbox row", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.NewInternalError("iterating outbox rows", err)
	}
	rows.Close()

	if len(records) == 0 {
		return nil, nil
	}

	leaseUntil := now.Add(lease).UTC()
	placeholders := make([]string, len(records))
	args := make([]interface{}, 0, len(records)+1)
	args = append(args, leaseUntil)
	for i := range records {
		placeholders[i] = "?"
		args = append(args, records[i].ID)
		records[i].NextAttemptAt = leaseUntil
	}

	update := fmt.Sprintf(`UPDATE OrderOutbox SET nextAttemptAt = ? WHERE id IN (%s)`, strings.Join(placeholders, ", "))
	if _, err := tx.ExecContext(ctx, update, args...); err != nil {
		return nil, errors.NewInternalError("leasing outbox records", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternalError("committing outbox claim", err)
	}

	return records, nil
}

func (r *MySQLOutboxRepository) MarkSynced(ctx context.Context, id uint) error {
	query := `UPDATE OrderOutbox SET status = ?, lastError = NULL WHERE id = ?`
	return r.exec(ctx, id, "marking outbox record synced", query, domain.OutboxStatusSynced, id)
}

func (r *MySQLOutboxRepository) MarkFailed(ctx context.Context, id uint, attempts int, lastError string, nextAttemptAt time.Time, dead bool) error {
	status := domain.OutboxStatusPending
	if dead {
		status = domain.OutboxStatusDead
	}

	query := `UPDATE OrderOutbox SET status = ?, attempts = ?, lastError = ?, nextAttemptAt = ? WHERE id = ?`
	return r.exec(ctx, id, "marking outbox record failed", query, status, attempts, lastError, nextAttemptAt.UTC(), id)
}

func (r *MySQLOutboxRepository) exec(ctx context.Context, id uint, op string, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternalError(op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternalError("getting rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("outbox record with id %d not found", id))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*domain.OutboxRecord, error) {
	var rec domain.OutboxRecord
	var lastError sql.NullString
	err := row.Scan(
		&rec.ID, &rec.OrderNumber, &rec.Payload, &rec.Status, &rec.Attempts, &lastError,
		&rec.NextAttemptAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastError.Valid {
		rec.LastError = &lastError.String
	}
	return &rec, nil
}

// NopOutboxRepository is used when no database is configured. Insert
// returns record ID zero, which delivery treats as "not persisted".
type NopOutboxRepository struct{}

func (NopOutboxRepository) Insert(context.Context, domain.Order, time.Time) (uint, error) {
	return 0, nil
}

func (NopOutboxRepository) ClaimDue(context.Context, time.Time, time.Duration, int) ([]domain.OutboxRecord, error) {
	return nil, nil
}

func (NopOutboxRepository) MarkSynced(context.Context, uint) error {
	return nil
}

func (NopOutboxRepository) MarkFailed(context.Context, uint, int, string, time.Time, bool) error {
	return nil
}
