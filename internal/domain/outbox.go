package domain

import "time"

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSynced  OutboxStatus = "SYNCED"
	OutboxStatusDead    OutboxStatus = "DEAD"
)

type OutboxRecord struct {
	ID            uint
	OrderNumber   string
	Payload       []byte
	Status        OutboxStatus
	Attempts      int
	LastError     *string
	NextAttemptAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
